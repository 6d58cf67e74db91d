package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cdtdelta/tablekit/internal/model"
)

// ReadCSV reads a delimited file whose first row is the header. Column
// kinds are inferred from the values; rows that cannot be parsed are
// counted as excluded. Files ending in .tsv are read tab-separated.
func ReadCSV(path string, onProgress func(count int)) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(newNullStripper(f))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		reader.Comma = '\t'
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	ids := headerIDs(header)
	if len(ids) == 0 {
		return nil, fmt.Errorf("no columns in header")
	}

	ds := &Dataset{}
	var records [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("reading file: %w", err)
			}
			ds.Excluded++
			continue
		}
		if len(row) > len(header) {
			ds.Excluded++
			continue
		}
		records = append(records, row)
		if onProgress != nil && len(records)%progressEvery == 0 {
			onProgress(len(records))
		}
	}

	ds.Columns = make([]model.Column, len(ids))
	for i, id := range ids {
		values := make([]string, len(records))
		for r, rec := range records {
			values[r] = cell(rec, i)
		}
		ds.Columns[i] = model.Column{
			ID:          id,
			DisplayName: strings.TrimPrefix(strings.TrimSpace(header[i]), "\ufeff"),
			Kind:        inferTextKind(values),
			Sortable:    true,
			Filterable:  true,
		}
	}

	ds.Rows = make([]model.Row, len(records))
	for r, rec := range records {
		values := make(map[string]any, len(ids))
		for i, col := range ds.Columns {
			if v := convertText(cell(rec, i), col.Kind); v != nil {
				values[col.ID] = v
			}
		}
		ds.Rows[r] = model.Row{Values: values}
	}
	assignKeys(ds.Columns, ds.Rows)

	return ds, nil
}

// WriteCSV writes rows to a CSV file with one column per descriptor, in
// order. The header carries column ids so the file reads back with ReadCSV.
func WriteCSV(path string, columns []model.Column, rows []model.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := writeCSV(f, columns, rows); err != nil {
		return err
	}
	return f.Close()
}

func writeCSV(w io.Writer, columns []model.Column, rows []model.Row) error {
	writer := csv.NewWriter(w)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.ID
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	record := make([]string, len(columns))
	for _, r := range rows {
		for i, c := range columns {
			v, _ := r.Value(c.ID)
			record[i] = model.Stringify(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// headerIDs derives column ids from header titles. Blank titles get a
// positional name and repeated titles get a numeric suffix.
func headerIDs(header []string) []string {
	ids := make([]string, 0, len(header))
	used := make(map[string]bool, len(header))
	for i, title := range header {
		id := strings.TrimSpace(title)
		if i == 0 {
			id = strings.TrimPrefix(id, "\ufeff")
		}
		if id == "" {
			id = fmt.Sprintf("column_%d", i+1)
		}
		if used[id] {
			base := id
			for n := 2; used[id]; n++ {
				id = fmt.Sprintf("%s_%d", base, n)
			}
		}
		used[id] = true
		ids = append(ids, id)
	}
	return ids
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// nullStripper drops NUL bytes, which some exporters leave in text fields
// and which encoding/csv rejects.
type nullStripper struct {
	r io.Reader
}

func newNullStripper(r io.Reader) io.Reader {
	return &nullStripper{r: r}
}

func (ns *nullStripper) Read(p []byte) (int, error) {
	n, err := ns.r.Read(p)
	if n > 0 {
		cleaned := strings.ReplaceAll(string(p[:n]), "\x00", "")
		copy(p, cleaned)
		n = len(cleaned)
	}
	return n, err
}
