package loader

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cdtdelta/tablekit/internal/model"
)

// Dataset is the outcome of reading a data file: the columns found in it,
// the rows in file order and how many records were skipped as malformed.
type Dataset struct {
	Columns  []model.Column
	Rows     []model.Row
	Excluded int
}

// Format identifies a supported input file format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// progressEvery is how many rows are read between progress callbacks.
const progressEvery = 10000

// DetectFormat picks the reader for a file from its extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return FormatCSV, nil
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("unsupported file type %q", filepath.Ext(path))
}

// Read loads a data file using the reader matching its extension.
func Read(path string, onProgress func(count int)) (*Dataset, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if format == FormatJSONL {
		return ReadJSONL(path, onProgress)
	}
	return ReadCSV(path, onProgress)
}

// keyColumns are the column names, in priority order, whose values become
// row keys when they are present, non-empty and unique.
var keyColumns = []string{"id", "key"}

// assignKeys sets each row's key from the first usable key column, or to
// its 1-based record number.
func assignKeys(columns []model.Column, rows []model.Row) {
	for _, name := range keyColumns {
		for _, col := range columns {
			if !strings.EqualFold(col.ID, name) {
				continue
			}
			if keys, ok := uniqueKeys(col.ID, rows); ok {
				for i := range rows {
					rows[i].Key = keys[i]
				}
				return
			}
		}
	}
	for i := range rows {
		rows[i].Key = strconv.Itoa(i + 1)
	}
}

func uniqueKeys(columnID string, rows []model.Row) ([]string, bool) {
	keys := make([]string, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, r := range rows {
		v, ok := r.Value(columnID)
		if !ok {
			return nil, false
		}
		k := model.Stringify(v)
		if k == "" || seen[k] {
			return nil, false
		}
		seen[k] = true
		keys[i] = k
	}
	return keys, true
}
