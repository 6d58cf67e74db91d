package loader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cdtdelta/tablekit/internal/model"
)

// ReadJSONL reads a file with one JSON object per line. Columns are the
// union of object keys in first-seen order. Lines that are not JSON
// objects are counted as excluded; blank lines are ignored.
func ReadJSONL(path string, onProgress func(count int)) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	// Allow up to 10MB per line.
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)

	ds := &Dataset{}
	var order []string
	known := make(map[string]bool)
	var objects []map[string]any
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		keys, values, err := decodeObject(line)
		if err != nil {
			ds.Excluded++
			continue
		}
		for _, k := range keys {
			if !known[k] {
				known[k] = true
				order = append(order, k)
			}
		}
		objects = append(objects, values)

		if onProgress != nil && len(objects)%progressEvery == 0 {
			onProgress(len(objects))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading file at line %d: %w", lineNum, err)
	}

	ds.Columns = make([]model.Column, len(order))
	for i, id := range order {
		values := make([]any, len(objects))
		for r, obj := range objects {
			values[r] = obj[id]
		}
		ds.Columns[i] = model.Column{
			ID:         id,
			Kind:       inferValueKind(values),
			Sortable:   true,
			Filterable: true,
		}
	}

	ds.Rows = make([]model.Row, len(objects))
	for r, obj := range objects {
		ds.Rows[r] = model.Row{Values: obj}
	}
	assignKeys(ds.Columns, ds.Rows)

	return ds, nil
}

// decodeObject decodes one JSON object, returning its keys in document
// order alongside the normalized values. Null and empty-string members are
// left out of the value map.
func decodeObject(line []byte) ([]string, map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("not a JSON object")
	}

	var keys []string
	values := make(map[string]any)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected token %v", tok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("decoding %q: %w", key, err)
		}
		keys = append(keys, key)
		v, err := normalizeValue(raw)
		if err != nil {
			return nil, nil, err
		}
		if v != nil {
			values[key] = v
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	if dec.More() {
		return nil, nil, fmt.Errorf("trailing data after object")
	}
	return keys, values, nil
}

// normalizeValue maps decoded JSON onto cell values: arrays of strings
// become []string, nested objects are kept as their JSON text.
func normalizeValue(v any) (any, error) {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil, nil
		}
		return val, nil
	case []any:
		ids := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return val, nil
			}
			ids = append(ids, s)
		}
		return ids, nil
	case map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
	return v, nil
}
