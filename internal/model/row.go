package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row is one record of caller data. Key must be stable and unique across the
// collection; selection and saved state refer to rows by key, never by index.
type Row struct {
	Key    string         `json:"key"`
	Values map[string]any `json:"values"`
}

// Value returns the raw cell value for a column. A missing column and an
// explicit nil both report ok=false.
func (r Row) Value(columnID string) (any, bool) {
	if r.Values == nil {
		return nil, false
	}
	v, ok := r.Values[columnID]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Keys returns the keys of rows in order.
func Keys(rows []Row) []string {
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	return keys
}

// Stringify renders a cell value the way it is searched, grouped and
// exported. nil renders as the empty string.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return Stringify(float64(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case time.Time:
		return val.Format(time.RFC3339)
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, Stringify(item))
		}
		return strings.Join(parts, ", ")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
