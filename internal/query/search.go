package query

import (
	"strings"

	"github.com/cdtdelta/tablekit/internal/model"
)

// Search keeps rows where text appears, case-insensitively, in the
// stringified value of any filterable column. Blank text keeps every row.
func Search(rows []model.Row, text string, columns []model.Column) []model.Row {
	f := newFolder()
	needle := f.fold(strings.TrimSpace(text))
	if needle == "" {
		return rows
	}
	var searchable []string
	for _, c := range columns {
		if c.Filterable {
			searchable = append(searchable, c.ID)
		}
	}

	out := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		if matchesSearch(f, r, needle, searchable) {
			out = append(out, r)
		}
	}
	return out
}

func matchesSearch(f folder, r model.Row, needle string, columnIDs []string) bool {
	for _, id := range columnIDs {
		cell, ok := r.Value(id)
		if !ok {
			continue
		}
		if strings.Contains(f.fold(model.Stringify(cell)), needle) {
			return true
		}
	}
	return false
}
