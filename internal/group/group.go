// Package group partitions rows by a column value for sectioned views
// (grouped tables, board lanes) and manages the group display config.
package group

import (
	"cmp"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/cdtdelta/tablekit/internal/model"
)

// DefaultUncategorized labels the group of rows with no value.
const DefaultUncategorized = "Uncategorized"

// SortOrder orders groups by value or by size.
type SortOrder string

const (
	SortAsc       SortOrder = "asc"
	SortDesc      SortOrder = "desc"
	SortCountAsc  SortOrder = "count-asc"
	SortCountDesc SortOrder = "count-desc"
)

// Valid reports whether o is a known sort order. The empty order is
// treated as asc.
func (o SortOrder) Valid() bool {
	switch o {
	case "", SortAsc, SortDesc, SortCountAsc, SortCountDesc:
		return true
	}
	return false
}

// Config controls how rows are grouped. Hidden and collapsed groups are
// referenced by value so they survive regrouping over refreshed data.
type Config struct {
	ColumnID        string    `json:"columnId" yaml:"column_id"`
	SortOrder       SortOrder `json:"sortOrder" yaml:"sort_order"`
	HideEmpty       bool      `json:"hideEmpty" yaml:"hide_empty"`
	HiddenGroups    []string  `json:"hiddenGroups" yaml:"hidden_groups"`
	CollapsedGroups []string  `json:"collapsedGroups" yaml:"collapsed_groups"`
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	c.HiddenGroups = slices.Clone(c.HiddenGroups)
	c.CollapsedGroups = slices.Clone(c.CollapsedGroups)
	return c
}

// Equal compares two configs, treating the value lists as sets.
func (c Config) Equal(o Config) bool {
	return c.ColumnID == o.ColumnID &&
		c.SortOrder == o.SortOrder &&
		c.HideEmpty == o.HideEmpty &&
		sameSet(c.HiddenGroups, o.HiddenGroups) &&
		sameSet(c.CollapsedGroups, o.CollapsedGroups)
}

// IsHidden reports whether the group value is hidden.
func (c Config) IsHidden(value string) bool { return slices.Contains(c.HiddenGroups, value) }

// IsCollapsed reports whether the group value is collapsed.
func (c Config) IsCollapsed(value string) bool { return slices.Contains(c.CollapsedGroups, value) }

// GroupedRow is one partition of rows sharing a column value.
type GroupedRow struct {
	Value     string      `json:"value"`
	Rows      []model.Row `json:"rows"`
	Count     int         `json:"count"`
	Collapsed bool        `json:"collapsed"`
}

// Key returns the group value of a row: the stringified cell, or label when
// the cell is missing or nil. An empty string is a value of its own.
func Key(r model.Row, columnID, label string) string {
	cell, ok := r.Value(columnID)
	if !ok {
		return label
	}
	return model.Stringify(cell)
}

// Group partitions rows by columnID in one pass, then drops hidden groups
// and sorts the rest per cfg. Rows keep their input order within a group.
// A blank label falls back to DefaultUncategorized.
func Group(rows []model.Row, columnID string, cfg Config, label string) []GroupedRow {
	return GroupWithValues(rows, columnID, cfg, label, nil)
}

// GroupWithValues is Group with extra group values that exist even when no
// row carries them, such as the fixed lanes of a board. Only these
// synthesized groups can be empty, so HideEmpty only affects them.
func GroupWithValues(rows []model.Row, columnID string, cfg Config, label string, values []string) []GroupedRow {
	if label == "" {
		label = DefaultUncategorized
	}

	index := make(map[string]int)
	var groups []GroupedRow
	for _, v := range values {
		if _, ok := index[v]; ok {
			continue
		}
		index[v] = len(groups)
		groups = append(groups, GroupedRow{Value: v})
	}
	for _, r := range rows {
		k := Key(r, columnID, label)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, GroupedRow{Value: k})
		}
		groups[i].Rows = append(groups[i].Rows, r)
		groups[i].Count++
	}

	groups = slices.DeleteFunc(groups, func(g GroupedRow) bool {
		return cfg.IsHidden(g.Value) || (cfg.HideEmpty && g.Count == 0)
	})
	for i := range groups {
		groups[i].Collapsed = cfg.IsCollapsed(groups[i].Value)
	}
	sortGroups(groups, cfg.SortOrder)
	return groups
}

func sortGroups(groups []GroupedRow, order SortOrder) {
	slices.SortStableFunc(groups, func(a, b GroupedRow) int {
		switch order {
		case SortDesc:
			return strings.Compare(b.Value, a.Value)
		case SortCountAsc:
			return cmp.Or(cmp.Compare(a.Count, b.Count), strings.Compare(a.Value, b.Value))
		case SortCountDesc:
			return cmp.Or(cmp.Compare(b.Count, a.Count), strings.Compare(a.Value, b.Value))
		default:
			return strings.Compare(a.Value, b.Value)
		}
	})
}

// UniqueValues returns the distinct group values of rows, sorted ascending.
func UniqueValues(rows []model.Row, columnID, label string) []string {
	if label == "" {
		label = DefaultUncategorized
	}
	values := lo.Uniq(lo.Map(rows, func(r model.Row, _ int) string {
		return Key(r, columnID, label)
	}))
	slices.Sort(values)
	return values
}

// ToggleHidden returns a copy of cfg with value added to or removed from
// the hidden groups.
func ToggleHidden(cfg Config, value string) Config {
	out := cfg.Clone()
	out.HiddenGroups = toggle(out.HiddenGroups, value)
	return out
}

// ToggleCollapsed returns a copy of cfg with value added to or removed from
// the collapsed groups.
func ToggleCollapsed(cfg Config, value string) Config {
	out := cfg.Clone()
	out.CollapsedGroups = toggle(out.CollapsedGroups, value)
	return out
}

// CollapseAll returns a copy of cfg with every given value collapsed.
func CollapseAll(cfg Config, values []string) Config {
	out := cfg.Clone()
	all := lo.Uniq(append(out.CollapsedGroups, values...))
	slices.Sort(all)
	out.CollapsedGroups = nilIfEmpty(all)
	return out
}

// ExpandAll returns a copy of cfg with no collapsed groups.
func ExpandAll(cfg Config) Config {
	out := cfg.Clone()
	out.CollapsedGroups = nil
	return out
}

// ShowAll returns a copy of cfg with no hidden groups.
func ShowAll(cfg Config) Config {
	out := cfg.Clone()
	out.HiddenGroups = nil
	return out
}

func toggle(list []string, value string) []string {
	if slices.Contains(list, value) {
		return nilIfEmpty(lo.Without(list, value))
	}
	i, _ := slices.BinarySearch(list, value)
	return slices.Insert(list, i, value)
}

func nilIfEmpty(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	return list
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as, bs := slices.Clone(a), slices.Clone(b)
	slices.Sort(as)
	slices.Sort(bs)
	return slices.Equal(as, bs)
}
