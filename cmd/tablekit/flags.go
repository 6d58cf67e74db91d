package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cdtdelta/tablekit/internal/group"
	"github.com/cdtdelta/tablekit/internal/model"
	"github.com/cdtdelta/tablekit/internal/query"
	"github.com/cdtdelta/tablekit/internal/table"
)

// operatorAliases lets filters be written with familiar symbols.
var operatorAliases = map[string]query.Operator{
	"=":  query.OpEquals,
	"==": query.OpEquals,
	"!=": query.OpNotEquals,
	">":  query.OpGreaterThan,
	">=": query.OpGreaterThanOrEqual,
	"<":  query.OpLessThan,
	"<=": query.OpLessThanOrEqual,
	"~":  query.OpContains,
	"!~": query.OpNotContains,
	"in": query.OpIsAnyOf,
}

// queryFlags are the query options shared by `query` and `views save`.
type queryFlags struct {
	search     string
	filters    []string
	logic      string
	sorts      []string
	groupBy    string
	groupOrder string
	hidden     []string
	view       string
}

func (f *queryFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.search, "search", "", "global search text")
	fs.StringArrayVar(&f.filters, "filter", nil, `filter as "column operator value", repeatable (multi-value operators take a comma list)`)
	fs.StringVar(&f.logic, "logic", "and", "how filters combine: and|or")
	fs.StringArrayVar(&f.sorts, "sort", nil, "sort key as column[:desc], repeatable; first is primary")
	fs.StringVar(&f.groupBy, "group", "", "group rows by column")
	fs.StringVar(&f.groupOrder, "group-order", "asc", "group order: asc|desc|count-asc|count-desc")
	fs.StringSliceVar(&f.hidden, "hide", nil, "columns to hide")
	fs.StringVar(&f.view, "view-type", "", "view type (table, board, list, gallery, feed, calendar)")
}

// apply pushes the flags into the engine, after any saved view.
func (f *queryFlags) apply(e *table.Engine) error {
	if f.view != "" {
		if err := e.SetActiveView(model.ViewType(f.view)); err != nil {
			return err
		}
	}
	if len(f.filters) > 0 {
		g, err := parseFilterGroup(e.Columns(), f.filters, f.logic)
		if err != nil {
			return err
		}
		groups := append(e.State().FilterGroups, g)
		if err := e.SetFilterGroups(groups); err != nil {
			return err
		}
	}
	if len(f.sorts) > 0 {
		spec, err := parseSort(f.sorts)
		if err != nil {
			return err
		}
		if err := e.SetSort(spec); err != nil {
			return err
		}
	}
	if f.groupBy != "" {
		cfg := &group.Config{ColumnID: f.groupBy, SortOrder: group.SortOrder(f.groupOrder)}
		if err := e.SetGroupConfig(cfg); err != nil {
			return err
		}
	}
	if len(f.hidden) > 0 {
		visibility := e.State().ColumnVisibility
		if visibility == nil {
			visibility = make(map[string]bool, len(f.hidden))
		}
		for _, id := range f.hidden {
			visibility[id] = false
		}
		e.SetColumnVisibility(visibility)
	}
	e.SetGlobalFilter(f.search)
	return nil
}

func parseLogic(s string) (query.Logic, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "AND":
		return query.AND, nil
	case "OR":
		return query.OR, nil
	}
	return "", fmt.Errorf("invalid logic %q: want and or or", s)
}

func parseFilterGroup(columns []model.Column, exprs []string, logic string) (query.FilterGroup, error) {
	l, err := parseLogic(logic)
	if err != nil {
		return query.FilterGroup{}, err
	}
	g := query.FilterGroup{Logic: l}
	for _, expr := range exprs {
		f, err := parseFilter(columns, expr)
		if err != nil {
			return query.FilterGroup{}, err
		}
		g.Filters = append(g.Filters, f)
	}
	return g, nil
}

// parseFilter reads "column operator value". The value is everything after
// the operator; multi-value operators split it on commas.
func parseFilter(columns []model.Column, expr string) (query.Filter, error) {
	parts := strings.Fields(expr)
	if len(parts) < 2 {
		return query.Filter{}, fmt.Errorf("invalid filter %q: want \"column operator value\"", expr)
	}

	col, ok := model.ColumnIndex(columns)[parts[0]]
	if !ok {
		return query.Filter{}, fmt.Errorf("invalid filter %q: %w", expr, table.ErrUnknownColumn)
	}
	op := query.Operator(parts[1])
	if alias, ok := operatorAliases[strings.ToLower(parts[1])]; ok {
		op = alias
	}

	rest := strings.TrimSpace(strings.Join(parts[2:], " "))
	var v query.Value
	switch query.InputFor(op, col.Kind) {
	case query.InputNone:
		v = query.NoValue()
	case query.InputMultiChoice:
		items := strings.Split(rest, ",")
		for i := range items {
			items[i] = strings.TrimSpace(items[i])
		}
		v = query.MultiValue(items...)
	default:
		v = query.Value{Text: rest}
	}

	f, err := query.NewFilter(col, op, v)
	if err != nil {
		return query.Filter{}, fmt.Errorf("invalid filter %q: %w", expr, err)
	}
	return f, nil
}

// parseSort reads column[:asc|:desc] keys.
func parseSort(keys []string) (query.SortSpec, error) {
	spec := make(query.SortSpec, 0, len(keys))
	for _, k := range keys {
		id, dir, _ := strings.Cut(k, ":")
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("invalid sort key %q", k)
		}
		key := query.SortKey{ColumnID: id}
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			key.Descending = true
		default:
			return nil, fmt.Errorf("invalid sort direction %q in %q", dir, k)
		}
		spec = append(spec, key)
	}
	return spec, nil
}
