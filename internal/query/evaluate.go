package query

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/cdtdelta/tablekit/internal/model"
)

// RelationExtractor returns the ids of the records a row's cell refers to.
type RelationExtractor func(row model.Row, columnID string) []string

// DefaultRelations reads relation ids straight from the cell: a string is a
// single id, a slice is a list of ids.
func DefaultRelations(row model.Row, columnID string) []string {
	cell, ok := row.Value(columnID)
	if !ok {
		return nil
	}
	switch v := cell.(type) {
	case []string:
		return v
	case []any:
		ids := make([]string, 0, len(v))
		for _, item := range v {
			if s := model.Stringify(item); s != "" {
				ids = append(ids, s)
			}
		}
		return ids
	default:
		if s := model.Stringify(v); s != "" {
			return []string{s}
		}
		return nil
	}
}

// Match evaluates a filter against a row whose column has the given kind.
// It fails only when the operator is not valid for the kind; values that
// cannot be parsed make the filter a non-match.
func Match(row model.Row, f Filter, kind model.DataKind, relations RelationExtractor) (bool, error) {
	d, ok := Lookup(f.Operator)
	if !ok {
		return false, &InvalidOperatorError{Operator: f.Operator, Column: f.ColumnID}
	}
	if !d.AppliesTo(kind) {
		return false, &InvalidOperatorError{Operator: f.Operator, Column: f.ColumnID, Kind: kind}
	}
	if relations == nil {
		relations = DefaultRelations
	}
	if kind == model.KindRelation {
		return matchRelation(relations(row, f.ColumnID), f.Operator, f.Value), nil
	}
	cell, present := row.Value(f.ColumnID)
	return matchCell(cell, present, f.Operator, f.Value, kind), nil
}

// Evaluator resolves column kinds for filters and trees over one column set.
type Evaluator struct {
	columns   map[string]model.Column
	relations RelationExtractor
}

// NewEvaluator creates an evaluator over columns. A nil extractor falls back
// to DefaultRelations.
func NewEvaluator(columns []model.Column, relations RelationExtractor) *Evaluator {
	if relations == nil {
		relations = DefaultRelations
	}
	return &Evaluator{columns: model.ColumnIndex(columns), relations: relations}
}

// Column returns the descriptor for a column id.
func (e *Evaluator) Column(id string) (model.Column, bool) {
	c, ok := e.columns[id]
	return c, ok
}

// MatchFilter evaluates one filter. A filter on a column the evaluator does
// not know sees no value: only isEmpty-style and negated operators match.
func (e *Evaluator) MatchFilter(row model.Row, f Filter) (bool, error) {
	col, ok := e.columns[f.ColumnID]
	if !ok {
		d, known := Lookup(f.Operator)
		if !known {
			return false, &InvalidOperatorError{Operator: f.Operator, Column: f.ColumnID}
		}
		if d.AppliesTo(model.KindRelation) && !d.AppliesTo(model.KindString) {
			return matchRelation(nil, f.Operator, f.Value), nil
		}
		return matchCell(nil, false, f.Operator, f.Value, d.Kinds[0]), nil
	}
	return Match(row, f, col.Kind, e.relations)
}

// MatchGroup evaluates a flat group. AND over no filters matches every row;
// OR over no filters matches none.
func (e *Evaluator) MatchGroup(row model.Row, g FilterGroup) (bool, error) {
	if err := checkLogic(g.Logic); err != nil {
		return false, err
	}
	if g.Logic == OR {
		for _, f := range g.Filters {
			ok, err := e.MatchFilter(row, f)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
	for _, f := range g.Filters {
		ok, err := e.MatchFilter(row, f)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// MatchGroups evaluates a simple-mode query: a row must pass every group.
func (e *Evaluator) MatchGroups(row model.Row, groups []FilterGroup) (bool, error) {
	for _, g := range groups {
		ok, err := e.MatchGroup(row, g)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// ValidateGroups checks the logic of every group and every filter whose
// column is known.
func (e *Evaluator) ValidateGroups(groups []FilterGroup) error {
	for _, g := range groups {
		if err := checkLogic(g.Logic); err != nil {
			return err
		}
		for _, f := range g.Filters {
			if err := e.validate(f); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Evaluator) validate(f Filter) error {
	col, ok := e.columns[f.ColumnID]
	if !ok {
		if _, known := Lookup(f.Operator); !known {
			return &InvalidOperatorError{Operator: f.Operator, Column: f.ColumnID}
		}
		return nil
	}
	return ValidateFilter(f, col)
}

func isBlank(cell any) bool {
	switch v := cell.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	return false
}

func matchCell(cell any, present bool, op Operator, v Value, kind model.DataKind) bool {
	empty := !present || isBlank(cell)
	switch op {
	case OpIsEmpty:
		return empty
	case OpIsNotEmpty:
		return !empty
	}

	switch kind {
	case model.KindNumber:
		return matchNumber(cell, empty, op, v)
	case model.KindDate:
		return matchDate(cell, empty, op, v)
	case model.KindBoolean:
		return matchBoolean(cell, empty, op, v)
	default:
		return matchString(cell, empty, op, v)
	}
}

func matchString(cell any, empty bool, op Operator, v Value) bool {
	if empty {
		return negated(op)
	}
	s := model.Stringify(cell)
	switch op {
	case OpEquals:
		return s == v.Text
	case OpNotEquals:
		return s != v.Text
	case OpContains, OpNotContains, OpStartsWith, OpEndsWith:
		return matchSubstring(s, op, v.Text)
	case OpIsAnyOf:
		return anyCellIn(cell, v.Items)
	case OpIsNoneOf:
		return !anyCellIn(cell, v.Items)
	}
	return false
}

func matchSubstring(s string, op Operator, text string) bool {
	f := newFolder()
	s, text = f.fold(s), f.fold(text)
	switch op {
	case OpContains:
		return strings.Contains(s, text)
	case OpNotContains:
		return !strings.Contains(s, text)
	case OpStartsWith:
		return strings.HasPrefix(s, text)
	default:
		return strings.HasSuffix(s, text)
	}
}

func anyCellIn(cell any, items []string) bool {
	switch c := cell.(type) {
	case []string:
		return len(lo.Intersect(c, items)) > 0
	case []any:
		for _, item := range c {
			if lo.Contains(items, model.Stringify(item)) {
				return true
			}
		}
		return false
	}
	return lo.Contains(items, model.Stringify(cell))
}

func matchNumber(cell any, empty bool, op Operator, v Value) bool {
	if op == OpIsAnyOf || op == OpIsNoneOf {
		if empty {
			return op == OpIsNoneOf
		}
		n, ok := toNumber(cell)
		if !ok {
			return false
		}
		in := lo.ContainsBy(v.Items, func(item string) bool {
			want, ok := parseNumber(item)
			return ok && want == n
		})
		return in == (op == OpIsAnyOf)
	}

	want, ok := parseNumber(v.Text)
	if !ok {
		return false
	}
	if empty {
		return negated(op)
	}
	n, ok := toNumber(cell)
	if !ok {
		return false
	}
	switch op {
	case OpEquals:
		return n == want
	case OpNotEquals:
		return n != want
	case OpGreaterThan:
		return n > want
	case OpGreaterThanOrEqual:
		return n >= want
	case OpLessThan:
		return n < want
	case OpLessThanOrEqual:
		return n <= want
	}
	return false
}

func matchDate(cell any, empty bool, op Operator, v Value) bool {
	want, dateOnly, ok := parseDate(v.Text)
	if !ok {
		return false
	}
	if empty {
		return negated(op)
	}
	t, ok := toTime(cell)
	if !ok {
		return false
	}
	if dateOnly && (op == OpEquals || op == OpNotEquals) {
		same := t.UTC().Format(dateLayout) == want.Format(dateLayout)
		return same == (op == OpEquals)
	}
	switch op {
	case OpEquals:
		return t.Equal(want)
	case OpNotEquals:
		return !t.Equal(want)
	case OpGreaterThan:
		return t.After(want)
	case OpGreaterThanOrEqual:
		return !t.Before(want)
	case OpLessThan:
		return t.Before(want)
	case OpLessThanOrEqual:
		return !t.After(want)
	}
	return false
}

func matchBoolean(cell any, empty bool, op Operator, v Value) bool {
	if op == OpIsAnyOf || op == OpIsNoneOf {
		if empty {
			return op == OpIsNoneOf
		}
		b, ok := toBool(cell)
		if !ok {
			return false
		}
		in := lo.ContainsBy(v.Items, func(item string) bool {
			want, err := strconv.ParseBool(strings.TrimSpace(item))
			return err == nil && want == b
		})
		return in == (op == OpIsAnyOf)
	}

	want, err := strconv.ParseBool(strings.TrimSpace(v.Text))
	if err != nil {
		return false
	}
	if empty {
		return negated(op)
	}
	b, ok := toBool(cell)
	if !ok {
		return false
	}
	switch op {
	case OpEquals:
		return b == want
	case OpNotEquals:
		return b != want
	}
	return false
}

func matchRelation(ids []string, op Operator, v Value) bool {
	switch op {
	case OpIsEmpty, OpHasNoRelation:
		return len(ids) == 0
	case OpIsNotEmpty, OpHasAnyRelation:
		return len(ids) > 0
	case OpRelatedTo:
		return lo.Contains(ids, v.Text)
	case OpNotRelatedTo:
		return !lo.Contains(ids, v.Text)
	case OpRelatedToAny:
		return len(lo.Intersect(ids, v.Items)) > 0
	case OpRelatedToAll:
		return lo.Every(ids, v.Items)
	}
	return false
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func toNumber(cell any) (float64, bool) {
	switch v := cell.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	case string:
		return parseNumber(v)
	}
	return 0, false
}

const dateLayout = "2006-01-02"

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseDate parses a date or datetime. dateOnly is set for YYYY-MM-DD
// input, which is read as midnight UTC.
func parseDate(s string) (t time.Time, dateOnly bool, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, false
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, false, true
		}
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true, true
	}
	return time.Time{}, false, false
}

func toTime(cell any) (time.Time, bool) {
	switch v := cell.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		t, _, ok := parseDate(v)
		return t, ok
	}
	return time.Time{}, false
}

func toBool(cell any) (bool, bool) {
	switch v := cell.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	case float64:
		return v != 0, true
	case int:
		return v != 0, true
	}
	return false, false
}
