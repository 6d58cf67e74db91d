package query

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cdtdelta/tablekit/internal/model"
)

// Logic determines how multiple conditions are combined.
type Logic string

const (
	AND Logic = "AND"
	OR  Logic = "OR"
)

// Valid reports whether l is AND, OR or empty. Empty logic means AND.
func (l Logic) Valid() bool {
	return l == "" || l == AND || l == OR
}

func checkLogic(l Logic) error {
	if !l.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLogic, string(l))
	}
	return nil
}

var (
	// ErrInvalidOperator is matched by every InvalidOperatorError.
	ErrInvalidOperator = errors.New("invalid operator")

	// ErrInvalidLogic is returned for a group whose logic is neither AND
	// nor OR.
	ErrInvalidLogic = errors.New("invalid group logic")

	// ErrValueShape is returned when a filter value does not have the input
	// kind its operator expects on the column.
	ErrValueShape = errors.New("filter value does not match operator input")
)

// InvalidOperatorError reports a filter whose operator is not declared for
// the column's data kind. It is a configuration error.
type InvalidOperatorError struct {
	Operator Operator
	Column   string
	Kind     model.DataKind
}

func (e *InvalidOperatorError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("unknown operator %q on column %q", e.Operator, e.Column)
	}
	return fmt.Sprintf("operator %q is not valid for column %q of kind %s", e.Operator, e.Column, e.Kind)
}

func (e *InvalidOperatorError) Unwrap() error { return ErrInvalidOperator }

// Filter is a single flat filter condition.
type Filter struct {
	ID       string   `json:"id" yaml:"id"`
	ColumnID string   `json:"columnId" yaml:"column_id"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    Value    `json:"value" yaml:"value"`
}

// FilterGroup is one level of filters joined by Logic.
type FilterGroup struct {
	Logic   Logic    `json:"logic" yaml:"logic"`
	Filters []Filter `json:"filters" yaml:"filters"`
}

// NewFilter builds a filter for a column, checking the operator and value
// shape. A value with an empty Kind takes the kind the operator expects.
func NewFilter(col model.Column, op Operator, v Value) (Filter, error) {
	if v.Kind == "" {
		v.Kind = InputFor(op, col.Kind)
	}
	f := Filter{
		ID:       uuid.NewString(),
		ColumnID: col.ID,
		Operator: op,
		Value:    v,
	}
	if err := ValidateFilter(f, col); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// ValidateFilter checks a filter against its column descriptor.
func ValidateFilter(f Filter, col model.Column) error {
	d, ok := Lookup(f.Operator)
	if !ok {
		return &InvalidOperatorError{Operator: f.Operator, Column: col.ID}
	}
	if !d.AppliesTo(col.Kind) {
		return &InvalidOperatorError{Operator: f.Operator, Column: col.ID, Kind: col.Kind}
	}
	want := InputFor(f.Operator, col.Kind)
	if f.Value.Kind != "" && f.Value.Kind != want {
		return fmt.Errorf("%w: %s on column %q expects %s, got %s",
			ErrValueShape, f.Operator, col.ID, want, f.Value.Kind)
	}
	return nil
}

// Clone returns a deep copy of the group.
func (g FilterGroup) Clone() FilterGroup {
	out := FilterGroup{Logic: g.Logic}
	if g.Filters != nil {
		out.Filters = make([]Filter, len(g.Filters))
		for i, f := range g.Filters {
			f.Value = f.Value.Clone()
			out.Filters[i] = f
		}
	}
	return out
}

// CloneGroups deep-copies a filter group list.
func CloneGroups(groups []FilterGroup) []FilterGroup {
	if groups == nil {
		return nil
	}
	out := make([]FilterGroup, len(groups))
	for i, g := range groups {
		out[i] = g.Clone()
	}
	return out
}

// CountFilters returns the number of filters across all groups.
func CountFilters(groups []FilterGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Filters)
	}
	return n
}
