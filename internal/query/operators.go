package query

import (
	"github.com/cdtdelta/tablekit/internal/model"
)

// Operator is a filter comparison operator.
type Operator string

const (
	OpEquals             Operator = "equals"
	OpNotEquals          Operator = "notEquals"
	OpContains           Operator = "contains"
	OpNotContains        Operator = "notContains"
	OpStartsWith         Operator = "startsWith"
	OpEndsWith           Operator = "endsWith"
	OpGreaterThan        Operator = "greaterThan"
	OpGreaterThanOrEqual Operator = "greaterThanOrEqual"
	OpLessThan           Operator = "lessThan"
	OpLessThanOrEqual    Operator = "lessThanOrEqual"
	OpIsEmpty            Operator = "isEmpty"
	OpIsNotEmpty         Operator = "isNotEmpty"
	OpIsAnyOf            Operator = "isAnyOf"
	OpIsNoneOf           Operator = "isNoneOf"
	OpRelatedTo          Operator = "relatedTo"
	OpNotRelatedTo       Operator = "notRelatedTo"
	OpHasAnyRelation     Operator = "hasAnyRelation"
	OpHasNoRelation      Operator = "hasNoRelation"
	OpRelatedToAny       Operator = "relatedToAny"
	OpRelatedToAll       Operator = "relatedToAll"
)

// inputScalar marks operators whose input follows the column kind
// (text for strings, number for numbers, and so on).
const inputScalar InputKind = "scalar"

// OperatorDef declares where an operator applies and what input it expects.
type OperatorDef struct {
	Op    Operator
	Label string
	Kinds []model.DataKind
	Input InputKind
}

// AppliesTo reports whether the operator is valid for a column kind.
func (d OperatorDef) AppliesTo(kind model.DataKind) bool {
	for _, k := range d.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

var (
	valueKinds    = []model.DataKind{model.KindString, model.KindNumber, model.KindDate, model.KindBoolean}
	orderedKinds  = []model.DataKind{model.KindNumber, model.KindDate}
	textKinds     = []model.DataKind{model.KindString}
	presenceKinds = []model.DataKind{model.KindString, model.KindNumber, model.KindDate, model.KindBoolean, model.KindRelation}
	setKinds      = []model.DataKind{model.KindString, model.KindNumber, model.KindBoolean}
	relationKinds = []model.DataKind{model.KindRelation}
)

// operatorDefs is the registry in picker order.
var operatorDefs = []OperatorDef{
	{OpEquals, "is", valueKinds, inputScalar},
	{OpNotEquals, "is not", valueKinds, inputScalar},
	{OpContains, "contains", textKinds, InputText},
	{OpNotContains, "does not contain", textKinds, InputText},
	{OpStartsWith, "starts with", textKinds, InputText},
	{OpEndsWith, "ends with", textKinds, InputText},
	{OpGreaterThan, "greater than", orderedKinds, inputScalar},
	{OpGreaterThanOrEqual, "greater than or equal", orderedKinds, inputScalar},
	{OpLessThan, "less than", orderedKinds, inputScalar},
	{OpLessThanOrEqual, "less than or equal", orderedKinds, inputScalar},
	{OpIsEmpty, "is empty", presenceKinds, InputNone},
	{OpIsNotEmpty, "is not empty", presenceKinds, InputNone},
	{OpIsAnyOf, "is any of", setKinds, InputMultiChoice},
	{OpIsNoneOf, "is none of", setKinds, InputMultiChoice},
	{OpRelatedTo, "related to", relationKinds, InputChoice},
	{OpNotRelatedTo, "not related to", relationKinds, InputChoice},
	{OpHasAnyRelation, "has any relation", relationKinds, InputNone},
	{OpHasNoRelation, "has no relation", relationKinds, InputNone},
	{OpRelatedToAny, "related to any of", relationKinds, InputMultiChoice},
	{OpRelatedToAll, "related to all of", relationKinds, InputMultiChoice},
}

var operatorIndex = func() map[Operator]OperatorDef {
	idx := make(map[Operator]OperatorDef, len(operatorDefs))
	for _, d := range operatorDefs {
		idx[d.Op] = d
	}
	return idx
}()

// Lookup returns the definition of an operator.
func Lookup(op Operator) (OperatorDef, bool) {
	d, ok := operatorIndex[op]
	return d, ok
}

// OperatorsFor returns the operators valid for a column kind, in picker order.
func OperatorsFor(kind model.DataKind) []OperatorDef {
	var defs []OperatorDef
	for _, d := range operatorDefs {
		if d.AppliesTo(kind) {
			defs = append(defs, d)
		}
	}
	return defs
}

// InputFor resolves the input kind an operator expects on a column kind.
func InputFor(op Operator, kind model.DataKind) InputKind {
	d, ok := Lookup(op)
	if !ok {
		return InputNone
	}
	if d.Input != inputScalar {
		return d.Input
	}
	switch kind {
	case model.KindNumber:
		return InputNumber
	case model.KindDate:
		return InputDate
	case model.KindBoolean, model.KindRelation:
		return InputChoice
	default:
		return InputText
	}
}

// negated reports whether an operator is satisfied by the absence of a
// value (notEquals, notContains, isNoneOf, notRelatedTo).
func negated(op Operator) bool {
	switch op {
	case OpNotEquals, OpNotContains, OpIsNoneOf, OpNotRelatedTo:
		return true
	}
	return false
}
