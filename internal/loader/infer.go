package loader

import (
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/cdtdelta/tablekit/internal/model"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// isEmptyText reports whether a raw text cell carries no value. A lone dash
// is the placeholder many exporters write for a missing field.
func isEmptyText(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "-"
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

func isBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "false":
		return true
	}
	return false
}

func isDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// inferTextKind picks the narrowest kind every non-empty value satisfies.
// A column with no values at all is a string column.
func inferTextKind(values []string) model.DataKind {
	present := lo.Reject(values, func(s string, _ int) bool { return isEmptyText(s) })
	if len(present) == 0 {
		return model.KindString
	}
	switch {
	case lo.EveryBy(present, isNumber):
		return model.KindNumber
	case lo.EveryBy(present, isBool):
		return model.KindBoolean
	case lo.EveryBy(present, isDate):
		return model.KindDate
	}
	return model.KindString
}

// convertText turns a raw text cell into the value stored for a column of
// the given kind. Empty cells become nil. Dates keep their text form.
func convertText(s string, kind model.DataKind) any {
	if isEmptyText(s) {
		return nil
	}
	s = strings.TrimSpace(s)
	switch kind {
	case model.KindNumber:
		n, _ := strconv.ParseFloat(s, 64)
		return n
	case model.KindBoolean:
		return strings.EqualFold(s, "true")
	}
	return s
}

// inferValueKind picks a kind for decoded JSON values. Arrays of strings
// are relation columns holding ids of related records.
func inferValueKind(values []any) model.DataKind {
	present := lo.Filter(values, func(v any, _ int) bool { return v != nil })
	if len(present) == 0 {
		return model.KindString
	}
	switch {
	case lo.EveryBy(present, isFloat):
		return model.KindNumber
	case lo.EveryBy(present, isBoolValue):
		return model.KindBoolean
	case lo.EveryBy(present, isStringList):
		return model.KindRelation
	case lo.EveryBy(present, isDateValue):
		return model.KindDate
	}
	return model.KindString
}

func isFloat(v any) bool {
	_, ok := v.(float64)
	return ok
}

func isBoolValue(v any) bool {
	_, ok := v.(bool)
	return ok
}

func isStringList(v any) bool {
	_, ok := v.([]string)
	return ok
}

func isDateValue(v any) bool {
	s, ok := v.(string)
	return ok && isDate(s)
}
