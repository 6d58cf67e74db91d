package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/cdtdelta/tablekit/internal/model"
)

// SortKey orders rows by one column.
type SortKey struct {
	ColumnID   string `json:"columnId" yaml:"column_id"`
	Descending bool   `json:"descending" yaml:"descending"`
}

// SortSpec is an ordered list of sort keys; the first key is primary.
type SortSpec []SortKey

// Clone returns a copy of the spec.
func (s SortSpec) Clone() SortSpec {
	if s == nil {
		return nil
	}
	return append(SortSpec(nil), s...)
}

// sortCell is a cell value prepared for comparison. ok is false for missing
// or unparseable values, which always sort last.
type sortCell struct {
	ok  bool
	num float64
	str string
	t   time.Time
}

// SortRows returns a stably sorted copy of rows. Columns absent from the
// index compare as strings, so a key on an unknown column has no values and
// leaves the order unchanged.
func SortRows(rows []model.Row, spec SortSpec, columns map[string]model.Column) []model.Row {
	out := slices.Clone(rows)
	if len(spec) == 0 || len(out) < 2 {
		return out
	}

	kinds := make([]model.DataKind, len(spec))
	for i, k := range spec {
		kinds[i] = model.KindString
		if c, ok := columns[k.ColumnID]; ok {
			kinds[i] = c.Kind
		}
	}

	type decorated struct {
		row   model.Row
		cells []sortCell
	}
	f := newFolder()
	items := make([]decorated, len(out))
	for i, r := range out {
		cells := make([]sortCell, len(spec))
		for j, k := range spec {
			cells[j] = prepareSortCell(f, r, k.ColumnID, kinds[j])
		}
		items[i] = decorated{row: r, cells: cells}
	}

	slices.SortStableFunc(items, func(a, b decorated) int {
		for j, k := range spec {
			ca, cb := a.cells[j], b.cells[j]
			switch {
			case !ca.ok && !cb.ok:
				continue
			case !ca.ok:
				return 1
			case !cb.ok:
				return -1
			}
			c := compareSortCells(ca, cb, kinds[j])
			if k.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})

	for i, it := range items {
		out[i] = it.row
	}
	return out
}

func prepareSortCell(f folder, r model.Row, columnID string, kind model.DataKind) sortCell {
	cell, present := r.Value(columnID)
	if !present || isBlank(cell) {
		return sortCell{}
	}
	switch kind {
	case model.KindNumber:
		n, ok := toNumber(cell)
		return sortCell{ok: ok, num: n}
	case model.KindDate:
		t, ok := toTime(cell)
		return sortCell{ok: ok, t: t}
	case model.KindBoolean:
		b, ok := toBool(cell)
		if b {
			return sortCell{ok: ok, num: 1}
		}
		return sortCell{ok: ok}
	default:
		return sortCell{ok: true, str: f.fold(model.Stringify(cell))}
	}
}

func compareSortCells(a, b sortCell, kind model.DataKind) int {
	switch kind {
	case model.KindNumber, model.KindBoolean:
		return cmp.Compare(a.num, b.num)
	case model.KindDate:
		return a.t.Compare(b.t)
	default:
		return strings.Compare(a.str, b.str)
	}
}
