package model

// DataKind is the underlying value type of a column. It drives which filter
// operators apply and how values compare when filtering and sorting.
type DataKind string

const (
	KindString  DataKind = "string"
	KindNumber  DataKind = "number"
	KindDate    DataKind = "date"
	KindBoolean DataKind = "boolean"
	// KindRelation marks a reference-valued column whose cells hold one or
	// more ids of related records.
	KindRelation DataKind = "relation"
)

// Valid reports whether k is one of the known data kinds.
func (k DataKind) Valid() bool {
	switch k {
	case KindString, KindNumber, KindDate, KindBoolean, KindRelation:
		return true
	}
	return false
}

// Column describes a data field. Columns are supplied by the caller and
// treated as read-only reference data.
type Column struct {
	ID          string   `json:"id" yaml:"id"`
	DisplayName string   `json:"displayName" yaml:"display_name"`
	Kind        DataKind `json:"dataKind" yaml:"data_kind"`
	Sortable    bool     `json:"sortable" yaml:"sortable"`
	Filterable  bool     `json:"filterable" yaml:"filterable"`
}

// Label returns the display name, falling back to the id.
func (c Column) Label() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.ID
}

// ColumnIndex maps column ids to their descriptors.
func ColumnIndex(columns []Column) map[string]Column {
	idx := make(map[string]Column, len(columns))
	for _, c := range columns {
		idx[c.ID] = c
	}
	return idx
}
