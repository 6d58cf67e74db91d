// Package views stores named snapshots of query state ("saved views") and
// persists them through a pluggable load-all/save-all adapter.
package views

import (
	"maps"
	"reflect"
	"time"

	"github.com/cdtdelta/tablekit/internal/model"
	"github.com/cdtdelta/tablekit/internal/query"
)

// Snapshot is the comparable part of a query state that a saved view
// captures.
type Snapshot struct {
	Filters          []query.FilterGroup `json:"filters" yaml:"filters"`
	Sorting          query.SortSpec      `json:"sorting" yaml:"sorting"`
	ColumnVisibility map[string]bool     `json:"columnVisibility" yaml:"column_visibility"`
	ViewType         model.ViewType      `json:"viewType" yaml:"view_type"`
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Filters:          query.CloneGroups(s.Filters),
		Sorting:          s.Sorting.Clone(),
		ColumnVisibility: maps.Clone(s.ColumnVisibility),
		ViewType:         s.ViewType,
	}
}

// Equal reports deep, order-sensitive equality. Nil and empty collections
// are equal, so a snapshot survives a round trip through storage.
func (s Snapshot) Equal(o Snapshot) bool {
	return reflect.DeepEqual(s.normalized(), o.normalized())
}

func (s Snapshot) normalized() Snapshot {
	n := s.Clone()
	if len(n.Filters) == 0 {
		n.Filters = nil
	}
	for i := range n.Filters {
		if len(n.Filters[i].Filters) == 0 {
			n.Filters[i].Filters = nil
		}
		for j := range n.Filters[i].Filters {
			if len(n.Filters[i].Filters[j].Value.Items) == 0 {
				n.Filters[i].Filters[j].Value.Items = nil
			}
		}
	}
	if len(n.Sorting) == 0 {
		n.Sorting = nil
	}
	if len(n.ColumnVisibility) == 0 {
		n.ColumnVisibility = nil
	}
	return n
}

// SavedView is a named, persisted snapshot. Snapshot fields are flattened
// into the view when serialized.
type SavedView struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	IsDefault   bool      `json:"isDefault" yaml:"is_default"`
	CreatedAt   time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updated_at"`
	Snapshot    `yaml:",inline"`
}

// Clone returns a deep copy.
func (v SavedView) Clone() SavedView {
	v.Snapshot = v.Snapshot.Clone()
	return v
}

func cloneViews(views []SavedView) []SavedView {
	if views == nil {
		return nil
	}
	out := make([]SavedView, len(views))
	for i, v := range views {
		out[i] = v.Clone()
	}
	return out
}
