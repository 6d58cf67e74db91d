// Package selection tracks selected rows by key, with shift-click style
// range selection anchored on the last toggled row.
package selection

import (
	"slices"

	"github.com/samber/lo"
)

// Manager holds the set of selected row keys. It is transient UI state and
// is never persisted. The zero value is not usable; call New.
type Manager struct {
	selected map[string]struct{}
	anchor   string
	anchored bool
}

// New returns an empty selection.
func New() *Manager {
	return &Manager{selected: make(map[string]struct{})}
}

// Toggle flips the membership of key and makes it the range anchor.
func (m *Manager) Toggle(key string) {
	if _, ok := m.selected[key]; ok {
		delete(m.selected, key)
	} else {
		m.selected[key] = struct{}{}
	}
	m.anchor, m.anchored = key, true
}

// ExtendRange selects every key between the anchor and key, inclusive, in
// the given order. Keys in the range are added, never removed. Without an
// anchor in order, or when key is not in order, it behaves like Toggle.
// The anchor stays where it was so repeated extends pivot on one row.
func (m *Manager) ExtendRange(key string, order []string) {
	if !m.anchored {
		m.Toggle(key)
		return
	}
	from := slices.Index(order, m.anchor)
	to := slices.Index(order, key)
	if from < 0 || to < 0 {
		m.Toggle(key)
		return
	}
	if from > to {
		from, to = to, from
	}
	for _, k := range order[from : to+1] {
		m.selected[k] = struct{}{}
	}
}

// SelectAll replaces the selection with keys.
func (m *Manager) SelectAll(keys []string) {
	m.selected = make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m.selected[k] = struct{}{}
	}
}

// SelectNone clears the selection and the anchor.
func (m *Manager) SelectNone() {
	m.selected = make(map[string]struct{})
	m.anchor, m.anchored = "", false
}

// Retain drops selected keys that are not in keys.
func (m *Manager) Retain(keys []string) {
	keep := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		keep[k] = struct{}{}
	}
	for k := range m.selected {
		if _, ok := keep[k]; !ok {
			delete(m.selected, k)
		}
	}
	if _, ok := keep[m.anchor]; m.anchored && !ok {
		m.anchor, m.anchored = "", false
	}
}

func (m *Manager) Count() int { return len(m.selected) }

func (m *Manager) IsSelected(key string) bool {
	_, ok := m.selected[key]
	return ok
}

// Selected returns the selected keys in sorted order.
func (m *Manager) Selected() []string {
	keys := lo.Keys(m.selected)
	slices.Sort(keys)
	return keys
}

// Anchor returns the key range selection extends from.
func (m *Manager) Anchor() (string, bool) { return m.anchor, m.anchored }

// IsAllSelected reports whether keys is non-empty and fully selected.
func (m *Manager) IsAllSelected(keys []string) bool {
	return len(keys) > 0 && lo.EveryBy(keys, m.IsSelected)
}

// IsIndeterminate reports whether some, but not all, of keys are selected.
func (m *Manager) IsIndeterminate(keys []string) bool {
	return lo.SomeBy(keys, m.IsSelected) && !m.IsAllSelected(keys)
}
