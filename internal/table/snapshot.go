package table

import (
	"maps"

	"github.com/cdtdelta/tablekit/internal/query"
	"github.com/cdtdelta/tablekit/internal/views"
)

// Snapshot captures the parts of the state a saved view stores.
func (e *Engine) Snapshot() views.Snapshot {
	return views.Snapshot{
		Filters:          query.CloneGroups(e.filterGroups),
		Sorting:          e.sorting.Clone(),
		ColumnVisibility: maps.Clone(e.columnVisibility),
		ViewType:         e.activeView,
	}
}

// ApplySnapshot replaces filters, sorting, column visibility and view type
// with those of snap. The advanced filter is removed since snapshots do not
// carry one. A view type that is not available falls back to the first
// available view and sort keys on unsortable columns are dropped, both with
// a warning. Invalid filters are rejected and leave the state unchanged.
func (e *Engine) ApplySnapshot(snap views.Snapshot) error {
	if err := e.eval.ValidateGroups(snap.Filters); err != nil {
		return err
	}

	sorting := make(query.SortSpec, 0, len(snap.Sorting))
	for _, k := range snap.Sorting {
		if c, ok := e.columns[k.ColumnID]; ok && !c.Sortable {
			e.log.Warn("dropping sort on unsortable column", "column", k.ColumnID)
			continue
		}
		sorting = append(sorting, k)
	}
	if len(sorting) == 0 {
		sorting = nil
	}

	view := e.resolveView(snap.ViewType)
	if view != snap.ViewType {
		e.log.Warn("saved view type not available", "view", snap.ViewType, "fallback", view)
	}

	e.filterGroups = query.CloneGroups(snap.Filters)
	e.advanced = nil
	e.sorting = sorting
	e.columnVisibility = maps.Clone(snap.ColumnVisibility)
	e.activeView = view
	e.filtersChanged()
	return nil
}

// ApplySavedView loads a saved view into the engine and makes it the
// active saved view. An unknown id is a no-op that reports false.
func (e *Engine) ApplySavedView(store *views.Store, id string) (bool, error) {
	snap := store.Apply(id)
	if snap == nil {
		return false, nil
	}
	if err := e.ApplySnapshot(*snap); err != nil {
		return false, err
	}
	e.savedViewID = id
	return true, nil
}

// ActiveSavedViewID returns the id of the saved view last applied, or "".
func (e *Engine) ActiveSavedViewID() string { return e.savedViewID }

// SetActiveSavedViewID records which saved view the state came from, for
// example right after saving the current state as a new view.
func (e *Engine) SetActiveSavedViewID(id string) { e.savedViewID = id }

// ResolveSavedView returns the saved view the current state belongs to and
// records it as active. A deleted active view is forgotten. With no active
// view, a saved view whose snapshot equals the current state is adopted.
func (e *Engine) ResolveSavedView(store *views.Store) *views.SavedView {
	v := e.lookupSavedView(store)
	if v == nil {
		e.savedViewID = ""
		return nil
	}
	e.savedViewID = v.ID
	return v
}

// lookupSavedView is ResolveSavedView without recording the result.
func (e *Engine) lookupSavedView(store *views.Store) *views.SavedView {
	if e.savedViewID != "" {
		if v := store.Get(e.savedViewID); v != nil {
			return v
		}
	}
	return store.FindMatching(e.Snapshot())
}

// HasUnsavedChanges reports whether the state differs from the saved view
// it belongs to. Without one, it reports whether the state carries any
// filters, sorting or column visibility that no saved view captures. It
// does not change the active saved view.
func (e *Engine) HasUnsavedChanges(store *views.Store) bool {
	snap := e.Snapshot()
	if v := e.lookupSavedView(store); v != nil {
		return !v.Snapshot.Equal(snap)
	}
	return len(snap.Filters) > 0 || len(snap.Sorting) > 0 || len(snap.ColumnVisibility) > 0
}
