// Package table combines search, filters, sorting, grouping, pagination,
// view selection and row selection into one query state over a caller's
// rows.
package table

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/cdtdelta/tablekit/internal/group"
	"github.com/cdtdelta/tablekit/internal/logger"
	"github.com/cdtdelta/tablekit/internal/model"
	"github.com/cdtdelta/tablekit/internal/query"
	"github.com/cdtdelta/tablekit/internal/selection"
)

var (
	// ErrNoViewsAvailable is returned by New when no registered view type
	// is enabled.
	ErrNoViewsAvailable = errors.New("no views available")

	ErrViewNotAvailable   = errors.New("view not available")
	ErrColumnNotSortable  = errors.New("column is not sortable")
	ErrUnknownColumn      = errors.New("unknown column")
	ErrInvalidPageSize    = errors.New("page size must be positive")
	ErrInvalidGroupConfig = errors.New("invalid group config")
)

// State is a read-only copy of the engine's query state.
type State struct {
	ActiveView        model.ViewType      `json:"activeView"`
	GlobalFilter      string              `json:"globalFilter"`
	Sorting           query.SortSpec      `json:"sorting"`
	FilterGroups      []query.FilterGroup `json:"filterGroups"`
	AdvancedFilter    *query.Node         `json:"advancedFilter,omitempty"`
	Grouping          *group.Config       `json:"grouping,omitempty"`
	ColumnVisibility  map[string]bool     `json:"columnVisibility"`
	PageIndex         int                 `json:"pageIndex"`
	PageSize          int                 `json:"pageSize"`
	Paginated         bool                `json:"paginated"`
	ActiveSavedViewID string              `json:"activeSavedViewId,omitempty"`
}

// Engine owns the query state for one table instance. It is not safe for
// concurrent use.
type Engine struct {
	opts      Options
	columns   map[string]model.Column
	eval      *query.Evaluator
	available []ViewConfig
	log       *slog.Logger

	activeView       model.ViewType
	globalFilter     string
	sorting          query.SortSpec
	filterGroups     []query.FilterGroup
	advanced         *query.Node
	grouping         *group.Config
	columnVisibility map[string]bool
	pageIndex        int
	pageSize         int
	paginated        bool
	savedViewID      string

	selection *selection.Manager
}

// New creates an engine. It fails with ErrNoViewsAvailable when none of
// the enabled views is in the registry. A default view that is not enabled
// falls back to the first available view.
func New(opts Options) (*Engine, error) {
	opts = opts.withDefaults()

	var available []ViewConfig
	for _, v := range opts.Views {
		if slices.Contains(opts.EnabledViews, v.Type) {
			available = append(available, v)
		}
	}
	if len(available) == 0 {
		return nil, ErrNoViewsAvailable
	}

	log := opts.Logger
	if log == nil {
		log = logger.Get()
	}

	e := &Engine{
		opts:      opts,
		columns:   model.ColumnIndex(opts.Columns),
		eval:      query.NewEvaluator(opts.Columns, opts.Relations),
		available: available,
		log:       log,
		pageSize:  opts.PageSize,
		paginated: opts.Paginated,
		selection: selection.New(),
	}
	e.activeView = e.resolveView(opts.DefaultView)
	return e, nil
}

func (e *Engine) resolveView(v model.ViewType) model.ViewType {
	if e.isAvailable(v) {
		return v
	}
	return e.available[0].Type
}

func (e *Engine) isAvailable(v model.ViewType) bool {
	return slices.ContainsFunc(e.available, func(c ViewConfig) bool { return c.Type == v })
}

// Columns returns the column descriptors in order.
func (e *Engine) Columns() []model.Column {
	return slices.Clone(e.opts.Columns)
}

// AvailableViews returns the enabled views in registry order.
func (e *Engine) AvailableViews() []ViewConfig {
	return slices.Clone(e.available)
}

// ActiveView returns the current view type.
func (e *Engine) ActiveView() model.ViewType { return e.activeView }

// Selection returns the engine's row selection.
func (e *Engine) Selection() *selection.Manager { return e.selection }

// State returns a deep copy of the current query state.
func (e *Engine) State() State {
	s := State{
		ActiveView:        e.activeView,
		GlobalFilter:      e.globalFilter,
		Sorting:           e.sorting.Clone(),
		FilterGroups:      query.CloneGroups(e.filterGroups),
		ColumnVisibility:  maps.Clone(e.columnVisibility),
		PageIndex:         e.pageIndex,
		PageSize:          e.pageSize,
		Paginated:         e.paginated,
		ActiveSavedViewID: e.savedViewID,
	}
	if e.advanced != nil {
		n := e.advanced.Clone()
		s.AdvancedFilter = &n
	}
	if e.grouping != nil {
		g := e.grouping.Clone()
		s.Grouping = &g
	}
	return s
}

// filtersChanged applies the side effects shared by every change to the
// row filter: back to the first page and, by policy, an empty selection.
func (e *Engine) filtersChanged() {
	e.pageIndex = 0
	if e.opts.ClearSelectionOnFilterChange {
		e.selection.SelectNone()
	}
}

// SetGlobalFilter sets the search text.
func (e *Engine) SetGlobalFilter(text string) {
	if text == e.globalFilter {
		return
	}
	e.globalFilter = text
	e.filtersChanged()
}

// SetSort replaces the sort keys. A key on a known column must be sortable;
// a key on an unknown column sees no values and leaves the order as is.
func (e *Engine) SetSort(spec query.SortSpec) error {
	for _, k := range spec {
		if c, ok := e.columns[k.ColumnID]; ok && !c.Sortable {
			return fmt.Errorf("sorting by %q: %w", k.ColumnID, ErrColumnNotSortable)
		}
	}
	e.sorting = spec.Clone()
	e.pageIndex = 0
	return nil
}

// SetFilterGroups replaces the simple-mode filters. Filters whose operator
// does not apply to their column are rejected.
func (e *Engine) SetFilterGroups(groups []query.FilterGroup) error {
	if err := e.eval.ValidateGroups(groups); err != nil {
		return err
	}
	e.filterGroups = query.CloneGroups(groups)
	e.filtersChanged()
	return nil
}

// SetAdvancedFilter replaces the advanced filter tree; nil removes it. The
// tree is applied in addition to the simple-mode filters.
func (e *Engine) SetAdvancedFilter(tree *query.Node) error {
	if tree == nil {
		if e.advanced != nil {
			e.advanced = nil
			e.filtersChanged()
		}
		return nil
	}
	if err := e.eval.ValidateTree(*tree, e.opts.MaxFilterDepth); err != nil {
		return err
	}
	n := tree.Clone()
	e.advanced = &n
	e.filtersChanged()
	return nil
}

// ClearFilters removes search text, filter groups and the advanced filter.
func (e *Engine) ClearFilters() {
	e.globalFilter = ""
	e.filterGroups = nil
	e.advanced = nil
	e.filtersChanged()
}

// SetGroupConfig sets or, with nil, removes grouping. Grouping does not
// change the page.
func (e *Engine) SetGroupConfig(cfg *group.Config) error {
	if cfg == nil {
		e.grouping = nil
		return nil
	}
	if _, ok := e.columns[cfg.ColumnID]; !ok {
		return fmt.Errorf("grouping by %q: %w", cfg.ColumnID, ErrUnknownColumn)
	}
	if !cfg.SortOrder.Valid() {
		return fmt.Errorf("%w: sort order %q", ErrInvalidGroupConfig, cfg.SortOrder)
	}
	g := cfg.Clone()
	e.grouping = &g
	return nil
}

// ToggleGroupHidden flips whether a group value is hidden. It reports false
// when no grouping is set.
func (e *Engine) ToggleGroupHidden(value string) bool {
	if e.grouping == nil {
		return false
	}
	g := group.ToggleHidden(*e.grouping, value)
	e.grouping = &g
	return true
}

// ToggleGroupCollapsed flips whether a group value is collapsed. It reports
// false when no grouping is set.
func (e *Engine) ToggleGroupCollapsed(value string) bool {
	if e.grouping == nil {
		return false
	}
	g := group.ToggleCollapsed(*e.grouping, value)
	e.grouping = &g
	return true
}

// SetActiveView switches the renderer. Pagination is kept.
func (e *Engine) SetActiveView(v model.ViewType) error {
	if !e.isAvailable(v) {
		return fmt.Errorf("%w: %s", ErrViewNotAvailable, v)
	}
	e.activeView = v
	return nil
}

// SetColumnVisibility replaces the visibility map. Columns absent from the
// map are visible.
func (e *Engine) SetColumnVisibility(visibility map[string]bool) {
	e.columnVisibility = maps.Clone(visibility)
}

// VisibleColumns returns the columns not hidden by the visibility map.
func (e *Engine) VisibleColumns() []model.Column {
	var out []model.Column
	for _, c := range e.opts.Columns {
		if visible, ok := e.columnVisibility[c.ID]; ok && !visible {
			continue
		}
		out = append(out, c)
	}
	return out
}

// SetPageIndex moves to a page. Negative indexes are clamped to zero.
func (e *Engine) SetPageIndex(i int) {
	e.pageIndex = max(i, 0)
}

// SetPageSize changes the page size and returns to the first page.
func (e *Engine) SetPageSize(n int) error {
	if n <= 0 {
		return ErrInvalidPageSize
	}
	e.pageSize = n
	e.pageIndex = 0
	return nil
}

// SetPaginated turns pagination on or off.
func (e *Engine) SetPaginated(on bool) {
	e.paginated = on
	e.pageIndex = 0
}

// FilteredRows applies search, filters and sorting without pagination.
func (e *Engine) FilteredRows(rows []model.Row) []model.Row {
	out := query.Search(rows, e.globalFilter, e.opts.Columns)
	if len(e.filterGroups) > 0 || e.advanced != nil {
		kept := make([]model.Row, 0, len(out))
		for _, r := range out {
			if e.matches(r) {
				kept = append(kept, r)
			}
		}
		out = kept
	}
	return query.SortRows(out, e.sorting, e.columns)
}

func (e *Engine) matches(r model.Row) bool {
	ok, err := e.eval.MatchGroups(r, e.filterGroups)
	if err != nil || !ok {
		return false
	}
	if e.advanced == nil {
		return true
	}
	ok, err = e.eval.Evaluate(r, *e.advanced)
	return err == nil && ok
}

// Result is one derivation pass over a row set.
type Result struct {
	// Filtered holds every row passing search and filters, sorted.
	Filtered []model.Row
	// Page is the slice of Filtered to display.
	Page      []model.Row
	PageCount int
	// Groups partitions Filtered; nil when no grouping is set.
	Groups []group.GroupedRow
}

// Derive runs search, filters and sort once and derives the page, page
// count and groups from the result.
func (e *Engine) Derive(rows []model.Row) Result {
	filtered := e.FilteredRows(rows)
	res := Result{
		Filtered:  filtered,
		Page:      e.pageOf(filtered),
		PageCount: e.pageCountOf(filtered),
	}
	if e.grouping != nil {
		res.Groups = group.Group(filtered, e.grouping.ColumnID, *e.grouping, e.opts.UncategorizedLabel)
	}
	e.log.Debug("rows derived",
		"input", len(rows),
		"filtered", len(filtered),
		"output", len(res.Page),
		"page", e.pageIndex,
	)
	return res
}

// DeriveRows returns the rows to display: search, then filters, then sort,
// then the current page when paginated. A page past the end is empty.
func (e *Engine) DeriveRows(rows []model.Row) []model.Row {
	return e.Derive(rows).Page
}

func (e *Engine) pageOf(filtered []model.Row) []model.Row {
	if !e.paginated {
		return filtered
	}
	return page(filtered, e.pageIndex, e.pageSize)
}

// page returns rows[index*size:] bounded to size rows. The bounds are
// checked before multiplying so huge indexes cannot overflow.
func page(rows []model.Row, index, size int) []model.Row {
	if size <= 0 || index < 0 || index > len(rows)/size {
		return []model.Row{}
	}
	start := index * size
	if start >= len(rows) {
		return []model.Row{}
	}
	end := start + min(size, len(rows)-start)
	return rows[start:end]
}

// PageCount returns the number of pages for rows under the current query.
// It is 1 when pagination is off and at least 1 otherwise.
func (e *Engine) PageCount(rows []model.Row) int {
	return e.pageCountOf(e.FilteredRows(rows))
}

func (e *Engine) pageCountOf(filtered []model.Row) int {
	if !e.paginated {
		return 1
	}
	n := len(filtered)
	pages := n / e.pageSize
	if n%e.pageSize != 0 {
		pages++
	}
	return max(pages, 1)
}

// Groups partitions the filtered, sorted rows per the grouping config. It
// returns nil when no grouping is set.
func (e *Engine) Groups(rows []model.Row) []group.GroupedRow {
	return e.Derive(rows).Groups
}

// GroupValues lists the distinct values of the grouping column over rows,
// for show/hide pickers. It returns nil when no grouping is set.
func (e *Engine) GroupValues(rows []model.Row) []string {
	if e.grouping == nil {
		return nil
	}
	return group.UniqueValues(rows, e.grouping.ColumnID, e.opts.UncategorizedLabel)
}
