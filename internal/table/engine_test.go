package table

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"reflect"
	"testing"

	"github.com/cdtdelta/tablekit/internal/config"
	"github.com/cdtdelta/tablekit/internal/group"
	"github.com/cdtdelta/tablekit/internal/model"
	"github.com/cdtdelta/tablekit/internal/query"
	"github.com/cdtdelta/tablekit/internal/views"
)

func testColumns() []model.Column {
	return []model.Column{
		{ID: "name", DisplayName: "Name", Kind: model.KindString, Sortable: true, Filterable: true},
		{ID: "age", DisplayName: "Age", Kind: model.KindNumber, Sortable: true, Filterable: true},
		{ID: "team", DisplayName: "Team", Kind: model.KindString, Sortable: true, Filterable: true},
		{ID: "notes", DisplayName: "Notes", Kind: model.KindString, Sortable: false, Filterable: false},
	}
}

func testRows() []model.Row {
	return []model.Row{
		{Key: "r1", Values: map[string]any{"name": "Alice", "age": 30.0, "team": "red", "notes": "lead"}},
		{Key: "r2", Values: map[string]any{"name": "Bob", "age": 25.0, "team": "blue"}},
		{Key: "r3", Values: map[string]any{"name": "Carol", "age": 41.0, "team": "red"}},
		{Key: "r4", Values: map[string]any{"name": "Dan", "team": "green"}},
		{Key: "r5", Values: map[string]any{"name": "Eve", "age": 35.0}},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, mutate func(*Options)) *Engine {
	t.Helper()
	opts := Options{
		Columns:                      testColumns(),
		PageSize:                     2,
		ClearSelectionOnFilterChange: true,
		Logger:                       quietLogger(),
	}
	if mutate != nil {
		mutate(&opts)
	}
	e, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func ageFilter(op query.Operator, v string) []query.FilterGroup {
	return []query.FilterGroup{{
		Logic:   query.AND,
		Filters: []query.Filter{{ID: "f1", ColumnID: "age", Operator: op, Value: query.NumberValue(v)}},
	}}
}

// --- Construction ---

func TestNew_DefaultsToTableView(t *testing.T) {
	e := newTestEngine(t, nil)
	if e.ActiveView() != model.ViewTable {
		t.Errorf("expected table view, got %s", e.ActiveView())
	}
	if len(e.AvailableViews()) != len(model.AllViewTypes) {
		t.Errorf("expected all %d views available, got %d", len(model.AllViewTypes), len(e.AvailableViews()))
	}
}

func TestNew_NoViewsAvailable(t *testing.T) {
	_, err := New(Options{EnabledViews: []model.ViewType{}, Logger: quietLogger()})
	if !errors.Is(err, ErrNoViewsAvailable) {
		t.Errorf("expected ErrNoViewsAvailable, got %v", err)
	}

	_, err = New(Options{EnabledViews: []model.ViewType{"timeline"}, Logger: quietLogger()})
	if !errors.Is(err, ErrNoViewsAvailable) {
		t.Errorf("expected ErrNoViewsAvailable for unknown views, got %v", err)
	}
}

func TestNew_DefaultViewFallsBack(t *testing.T) {
	e := newTestEngine(t, func(o *Options) {
		o.EnabledViews = []model.ViewType{model.ViewCalendar, model.ViewBoard}
		o.DefaultView = model.ViewTable
	})
	// Registry order decides, not the enabled list order.
	if e.ActiveView() != model.ViewBoard {
		t.Errorf("expected fallback to board, got %s", e.ActiveView())
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.GetDefaults().Table
	cfg.DefaultView = "board"
	cfg.EnabledViews = []string{"list", "board"}
	cfg.PageSize = 10

	opts := OptionsFromConfig(cfg, testColumns())
	opts.Logger = quietLogger()
	e, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	if e.ActiveView() != model.ViewBoard {
		t.Errorf("expected board view, got %s", e.ActiveView())
	}
	s := e.State()
	if s.PageSize != 10 || !s.Paginated {
		t.Errorf("expected paginated with page size 10, got %d/%v", s.PageSize, s.Paginated)
	}
	if len(e.AvailableViews()) != 2 {
		t.Errorf("expected 2 available views, got %d", len(e.AvailableViews()))
	}
}

func TestSetActiveView(t *testing.T) {
	e := newTestEngine(t, func(o *Options) {
		o.EnabledViews = []model.ViewType{model.ViewTable, model.ViewList}
	})
	if err := e.SetActiveView(model.ViewList); err != nil {
		t.Fatal(err)
	}
	if err := e.SetActiveView(model.ViewGallery); !errors.Is(err, ErrViewNotAvailable) {
		t.Errorf("expected ErrViewNotAvailable, got %v", err)
	}
	if e.ActiveView() != model.ViewList {
		t.Errorf("expected list view to remain active, got %s", e.ActiveView())
	}
}

// --- Derivation ---

func TestDeriveRows_Pipeline(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.Paginated = false })
	if err := e.SetFilterGroups(ageFilter(query.OpGreaterThan, "26")); err != nil {
		t.Fatal(err)
	}
	if err := e.SetSort(query.SortSpec{{ColumnID: "age", Descending: true}}); err != nil {
		t.Fatal(err)
	}
	got := model.Keys(e.DeriveRows(testRows()))
	want := []string{"r3", "r5", "r1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDeriveRows_SearchSkipsUnfilterableColumns(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.Paginated = false })
	e.SetGlobalFilter("RED")
	if got := model.Keys(e.DeriveRows(testRows())); !reflect.DeepEqual(got, []string{"r1", "r3"}) {
		t.Errorf("expected r1 and r3, got %v", got)
	}
	e.SetGlobalFilter("lead")
	if got := e.DeriveRows(testRows()); len(got) != 0 {
		t.Errorf("expected notes column to be skipped by search, got %v", model.Keys(got))
	}
}

func TestDeriveRows_Idempotent(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.Paginated = false })
	groups := []query.FilterGroup{{
		Logic: query.OR,
		Filters: []query.Filter{
			{ID: "a", ColumnID: "team", Operator: query.OpEquals, Value: query.TextValue("red")},
			{ID: "b", ColumnID: "age", Operator: query.OpLessThan, Value: query.NumberValue("30")},
		},
	}}
	if err := e.SetFilterGroups(groups); err != nil {
		t.Fatal(err)
	}
	once := e.DeriveRows(testRows())
	twice := e.DeriveRows(once)
	if !reflect.DeepEqual(model.Keys(once), model.Keys(twice)) {
		t.Errorf("expected idempotent filtering, got %v then %v", model.Keys(once), model.Keys(twice))
	}
}

func TestDeriveRows_AdvancedEmptyGroups(t *testing.T) {
	rows := []model.Row{
		{Key: "a1", Values: map[string]any{"a": 1.0}},
		{Key: "a2", Values: map[string]any{"a": 2.0}},
	}
	e := newTestEngine(t, func(o *Options) {
		o.Columns = []model.Column{{ID: "a", Kind: model.KindNumber, Sortable: true, Filterable: true}}
		o.Paginated = false
	})

	or := query.NewGroup(query.OR)
	if err := e.SetAdvancedFilter(&or); err != nil {
		t.Fatal(err)
	}
	if got := e.DeriveRows(rows); len(got) != 0 {
		t.Errorf("expected empty OR group to match nothing, got %v", model.Keys(got))
	}

	and := query.NewGroup(query.AND)
	if err := e.SetAdvancedFilter(&and); err != nil {
		t.Fatal(err)
	}
	if got := model.Keys(e.DeriveRows(rows)); !reflect.DeepEqual(got, []string{"a1", "a2"}) {
		t.Errorf("expected empty AND group to match all, got %v", got)
	}
}

func TestDeriveRows_AdvancedAndSimpleCombine(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.Paginated = false })
	if err := e.SetFilterGroups(ageFilter(query.OpGreaterThanOrEqual, "30")); err != nil {
		t.Fatal(err)
	}
	tree := query.NewGroup(query.AND, query.NewRule("team", query.OpEquals, query.TextValue("red")))
	if err := e.SetAdvancedFilter(&tree); err != nil {
		t.Fatal(err)
	}
	if got := model.Keys(e.DeriveRows(testRows())); !reflect.DeepEqual(got, []string{"r1", "r3"}) {
		t.Errorf("expected r1 and r3, got %v", got)
	}

	if err := e.SetAdvancedFilter(nil); err != nil {
		t.Fatal(err)
	}
	if got := model.Keys(e.DeriveRows(testRows())); !reflect.DeepEqual(got, []string{"r1", "r3", "r5"}) {
		t.Errorf("expected r1, r3 and r5 after removing the tree, got %v", got)
	}
}

func TestSetAdvancedFilter_TooDeep(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.MaxFilterDepth = 2 })
	tree := query.NewGroup(query.AND,
		query.NewGroup(query.OR,
			query.NewGroup(query.AND, query.NewRule("age", query.OpIsEmpty, query.NoValue()))))
	if err := e.SetAdvancedFilter(&tree); !errors.Is(err, query.ErrTreeTooDeep) {
		t.Errorf("expected ErrTreeTooDeep, got %v", err)
	}
	if e.State().AdvancedFilter != nil {
		t.Error("expected rejected tree to leave state unchanged")
	}
}

func TestSetFilterGroups_InvalidOperator(t *testing.T) {
	e := newTestEngine(t, nil)
	groups := []query.FilterGroup{{
		Logic:   query.AND,
		Filters: []query.Filter{{ID: "x", ColumnID: "age", Operator: query.OpContains, Value: query.TextValue("3")}},
	}}
	err := e.SetFilterGroups(groups)
	var opErr *query.InvalidOperatorError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected InvalidOperatorError, got %v", err)
	}
	if opErr.Column != "age" {
		t.Errorf("expected column age, got %q", opErr.Column)
	}
	if len(e.State().FilterGroups) != 0 {
		t.Error("expected rejected filters to leave state unchanged")
	}
}

func TestSetSort_Validation(t *testing.T) {
	e := newTestEngine(t, nil)
	if err := e.SetSort(query.SortSpec{{ColumnID: "notes"}}); !errors.Is(err, ErrColumnNotSortable) {
		t.Errorf("expected ErrColumnNotSortable, got %v", err)
	}
	if err := e.SetSort(query.SortSpec{{ColumnID: "missing"}}); err != nil {
		t.Errorf("expected unknown column to be accepted, got %v", err)
	}
}

// --- Pagination ---

func TestPagination(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.Paginated = true })
	rows := testRows()

	if got := e.PageCount(rows); got != 3 {
		t.Errorf("expected 3 pages, got %d", got)
	}
	e.SetPageIndex(2)
	if got := model.Keys(e.DeriveRows(rows)); !reflect.DeepEqual(got, []string{"r5"}) {
		t.Errorf("expected last page [r5], got %v", got)
	}
	e.SetPageIndex(7)
	if got := e.DeriveRows(rows); len(got) != 0 {
		t.Errorf("expected empty page past the end, got %v", model.Keys(got))
	}
	e.SetPageIndex(-3)
	if e.State().PageIndex != 0 {
		t.Errorf("expected negative index clamped to 0, got %d", e.State().PageIndex)
	}
	if err := e.SetPageSize(0); !errors.Is(err, ErrInvalidPageSize) {
		t.Errorf("expected ErrInvalidPageSize, got %v", err)
	}
}

func TestPaginationHugeIndexAndSize(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.Paginated = true })
	rows := testRows()

	for _, idx := range []int{math.MaxInt / 25, math.MaxInt / 2, math.MaxInt} {
		e.SetPageIndex(idx)
		if got := e.DeriveRows(rows); len(got) != 0 {
			t.Errorf("index %d: expected empty page, got %v", idx, model.Keys(got))
		}
	}

	if err := e.SetPageSize(math.MaxInt); err != nil {
		t.Fatal(err)
	}
	if got := e.PageCount(rows); got != 1 {
		t.Errorf("expected 1 page with a huge page size, got %d", got)
	}
	if got := e.DeriveRows(rows); len(got) != 5 {
		t.Errorf("expected all 5 rows on the first page, got %d", len(got))
	}
	e.SetPageIndex(1)
	if got := e.DeriveRows(rows); len(got) != 0 {
		t.Errorf("expected empty second page, got %v", model.Keys(got))
	}
}

func TestDeriveMatchesSeparateCalls(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.Paginated = true })
	rows := testRows()
	_ = e.SetSort(query.SortSpec{{ColumnID: "age", Descending: true}})
	_ = e.SetGroupConfig(&group.Config{ColumnID: "team"})
	e.SetPageIndex(1)

	res := e.Derive(rows)
	if !reflect.DeepEqual(model.Keys(res.Filtered), model.Keys(e.FilteredRows(rows))) {
		t.Errorf("expected filtered rows %v, got %v", model.Keys(e.FilteredRows(rows)), model.Keys(res.Filtered))
	}
	if !reflect.DeepEqual(model.Keys(res.Page), []string{"r1", "r2"}) {
		t.Errorf("expected page [r1 r2], got %v", model.Keys(res.Page))
	}
	if res.PageCount != 3 {
		t.Errorf("expected 3 pages, got %d", res.PageCount)
	}
	if len(res.Groups) != len(e.Groups(rows)) {
		t.Errorf("expected %d groups, got %d", len(e.Groups(rows)), len(res.Groups))
	}
}

func TestSetFilterGroupsRejectsUnknownLogic(t *testing.T) {
	e := newTestEngine(t, nil)
	groups := ageFilter(query.OpGreaterThan, "1")
	groups[0].Logic = "or"
	if err := e.SetFilterGroups(groups); !errors.Is(err, query.ErrInvalidLogic) {
		t.Errorf("expected ErrInvalidLogic, got %v", err)
	}
	if len(e.State().FilterGroups) != 0 {
		t.Errorf("expected state unchanged, got %+v", e.State().FilterGroups)
	}
}

func TestPageResetRules(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.Paginated = true })

	reset := map[string]func(){
		"search": func() { e.SetGlobalFilter("a") },
		"sort":   func() { _ = e.SetSort(query.SortSpec{{ColumnID: "name"}}) },
		"filter": func() { _ = e.SetFilterGroups(ageFilter(query.OpGreaterThan, "1")) },
	}
	for name, change := range reset {
		e.SetPageIndex(2)
		change()
		if e.State().PageIndex != 0 {
			t.Errorf("%s: expected page reset to 0, got %d", name, e.State().PageIndex)
		}
	}

	keep := map[string]func(){
		"group": func() { _ = e.SetGroupConfig(&group.Config{ColumnID: "team"}) },
		"view":  func() { _ = e.SetActiveView(model.ViewBoard) },
		"cols":  func() { e.SetColumnVisibility(map[string]bool{"notes": false}) },
	}
	for name, change := range keep {
		e.SetPageIndex(2)
		change()
		if e.State().PageIndex != 2 {
			t.Errorf("%s: expected page 2 kept, got %d", name, e.State().PageIndex)
		}
	}
}

// --- Grouping ---

func TestGroups(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.UncategorizedLabel = "No team" })
	if e.Groups(testRows()) != nil {
		t.Error("expected nil groups without grouping")
	}
	if err := e.SetGroupConfig(&group.Config{ColumnID: "team", SortOrder: group.SortCountDesc}); err != nil {
		t.Fatal(err)
	}

	groups := e.Groups(testRows())
	var values []string
	for _, g := range groups {
		values = append(values, g.Value)
	}
	want := []string{"red", "No team", "blue", "green"}
	if !reflect.DeepEqual(values, want) {
		t.Errorf("expected %v, got %v", want, values)
	}

	if !e.ToggleGroupHidden("red") || !e.ToggleGroupCollapsed("blue") {
		t.Fatal("expected toggles to apply with grouping set")
	}
	groups = e.Groups(testRows())
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups after hiding red, got %d", len(groups))
	}
	for _, g := range groups {
		if g.Collapsed != (g.Value == "blue") {
			t.Errorf("group %q: unexpected collapsed=%v", g.Value, g.Collapsed)
		}
	}

	if got := e.GroupValues(testRows()); !reflect.DeepEqual(got, []string{"No team", "blue", "green", "red"}) {
		t.Errorf("unexpected group values %v", got)
	}
}

func TestGroups_UseFilteredRows(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.Paginated = true })
	_ = e.SetGroupConfig(&group.Config{ColumnID: "team"})
	e.SetGlobalFilter("red")
	groups := e.Groups(testRows())
	if len(groups) != 1 || groups[0].Count != 2 {
		t.Errorf("expected one red group of 2 ignoring pagination, got %+v", groups)
	}
}

func TestSetGroupConfig_Validation(t *testing.T) {
	e := newTestEngine(t, nil)
	if err := e.SetGroupConfig(&group.Config{ColumnID: "nope"}); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
	if err := e.SetGroupConfig(&group.Config{ColumnID: "team", SortOrder: "random"}); !errors.Is(err, ErrInvalidGroupConfig) {
		t.Errorf("expected ErrInvalidGroupConfig, got %v", err)
	}
	if e.ToggleGroupHidden("red") {
		t.Error("expected toggle without grouping to report false")
	}
}

// --- Columns and selection ---

func TestVisibleColumns(t *testing.T) {
	e := newTestEngine(t, nil)
	e.SetColumnVisibility(map[string]bool{"notes": false, "age": true})
	var ids []string
	for _, c := range e.VisibleColumns() {
		ids = append(ids, c.ID)
	}
	if !reflect.DeepEqual(ids, []string{"name", "age", "team"}) {
		t.Errorf("unexpected visible columns %v", ids)
	}
}

func TestSelectionClearedOnFilterChange(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Selection().SelectAll([]string{"r1", "r2"})
	e.SetGlobalFilter("a")
	if e.Selection().Count() != 0 {
		t.Errorf("expected selection cleared, got %d", e.Selection().Count())
	}

	e.Selection().Toggle("r1")
	_ = e.SetSort(query.SortSpec{{ColumnID: "name"}})
	if e.Selection().Count() != 1 {
		t.Error("expected sorting to keep the selection")
	}
}

func TestSelectionKeptWhenPolicyOff(t *testing.T) {
	e := newTestEngine(t, func(o *Options) { o.ClearSelectionOnFilterChange = false })
	e.Selection().SelectAll([]string{"r1", "r2"})
	_ = e.SetFilterGroups(ageFilter(query.OpGreaterThan, "99"))
	if e.Selection().Count() != 2 {
		t.Errorf("expected selection kept, got %d", e.Selection().Count())
	}
}

func TestState_IsCopy(t *testing.T) {
	e := newTestEngine(t, nil)
	_ = e.SetFilterGroups(ageFilter(query.OpGreaterThan, "20"))
	e.SetColumnVisibility(map[string]bool{"notes": false})

	s := e.State()
	s.FilterGroups[0].Filters[0].Value.Text = "99"
	s.ColumnVisibility["name"] = false

	again := e.State()
	if again.FilterGroups[0].Filters[0].Value.Text != "20" {
		t.Error("expected state filters to be unaffected by caller edits")
	}
	if _, ok := again.ColumnVisibility["name"]; ok {
		t.Error("expected state visibility to be unaffected by caller edits")
	}
}

// --- Saved views ---

func TestSnapshotRoundTrip(t *testing.T) {
	e := newTestEngine(t, nil)
	_ = e.SetFilterGroups(ageFilter(query.OpGreaterThan, "20"))
	_ = e.SetSort(query.SortSpec{{ColumnID: "age", Descending: true}})
	_ = e.SetActiveView(model.ViewList)
	snap := e.Snapshot()

	other := newTestEngine(t, nil)
	if err := other.ApplySnapshot(snap); err != nil {
		t.Fatal(err)
	}
	if !other.Snapshot().Equal(snap) {
		t.Errorf("expected applied snapshot to round trip, got %+v", other.Snapshot())
	}
}

func TestApplySnapshot_Fallbacks(t *testing.T) {
	e := newTestEngine(t, func(o *Options) {
		o.EnabledViews = []model.ViewType{model.ViewTable}
	})
	tree := query.NewGroup(query.AND)
	_ = e.SetAdvancedFilter(&tree)

	err := e.ApplySnapshot(views.Snapshot{
		Sorting:  query.SortSpec{{ColumnID: "notes"}, {ColumnID: "age"}},
		ViewType: model.ViewCalendar,
	})
	if err != nil {
		t.Fatal(err)
	}
	s := e.State()
	if s.ActiveView != model.ViewTable {
		t.Errorf("expected fallback to table, got %s", s.ActiveView)
	}
	if !reflect.DeepEqual(s.Sorting, query.SortSpec{{ColumnID: "age"}}) {
		t.Errorf("expected unsortable key dropped, got %v", s.Sorting)
	}
	if s.AdvancedFilter != nil {
		t.Error("expected advanced filter cleared by snapshot")
	}
}

func TestApplySavedView(t *testing.T) {
	ctx := context.Background()
	store := views.NewStore(ctx, nil, views.WithLogger(quietLogger()))
	e := newTestEngine(t, nil)

	_ = e.SetFilterGroups(ageFilter(query.OpLessThan, "40"))
	saved, err := store.Create(ctx, "Under 40", e.Snapshot(), views.CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}

	fresh := newTestEngine(t, nil)
	ok, err := fresh.ApplySavedView(store, saved.ID)
	if err != nil || !ok {
		t.Fatalf("expected view applied, got %v, %v", ok, err)
	}
	if fresh.ActiveSavedViewID() != saved.ID {
		t.Errorf("expected active saved view %s, got %q", saved.ID, fresh.ActiveSavedViewID())
	}
	if fresh.HasUnsavedChanges(store) {
		t.Error("expected no unsaved changes right after applying")
	}

	_ = fresh.SetSort(query.SortSpec{{ColumnID: "name"}})
	if !fresh.HasUnsavedChanges(store) {
		t.Error("expected unsaved changes after sorting")
	}

	ok, err = fresh.ApplySavedView(store, "deleted")
	if ok || err != nil {
		t.Errorf("expected unknown view to be a no-op, got %v, %v", ok, err)
	}
	if fresh.ActiveSavedViewID() != saved.ID {
		t.Error("expected no-op apply to keep the active view")
	}
}

func TestResolveSavedView(t *testing.T) {
	ctx := context.Background()
	store := views.NewStore(ctx, nil, views.WithLogger(quietLogger()))
	e := newTestEngine(t, nil)

	if e.HasUnsavedChanges(store) {
		t.Error("expected pristine state to have no unsaved changes")
	}
	_ = e.SetSort(query.SortSpec{{ColumnID: "age"}})
	if !e.HasUnsavedChanges(store) {
		t.Error("expected sorted state without a saved view to be unsaved")
	}

	saved, _ := store.Create(ctx, "By age", e.Snapshot(), views.CreateOptions{})
	if e.HasUnsavedChanges(store) {
		t.Error("expected state matching a saved view to have no unsaved changes")
	}
	if e.ActiveSavedViewID() != "" {
		t.Errorf("expected HasUnsavedChanges to leave the active view alone, got %q", e.ActiveSavedViewID())
	}
	if v := e.ResolveSavedView(store); v == nil || v.ID != saved.ID {
		t.Fatalf("expected matching view adopted, got %+v", v)
	}
	if e.ActiveSavedViewID() != saved.ID {
		t.Errorf("expected adopted id %s, got %q", saved.ID, e.ActiveSavedViewID())
	}

	store.Delete(ctx, saved.ID)
	if v := e.ResolveSavedView(store); v != nil {
		t.Errorf("expected no view after delete, got %+v", v)
	}
	if e.ActiveSavedViewID() != "" {
		t.Errorf("expected active id cleared, got %q", e.ActiveSavedViewID())
	}
}
