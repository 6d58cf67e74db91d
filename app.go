package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/cdtdelta/tablekit/internal/config"
	"github.com/cdtdelta/tablekit/internal/group"
	"github.com/cdtdelta/tablekit/internal/loader"
	"github.com/cdtdelta/tablekit/internal/logger"
	"github.com/cdtdelta/tablekit/internal/model"
	"github.com/cdtdelta/tablekit/internal/persistence"
	"github.com/cdtdelta/tablekit/internal/query"
	"github.com/cdtdelta/tablekit/internal/table"
	"github.com/cdtdelta/tablekit/internal/views"
)

// stateChangedEvent is emitted with the new table.State after every
// mutation so the frontend can refetch rows.
const stateChangedEvent = "state:changed"

var errNoData = errors.New("no data file open")

// App is the main application struct that Wails binds to the frontend.
// All exported methods become callable from JavaScript. Wails calls them
// from several goroutines, so every method holds mu.
type App struct {
	ctx  context.Context
	emit func(name string, data ...any)

	mu          sync.Mutex
	cfg         *config.Config
	store       *views.Store
	storeCloser io.Closer
	path        string
	dataset     *loader.Dataset
	engine      *table.Engine
}

// NewApp creates a new App instance.
// Saved views stay in memory until startup opens the configured backend.
func NewApp() *App {
	return &App{
		cfg:   config.GetDefaults(),
		store: views.NewStore(context.Background(), nil),
	}
}

// startup is called when the app starts. The context is saved
// so we can call runtime methods (dialogs, events, etc.)
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.emit = func(name string, data ...any) {
		runtime.EventsEmit(ctx, name, data...)
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v, using defaults\n", err)
		cfg = config.GetDefaults()
	}
	logger.Init(logger.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})
	a.openViews(ctx, cfg)
}

// openViews opens the saved-view store. A backend that cannot be opened
// leaves the app with an in-memory store.
func (a *App) openViews(ctx context.Context, cfg *config.Config) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cfg = cfg
	p, closer, err := persistence.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Warn("Saved views unavailable, keeping them in memory", "driver", cfg.Storage.Driver, "error", err)
		a.store = views.NewStore(ctx, nil)
		return
	}
	a.store = views.NewStore(ctx, p)
	a.storeCloser = closer
}

// shutdown is called when the app is closing.
func (a *App) shutdown(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.storeCloser != nil {
		a.storeCloser.Close()
		a.storeCloser = nil
	}
}

// appContext returns the app context, or Background before startup.
func (a *App) appContext() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// changed settles which saved view the state belongs to and emits the new
// state. Callers hold mu.
func (a *App) changed() {
	if a.engine == nil {
		return
	}
	a.engine.ResolveSavedView(a.store)
	if a.emit != nil {
		a.emit(stateChangedEvent, a.engine.State())
	}
}

// -- File Operations --

// DataInfo summarizes the loaded data file.
type DataInfo struct {
	Path     string             `json:"path"`
	RowCount int                `json:"rowCount"`
	Excluded int                `json:"excluded"`
	Columns  []model.Column     `json:"columns"`
	Views    []table.ViewConfig `json:"views"`
	State    table.State        `json:"state"`
}

// OpenDataFile opens a file dialog and loads a CSV or JSONL file.
func (a *App) OpenDataFile() (*DataInfo, error) {
	path, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Open Data File",
		Filters: []runtime.FileFilter{
			{DisplayName: "Data Files (*.csv, *.tsv, *.jsonl, *.ndjson)", Pattern: "*.csv;*.tsv;*.jsonl;*.ndjson"},
			{DisplayName: "All Files (*.*)", Pattern: "*.*"},
		},
	})
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil // user cancelled
	}
	return a.LoadDataFile(path)
}

// LoadDataFile reads path and starts a fresh query session over it. The
// default saved view, if any, is applied.
func (a *App) LoadDataFile(path string) (*DataInfo, error) {
	ds, err := loader.Read(path, func(n int) {
		if a.emit != nil {
			a.emit("load:progress", map[string]any{"path": path, "count": n})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("loading data file: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	opts := table.OptionsFromConfig(a.cfg.Table, ds.Columns)
	opts.Logger = logger.Get()
	e, err := table.New(opts)
	if err != nil {
		return nil, err
	}
	if def := a.store.Default(); def != nil {
		if _, err := e.ApplySavedView(a.store, def.ID); err != nil {
			logger.Warn("Default view does not fit this file", "view", def.Name, "error", err)
		}
	}

	a.path = path
	a.dataset = ds
	a.engine = e
	logger.Info("Loaded data file", "path", path, "rows", len(ds.Rows), "excluded", ds.Excluded)
	a.changed()
	return a.info(), nil
}

func (a *App) info() *DataInfo {
	return &DataInfo{
		Path:     a.path,
		RowCount: len(a.dataset.Rows),
		Excluded: a.dataset.Excluded,
		Columns:  a.engine.Columns(),
		Views:    a.engine.AvailableViews(),
		State:    a.engine.State(),
	}
}

// CloseDataFile drops the loaded data and returns to the welcome screen.
func (a *App) CloseDataFile() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.path = ""
	a.dataset = nil
	a.engine = nil
}

// -- Query --

// QueryResponse is one page of derived rows plus what a renderer needs
// around it.
type QueryResponse struct {
	Rows           []model.Row        `json:"rows"`
	Groups         []group.GroupedRow `json:"groups,omitempty"`
	Columns        []model.Column     `json:"columns"`
	TotalCount     int                `json:"totalCount"`
	MatchCount     int                `json:"matchCount"`
	PageCount      int                `json:"pageCount"`
	SelectedCount  int                `json:"selectedCount"`
	AllSelected    bool               `json:"allSelected"`
	Indeterminate  bool               `json:"indeterminate"`
	UnsavedChanges bool               `json:"unsavedChanges"`
	State          table.State        `json:"state"`
}

// QueryRows derives the current page of rows and, when grouping is set,
// the groups over all matching rows.
func (a *App) QueryRows() (*QueryResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.engine == nil {
		return nil, errNoData
	}

	all := a.dataset.Rows
	res := a.engine.Derive(all)
	keys := model.Keys(res.Page)
	sel := a.engine.Selection()

	return &QueryResponse{
		Rows:           res.Page,
		Groups:         res.Groups,
		Columns:        a.engine.VisibleColumns(),
		TotalCount:     len(all),
		MatchCount:     len(res.Filtered),
		PageCount:      res.PageCount,
		SelectedCount:  sel.Count(),
		AllSelected:    sel.IsAllSelected(keys),
		Indeterminate:  sel.IsIndeterminate(keys),
		UnsavedChanges: a.engine.HasUnsavedChanges(a.store),
		State:          a.engine.State(),
	}, nil
}

// GetDistinctValues returns each value of a column with its row count over
// all loaded rows (for filter and group pickers).
func (a *App) GetDistinctValues(columnID string) (map[string]int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.engine == nil {
		return nil, errNoData
	}
	counts := make(map[string]int)
	for _, g := range group.Group(a.dataset.Rows, columnID, group.Config{ColumnID: columnID}, a.cfg.Table.UncategorizedLabel) {
		counts[g.Value] = g.Count
	}
	return counts, nil
}

// GetOperators lists the filter operators offered for a column kind.
func (a *App) GetOperators(kind model.DataKind) []query.OperatorDef {
	return query.OperatorsFor(kind)
}

// mutate runs fn against the engine and emits the new state when it
// succeeds.
func (a *App) mutate(fn func(e *table.Engine) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.engine == nil {
		return errNoData
	}
	if err := fn(a.engine); err != nil {
		return err
	}
	a.changed()
	return nil
}

func (a *App) SetSearch(text string) error {
	return a.mutate(func(e *table.Engine) error {
		e.SetGlobalFilter(text)
		return nil
	})
}

func (a *App) SetFilterGroups(groups []query.FilterGroup) error {
	return a.mutate(func(e *table.Engine) error { return e.SetFilterGroups(groups) })
}

func (a *App) SetAdvancedFilter(tree *query.Node) error {
	return a.mutate(func(e *table.Engine) error { return e.SetAdvancedFilter(tree) })
}

func (a *App) ClearFilters() error {
	return a.mutate(func(e *table.Engine) error {
		e.ClearFilters()
		return nil
	})
}

func (a *App) SetSort(spec query.SortSpec) error {
	return a.mutate(func(e *table.Engine) error { return e.SetSort(spec) })
}

// SetGrouping sets the group config; nil removes grouping.
func (a *App) SetGrouping(cfg *group.Config) error {
	return a.mutate(func(e *table.Engine) error { return e.SetGroupConfig(cfg) })
}

func (a *App) ToggleGroupHidden(value string) error {
	return a.mutate(func(e *table.Engine) error {
		e.ToggleGroupHidden(value)
		return nil
	})
}

func (a *App) ToggleGroupCollapsed(value string) error {
	return a.mutate(func(e *table.Engine) error {
		e.ToggleGroupCollapsed(value)
		return nil
	})
}

func (a *App) SetActiveView(view model.ViewType) error {
	return a.mutate(func(e *table.Engine) error { return e.SetActiveView(view) })
}

func (a *App) SetColumnVisibility(visibility map[string]bool) error {
	return a.mutate(func(e *table.Engine) error {
		e.SetColumnVisibility(visibility)
		return nil
	})
}

// SetPage moves to a zero-based page.
func (a *App) SetPage(index int) error {
	return a.mutate(func(e *table.Engine) error {
		e.SetPageIndex(index)
		return nil
	})
}

func (a *App) SetPageSize(size int) error {
	return a.mutate(func(e *table.Engine) error { return e.SetPageSize(size) })
}

// -- Selection --

func (a *App) ToggleRow(key string) error {
	return a.mutate(func(e *table.Engine) error {
		e.Selection().Toggle(key)
		return nil
	})
}

// ExtendSelection selects from the anchor row to key in the order of all
// matching rows, across pages.
func (a *App) ExtendSelection(key string) error {
	return a.mutate(func(e *table.Engine) error {
		e.Selection().ExtendRange(key, model.Keys(e.FilteredRows(a.dataset.Rows)))
		return nil
	})
}

// SelectAllRows selects every matching row.
func (a *App) SelectAllRows() error {
	return a.mutate(func(e *table.Engine) error {
		e.Selection().SelectAll(model.Keys(e.FilteredRows(a.dataset.Rows)))
		return nil
	})
}

func (a *App) SelectNone() error {
	return a.mutate(func(e *table.Engine) error {
		e.Selection().SelectNone()
		return nil
	})
}

// GetSelection returns the selected row keys, sorted.
func (a *App) GetSelection() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.engine == nil {
		return nil
	}
	return a.engine.Selection().Selected()
}

// -- Saved Views --

func (a *App) ListSavedViews() []views.SavedView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.List()
}

// SaveView stores the current state as a new view and makes it active.
func (a *App) SaveView(name, description string, setAsDefault bool) (*views.SavedView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.engine == nil {
		return nil, errNoData
	}
	v, err := a.store.Create(a.appContext(), name, a.engine.Snapshot(), views.CreateOptions{
		Description:  description,
		SetAsDefault: setAsDefault,
	})
	if err != nil {
		return nil, err
	}
	a.engine.SetActiveSavedViewID(v.ID)
	a.changed()
	return &v, a.store.PersistErr()
}

// ApplySavedView loads a saved view into the table. It reports false when
// the view no longer exists.
func (a *App) ApplySavedView(id string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.engine == nil {
		return false, errNoData
	}
	ok, err := a.engine.ApplySavedView(a.store, id)
	if ok {
		a.changed()
	}
	return ok, err
}

// UpdateSavedView overwrites a view with the current state.
func (a *App) UpdateSavedView(id string) (*views.SavedView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.engine == nil {
		return nil, errNoData
	}
	v := a.store.Update(a.appContext(), id, a.engine.Snapshot())
	if v == nil {
		return nil, fmt.Errorf("saved view %q not found", id)
	}
	a.engine.SetActiveSavedViewID(v.ID)
	a.changed()
	return v, a.store.PersistErr()
}

func (a *App) DuplicateSavedView(id, name string) (*views.SavedView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v := a.store.Duplicate(a.appContext(), id, name)
	if v == nil {
		return nil, fmt.Errorf("saved view %q not found", id)
	}
	return v, a.store.PersistErr()
}

func (a *App) RenameSavedView(id, name, description string) (*views.SavedView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, err := a.store.Rename(a.appContext(), id, name, description)
	if err != nil {
		return nil, err
	}
	return v, a.store.PersistErr()
}

// DeleteSavedView removes a view. Deleting the active view leaves the
// table state as is with no active view.
func (a *App) DeleteSavedView(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.store.Delete(a.appContext(), id) {
		return fmt.Errorf("saved view %q not found", id)
	}
	a.changed()
	return a.store.PersistErr()
}

// ReloadSavedViews retries reading saved views after the backend failed to
// load at startup. Until it succeeds, saved views are not written back.
func (a *App) ReloadSavedViews() ([]views.SavedView, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.store.Reload(a.appContext()); err != nil {
		return nil, err
	}
	a.changed()
	return a.store.List(), nil
}

// SetDefaultView makes id the default view; an empty id clears it.
func (a *App) SetDefaultView(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.store.SetDefault(a.appContext(), id) && id != "" {
		return fmt.Errorf("saved view %q not found", id)
	}
	return a.store.PersistErr()
}

// ExportSavedViews asks for a file and writes every saved view to it.
func (a *App) ExportSavedViews() (string, error) {
	path, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Export Saved Views",
		DefaultFilename: "saved-views.json",
		Filters: []runtime.FileFilter{
			{DisplayName: "JSON Files (*.json)", Pattern: "*.json"},
		},
	})
	if err != nil || path == "" {
		return "", err
	}

	a.mu.Lock()
	data, err := views.ExportJSON(a.store.List())
	a.mu.Unlock()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}

// ImportSavedViews asks for an exported file and adds its views.
func (a *App) ImportSavedViews() ([]views.SavedView, error) {
	path, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Import Saved Views",
		Filters: []runtime.FileFilter{
			{DisplayName: "JSON Files (*.json)", Pattern: "*.json"},
		},
	})
	if err != nil || path == "" {
		return nil, err
	}
	return a.importSavedViews(path)
}

func (a *App) importSavedViews(path string) ([]views.SavedView, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading import: %w", err)
	}
	imported, err := views.ImportJSON(data)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Import(a.appContext(), imported), a.store.PersistErr()
}

// -- Export --

// ExportCSV asks for a file and writes every matching row with the visible
// columns.
func (a *App) ExportCSV() (string, error) {
	a.mu.Lock()
	hasData := a.engine != nil
	base := strings.TrimSuffix(filepath.Base(a.path), filepath.Ext(a.path))
	a.mu.Unlock()
	if !hasData {
		return "", errNoData
	}

	savePath, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Export to CSV",
		DefaultFilename: base + "-export.csv",
		Filters: []runtime.FileFilter{
			{DisplayName: "CSV Files (*.csv)", Pattern: "*.csv"},
		},
	})
	if err != nil || savePath == "" {
		return "", err
	}
	return savePath, a.exportCSV(savePath)
}

func (a *App) exportCSV(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.engine == nil {
		return errNoData
	}
	rows := a.engine.FilteredRows(a.dataset.Rows)
	if err := loader.WriteCSV(path, a.engine.VisibleColumns(), rows); err != nil {
		return err
	}
	logger.Info("Exported rows", "path", path, "rows", len(rows))
	return nil
}

// GetVersion returns the application version string.
func (a *App) GetVersion() string {
	return Version
}
