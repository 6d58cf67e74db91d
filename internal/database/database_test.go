package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/cdtdelta/tablekit/internal/model"
	"github.com/cdtdelta/tablekit/internal/query"
	"github.com/cdtdelta/tablekit/internal/views"
)

func tempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func createTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := OpenSQLite(tempDBPath(t))
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleViews() []views.SavedView {
	created := time.Date(2025, 1, 15, 10, 30, 0, 123456000, time.UTC)
	return []views.SavedView{
		{
			ID:          "b-second-id",
			Name:        "Open adults",
			Description: "age over 25",
			IsDefault:   true,
			CreatedAt:   created,
			UpdatedAt:   created.Add(time.Hour),
			Snapshot: views.Snapshot{
				Filters: []query.FilterGroup{{
					Logic: query.AND,
					Filters: []query.Filter{
						{ID: "f1", ColumnID: "age", Operator: query.OpGreaterThan, Value: query.NumberValue("25")},
					},
				}},
				Sorting:          query.SortSpec{{ColumnID: "name"}},
				ColumnVisibility: map[string]bool{"notes": false},
				ViewType:         model.ViewTable,
			},
		},
		{
			ID:        "a-first-id",
			Name:      "Board",
			CreatedAt: created,
			UpdatedAt: created,
			Snapshot:  views.Snapshot{ViewType: model.ViewBoard},
		},
	}
}

func TestOpenCreatesFile(t *testing.T) {
	path := tempDBPath(t)

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	db.Close()

	// Verify the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("database file was not created")
	}

	// Reopen it
	db2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db2.Close()

	if db2.Path() != path {
		t.Errorf("expected path %s, got %s", path, db2.Path())
	}
}

func TestLoadEmpty(t *testing.T) {
	db := createTestDB(t)

	got, err := db.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no views, got %d", len(got))
	}
}

func TestSaveAndLoadKeepsOrder(t *testing.T) {
	db := createTestDB(t)
	ctx := context.Background()

	want := sampleViews()
	if err := db.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 views, got %d", len(got))
	}
	if got[0].ID != "b-second-id" || got[1].ID != "a-first-id" {
		t.Errorf("expected insertion order, got %s, %s", got[0].ID, got[1].ID)
	}
	if !got[0].IsDefault || got[1].IsDefault {
		t.Error("expected default flag to round-trip")
	}
	if !got[0].CreatedAt.Equal(want[0].CreatedAt) || !got[0].UpdatedAt.Equal(want[0].UpdatedAt) {
		t.Errorf("expected timestamps to round-trip, got %v / %v", got[0].CreatedAt, got[0].UpdatedAt)
	}
	if !got[0].Snapshot.Equal(want[0].Snapshot) {
		t.Errorf("expected snapshot to round-trip, got %+v", got[0].Snapshot)
	}
}

func TestSaveReplacesCollection(t *testing.T) {
	db := createTestDB(t)
	ctx := context.Background()

	db.Save(ctx, sampleViews())
	if err := db.Save(ctx, sampleViews()[1:]); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, _ := db.Load(ctx)
	if len(got) != 1 || got[0].ID != "a-first-id" {
		t.Errorf("expected only the remaining view, got %+v", got)
	}
}

func TestRoundTrip(t *testing.T) {
	db := createTestDB(t)
	ctx := context.Background()
	db.Save(ctx, sampleViews())

	first, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := db.Save(ctx, first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("round trip changed the collection:\n%+v\n%+v", first, second)
	}
}

func TestStoreOverSQLite(t *testing.T) {
	path := tempDBPath(t)
	ctx := context.Background()

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	s := views.NewStore(ctx, db)
	v, err := s.Create(ctx, "persisted", views.Snapshot{ViewType: model.ViewList}, views.CreateOptions{SetAsDefault: true})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if s.PersistErr() != nil {
		t.Fatalf("unexpected persist error: %v", s.PersistErr())
	}
	db.Close()

	db2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db2.Close()

	reloaded := views.NewStore(ctx, db2)
	if d := reloaded.Default(); d == nil || d.ID != v.ID {
		t.Errorf("expected %s to be default after reload, got %+v", v.ID, d)
	}
}

func TestMigrateAddsPositionColumn(t *testing.T) {
	path := tempDBPath(t)

	// Build a table as it looked before views kept their order.
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	_, err = conn.Exec(`CREATE TABLE saved_views (
		id TEXT PRIMARY KEY, name TEXT NOT NULL, description TEXT NOT NULL DEFAULT '',
		is_default INT NOT NULL DEFAULT 0, created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL, payload TEXT NOT NULL)`)
	if err != nil {
		t.Fatalf("create legacy table failed: %v", err)
	}
	conn.Close()

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	var count int
	db.Conn().QueryRow(db.dialect.SchemaCheckColumnSQL("saved_views", "position")).Scan(&count)
	if count != 1 {
		t.Errorf("expected position column after migration, got count %d", count)
	}
	if err := db.Save(context.Background(), sampleViews()); err != nil {
		t.Errorf("Save after migration failed: %v", err)
	}
}

func TestOpenStoreUnsupportedDriver(t *testing.T) {
	_, err := OpenStore("oracle", "x")
	if err == nil || !strings.Contains(err.Error(), "unsupported driver") {
		t.Errorf("expected unsupported driver error, got %v", err)
	}
}

func TestOpenStoreSQLite(t *testing.T) {
	s, err := OpenStore("sqlite", tempDBPath(t))
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer s.Close()
	if err := s.Migrate(); err != nil {
		t.Errorf("Migrate failed: %v", err)
	}
}

func TestPostgresDialect(t *testing.T) {
	d := &PostgresDialect{}
	if d.Placeholder(3) != "$3" {
		t.Errorf("expected $3, got %s", d.Placeholder(3))
	}
	if !strings.Contains(d.InsertSavedViewSQL(), "$8") {
		t.Error("expected eight placeholders in insert")
	}
	if !strings.Contains(d.CreateSavedViewsTableSQL(), "JSONB") {
		t.Error("expected JSONB payload column")
	}
	if pgSanitizeString("a\x00b") != "ab" {
		t.Error("expected null bytes to be stripped")
	}
}
