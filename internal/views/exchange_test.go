package views

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExportImportJSON(t *testing.T) {
	now := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	in := []SavedView{{
		ID: "v1", Name: "Adults", IsDefault: true,
		CreatedAt: now, UpdatedAt: now,
		Snapshot: sampleSnapshot(),
	}}

	data, err := ExportJSON(in)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	if !strings.Contains(string(data), `"columnVisibility"`) || !strings.Contains(string(data), `"viewType": "board"`) {
		t.Errorf("expected flattened snapshot fields, got %s", data)
	}

	out, err := ImportJSON(data)
	if err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}
	if len(out) != 1 || out[0].Name != "Adults" || !out[0].Snapshot.Equal(in[0].Snapshot) {
		t.Errorf("unexpected import: %+v", out)
	}
	if !out[0].CreatedAt.Equal(now) {
		t.Errorf("expected createdAt %v, got %v", now, out[0].CreatedAt)
	}
}

func TestImportJSONRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"not json":        `{`,
		"missing views":   `{"version": 1}`,
		"wrong version":   `{"version": 2, "views": []}`,
		"empty name":      `{"version": 1, "views": [{"name": ""}]}`,
		"bad view type":   `{"version": 1, "views": [{"name": "x", "viewType": "kanban"}]}`,
		"bad logic":       `{"version": 1, "views": [{"name": "x", "filters": [{"logic": "XOR", "filters": []}]}]}`,
		"filter no op":    `{"version": 1, "views": [{"name": "x", "filters": [{"logic": "AND", "filters": [{"columnId": "a"}]}]}]}`,
		"visibility type": `{"version": 1, "views": [{"name": "x", "columnVisibility": {"a": "yes"}}]}`,
	}
	for name, doc := range cases {
		if _, err := ImportJSON([]byte(doc)); !errors.Is(err, ErrInvalidImport) {
			t.Errorf("%s: expected ErrInvalidImport, got %v", name, err)
		}
	}
}

func TestExportEmpty(t *testing.T) {
	data, err := ExportJSON(nil)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	views, err := ImportJSON(data)
	if err != nil || len(views) != 0 {
		t.Errorf("expected empty import, got %v, %v", views, err)
	}
}
