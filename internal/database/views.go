package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cdtdelta/tablekit/internal/views"
)

// viewTable implements saved-view Load/Save over any dialect. The SQLite and
// PostgreSQL stores embed it.
type viewTable struct {
	conn    *sql.DB
	dialect Dialect

	// sanitize cleans text before it is written; PostgreSQL needs null
	// bytes stripped.
	sanitize func(string) string
}

// createSchema builds the saved_views table if it does not exist.
func (t *viewTable) createSchema() error {
	if _, err := t.conn.Exec(t.dialect.CreateSavedViewsTableSQL()); err != nil {
		return fmt.Errorf("creating saved_views table: %w", err)
	}
	return nil
}

// migrate applies schema migrations for backward compatibility.
func (t *viewTable) migrate() error {
	// Add position column if missing
	var count int
	err := t.conn.QueryRow(
		t.dialect.SchemaCheckColumnSQL(savedViewsTable, "position"),
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking saved_views schema: %w", err)
	}
	if count == 0 {
		if _, err := t.conn.Exec(t.dialect.AddPositionColumnSQL()); err != nil {
			return fmt.Errorf("adding position column: %w", err)
		}
	}

	_, err = t.conn.Exec(t.dialect.CreateIndexSQL("saved_views_position_idx", savedViewsTable, "position"))
	if err != nil {
		return fmt.Errorf("creating index on position: %w", err)
	}
	return nil
}

// Load returns every saved view in stored order.
func (t *viewTable) Load(ctx context.Context) ([]views.SavedView, error) {
	rows, err := t.conn.QueryContext(ctx, selectSavedViewsSQL)
	if err != nil {
		return nil, fmt.Errorf("querying saved views: %w", err)
	}
	defer rows.Close()

	var out []views.SavedView
	for rows.Next() {
		var (
			v                views.SavedView
			created, updated string
			payload          []byte
		)
		if err := rows.Scan(&v.ID, &v.Name, &v.Description, &v.IsDefault, &created, &updated, &payload); err != nil {
			return nil, fmt.Errorf("scanning saved view: %w", err)
		}
		if v.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, fmt.Errorf("saved view %s: %w", v.ID, err)
		}
		if v.UpdatedAt, err = parseTimestamp(updated); err != nil {
			return nil, fmt.Errorf("saved view %s: %w", v.ID, err)
		}
		if err := json.Unmarshal(payload, &v.Snapshot); err != nil {
			return nil, fmt.Errorf("decoding saved view %s: %w", v.ID, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Save replaces the stored collection inside a single transaction.
func (t *viewTable) Save(ctx context.Context, list []views.SavedView) error {
	tx, err := t.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+savedViewsTable); err != nil {
		return fmt.Errorf("clearing saved views: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, t.dialect.InsertSavedViewSQL())
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, v := range list {
		payload, err := json.Marshal(v.Snapshot)
		if err != nil {
			return fmt.Errorf("encoding saved view %s: %w", v.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			t.clean(v.ID), t.clean(v.Name), t.clean(v.Description), v.IsDefault,
			formatTimestamp(v.CreatedAt), formatTimestamp(v.UpdatedAt),
			i, t.clean(string(payload)),
		)
		if err != nil {
			return fmt.Errorf("inserting saved view %s: %w", v.ID, err)
		}
	}

	return tx.Commit()
}

func (t *viewTable) clean(s string) string {
	if t.sanitize == nil {
		return s
	}
	return t.sanitize(s)
}

// Timestamps are stored as RFC 3339 text in UTC so both dialects round-trip
// them exactly.
func formatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return ts.UTC(), nil
}
