package database

import "fmt"

// SQLiteDialect implements the Dialect interface for SQLite databases.
type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string              { return "sqlite" }
func (d *SQLiteDialect) DSN(pathOrConnStr string) string { return pathOrConnStr }
func (d *SQLiteDialect) Placeholder(index int) string    { return "?" }

func (d *SQLiteDialect) SchemaCheckColumnSQL(table, column string) string {
	return fmt.Sprintf(
		"SELECT COUNT(*) FROM pragma_table_info('%s') WHERE name='%s'", table, column)
}

func (d *SQLiteDialect) CreateSavedViewsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS saved_views (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		is_default INT NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		position INT NOT NULL DEFAULT 0,
		payload TEXT NOT NULL
	)`
}

func (d *SQLiteDialect) AddPositionColumnSQL() string {
	return "ALTER TABLE saved_views ADD COLUMN position INT NOT NULL DEFAULT 0"
}

func (d *SQLiteDialect) CreateIndexSQL(indexName, tableName, column string) string {
	return fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s ON %s (%s)", indexName, tableName, column)
}

func (d *SQLiteDialect) InsertSavedViewSQL() string {
	return `INSERT INTO saved_views
		(id, name, description, is_default, created_at, updated_at, position, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
}
