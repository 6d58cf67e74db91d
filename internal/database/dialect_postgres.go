package database

import "fmt"

// PostgresDialect implements the Dialect interface for PostgreSQL databases.
type PostgresDialect struct{}

func (d *PostgresDialect) DriverName() string              { return "pgx" }
func (d *PostgresDialect) DSN(pathOrConnStr string) string { return pathOrConnStr }
func (d *PostgresDialect) Placeholder(index int) string    { return fmt.Sprintf("$%d", index) }

func (d *PostgresDialect) SchemaCheckColumnSQL(table, column string) string {
	return fmt.Sprintf(
		"SELECT COUNT(*) FROM information_schema.columns WHERE table_name='%s' AND column_name='%s'",
		table, column)
}

func (d *PostgresDialect) CreateSavedViewsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS saved_views (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		is_default BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		position INT NOT NULL DEFAULT 0,
		payload JSONB NOT NULL
	)`
}

func (d *PostgresDialect) AddPositionColumnSQL() string {
	return "ALTER TABLE saved_views ADD COLUMN IF NOT EXISTS position INT NOT NULL DEFAULT 0"
}

func (d *PostgresDialect) CreateIndexSQL(indexName, tableName, column string) string {
	return fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s ON %s (%s)", indexName, tableName, column)
}

func (d *PostgresDialect) InsertSavedViewSQL() string {
	return `INSERT INTO saved_views
		(id, name, description, is_default, created_at, updated_at, position, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
}
