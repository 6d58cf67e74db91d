package database

// Dialect abstracts the database-specific SQL used by the saved-view
// backends. Each database (SQLite, PostgreSQL) implements this interface.
type Dialect interface {
	// DriverName returns the database/sql driver name (e.g. "sqlite", "pgx").
	DriverName() string

	// DSN returns the data source name for opening a connection.
	// For SQLite this is the file path; for PostgreSQL it is a connection string.
	DSN(pathOrConnStr string) string

	// Placeholder returns the parameter placeholder for the given 1-based index.
	// SQLite: "?" (ignoring index), PostgreSQL: "$1", "$2", etc.
	Placeholder(index int) string

	// SchemaCheckColumnSQL returns a SQL query that counts how many times a column
	// appears in a table's schema. Used for migration checks.
	SchemaCheckColumnSQL(table, column string) string

	// CreateSavedViewsTableSQL returns the DDL for the saved_views table.
	CreateSavedViewsTableSQL() string

	// AddPositionColumnSQL returns the DDL that adds the ordering column to a
	// saved_views table created before views kept their order.
	AddPositionColumnSQL() string

	// CreateIndexSQL returns DDL to create an index on a table column.
	CreateIndexSQL(indexName, tableName, column string) string

	// InsertSavedViewSQL returns the parameterized INSERT for one saved view.
	// Parameter order: id, name, description, is_default, created_at,
	// updated_at, position, payload.
	InsertSavedViewSQL() string
}

// selectSavedViewsSQL lists saved views in their stored order. It is the
// same for every dialect.
const selectSavedViewsSQL = `SELECT id, name, description, is_default, created_at, updated_at, payload
	FROM saved_views ORDER BY position, created_at`
