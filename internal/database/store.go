package database

import "github.com/cdtdelta/tablekit/internal/views"

// savedViewsTable is the table holding one row per saved view.
const savedViewsTable = "saved_views"

// Store is a SQL-backed saved-view persistence adapter. The application
// depends on this interface, not on a concrete database type.
type Store interface {
	views.Persistence

	// Migrate applies any pending schema migrations.
	Migrate() error

	// Close releases the connection.
	Close() error

	// Path returns the database file path or connection string.
	Path() string
}
