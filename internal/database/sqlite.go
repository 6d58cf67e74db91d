package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists saved views in a SQLite database file.
// It implements the Store interface.
type SQLiteStore struct {
	viewTable
	path string
}

// OpenSQLite opens (creating if needed) a SQLite saved-view database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	d := &SQLiteDialect{}

	conn, err := sql.Open(d.DriverName(), d.DSN(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify the connection works
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	db := &SQLiteStore{viewTable: viewTable{conn: conn, dialect: d}, path: path}

	if err := db.createSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// Migrate applies any pending schema migrations.
func (db *SQLiteStore) Migrate() error {
	return db.migrate()
}

// Close closes the database connection.
func (db *SQLiteStore) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the file path of the database.
func (db *SQLiteStore) Path() string {
	return db.path
}

// Conn returns the underlying *sql.DB connection.
func (db *SQLiteStore) Conn() *sql.DB {
	return db.conn
}
