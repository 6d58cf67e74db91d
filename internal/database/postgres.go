package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// pgSanitizeString strips null bytes (0x00) from a string. SQLite stores these
// fine but PostgreSQL rejects them with "invalid byte sequence for encoding UTF8".
func pgSanitizeString(s string) string {
	if strings.ContainsRune(s, '\x00') {
		return strings.ReplaceAll(s, "\x00", "")
	}
	return s
}

// PostgresStore persists saved views in a PostgreSQL database.
// It implements the Store interface.
type PostgresStore struct {
	viewTable
	connStr string
}

// OpenPostgres connects to an existing PostgreSQL database and creates the
// saved_views table if it does not exist.
func OpenPostgres(connStr string) (*PostgresStore, error) {
	d := &PostgresDialect{}

	conn, err := sql.Open(d.DriverName(), d.DSN(connStr))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	db := &PostgresStore{
		viewTable: viewTable{conn: conn, dialect: d, sanitize: pgSanitizeString},
		connStr:   connStr,
	}

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
func (db *PostgresStore) Migrate() error {
	return db.migrate()
}

// Close closes the database connection.
func (db *PostgresStore) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the connection string used to connect to the database.
func (db *PostgresStore) Path() string {
	return db.connStr
}

// Conn returns the underlying *sql.DB connection.
func (db *PostgresStore) Conn() *sql.DB {
	return db.conn
}
