// Package database opens the SQL store used by the feature repositories.
//
// Queries are written once in Postgres style ($1, $2, ...). When the store
// is SQLite the placeholders are rewritten to SQLite's numbered form
// (?1, ?2, ...), which binds by the same positions.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"  // Postgres driver
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// Dialect identifies the SQL backend.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DB is a *sql.DB that rewrites placeholders for its dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects to the database named by url. postgres:// and
// postgresql:// URLs use lib/pq; sqlite://<path>, file:<path> and
// :memory: use modernc.org/sqlite.
func Open(url string) (*DB, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return NewPostgresConnection(url)
	case strings.HasPrefix(url, "sqlite://"):
		return NewSQLiteConnection(strings.TrimPrefix(url, "sqlite://"))
	case strings.HasPrefix(url, "file:"), url == ":memory:":
		return NewSQLiteConnection(url)
	default:
		return nil, fmt.Errorf("unsupported database url scheme: %q", url)
	}
}

// NewPostgresConnection opens and pings a Postgres database.
func NewPostgresConnection(url string) (*DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, Dialect: DialectPostgres}, nil
}

// NewSQLiteConnection opens a SQLite database, creating parent directories
// for file paths. SQLite allows one writer, so the pool holds a single
// connection.
func NewSQLiteConnection(path string) (*DB, error) {
	filePath := strings.TrimPrefix(path, "file:")
	if i := strings.IndexByte(filePath, '?'); i >= 0 {
		filePath = filePath[:i]
	}
	if filePath != ":memory:" && filePath != "" {
		if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{DB: db, Dialect: DialectSQLite}, nil
}

// Rebind rewrites $N placeholders for the dialect.
func (db *DB) Rebind(query string) string {
	return rebind(db.Dialect, query)
}

// ExecContext runs a statement with rebound placeholders.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.DB.ExecContext(ctx, db.Rebind(query), args...)
}

// QueryContext runs a query with rebound placeholders.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.DB.QueryContext(ctx, db.Rebind(query), args...)
}

// QueryRowContext runs a single-row query with rebound placeholders.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.DB.QueryRowContext(ctx, db.Rebind(query), args...)
}

// BeginTx starts a transaction that rebinds like its parent.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{Tx: tx, dialect: db.Dialect}, nil
}

// Tx is a *sql.Tx that rewrites placeholders for its dialect.
type Tx struct {
	*sql.Tx
	dialect Dialect
}

// ExecContext runs a statement inside the transaction.
func (tx *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return tx.Tx.ExecContext(ctx, rebind(tx.dialect, query), args...)
}

// QueryContext runs a query inside the transaction.
func (tx *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return tx.Tx.QueryContext(ctx, rebind(tx.dialect, query), args...)
}

// QueryRowContext runs a single-row query inside the transaction.
func (tx *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return tx.Tx.QueryRowContext(ctx, rebind(tx.dialect, query), args...)
}

func rebind(dialect Dialect, query string) string {
	if dialect != DialectSQLite || !strings.Contains(query, "$") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '$' && i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			b.WriteByte('?')
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
