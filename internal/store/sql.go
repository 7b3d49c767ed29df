package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// dialect holds the statements that differ between SQL drivers.
type dialect struct {
	driver string
	schema string
	get    string
	set    string
}

var (
	sqliteDialect = dialect{
		driver: "sqlite",
		schema: `
			CREATE TABLE IF NOT EXISTS kv_store (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
			);
		`,
		get: `SELECT value FROM kv_store WHERE key = ?`,
		set: `
			INSERT INTO kv_store (key, value, updated_at)
			VALUES (?, ?, strftime('%s', 'now'))
			ON CONFLICT (key) DO UPDATE SET
				value = excluded.value,
				updated_at = excluded.updated_at
		`,
	}

	postgresDialect = dialect{
		driver: "postgres",
		schema: `
			CREATE TABLE IF NOT EXISTS kv_store (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`,
		get: `SELECT value FROM kv_store WHERE key = $1`,
		set: `
			INSERT INTO kv_store (key, value, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE SET
				value = EXCLUDED.value,
				updated_at = NOW()
		`,
	}
)

// SQLBackend stores entries in a kv_store table.
type SQLBackend struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQLite opens (or creates) a SQLite database at path.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps in-memory databases consistent
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	return newSQLBackend(db, sqliteDialect)
}

// OpenPostgres connects to the Postgres database described by dsn.
func OpenPostgres(ctx context.Context, dsn string) (*SQLBackend, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newSQLBackend(db, postgresDialect)
}

func newSQLBackend(db *sql.DB, d dialect) (*SQLBackend, error) {
	if _, err := db.Exec(d.schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLBackend{db: db, dialect: d}, nil
}

func (b *SQLBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := b.db.QueryRowContext(ctx, b.dialect.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", key, err)
	}
	return []byte(value), nil
}

func (b *SQLBackend) Set(ctx context.Context, key string, value []byte) error {
	if _, err := b.db.ExecContext(ctx, b.dialect.set, key, string(value)); err != nil {
		return fmt.Errorf("failed to upsert %s: %w", key, err)
	}
	return nil
}

// Close closes the database connection.
func (b *SQLBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
