package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// connParams are applied to every pooled connection through the DSN, so that
// foreign keys and the busy timeout hold no matter which connection runs a query.
const connParams = "_foreign_keys=on&_busy_timeout=5000"

// Open opens (or creates) the SQLite database at path, applies pending migrations
// and seeds the default cities and demo accounts when their tables are empty.
// It is safe to call on every process start.
//
// path may be a plain file path or a "file:" URI (e.g. "file:x?mode=memory&cache=shared").
// An empty path resolves to DefaultPath for the running platform.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	d, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, err
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, err
	}
	// journal_mode may not be supported in some contexts (e.g., in-memory). Ignore errors.
	_, _ = d.Exec(`PRAGMA journal_mode=WAL`)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := applyMigrations(ctx, d); err != nil {
		_ = d.Close()
		return nil, err
	}
	if err := Seed(ctx, d); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}
	return d, nil
}

// dsn turns a path into a sqlite3 URI carrying connParams.
func dsn(path string) string {
	if strings.HasPrefix(path, "file:") {
		if strings.Contains(path, "?") {
			return path + "&" + connParams
		}
		return path + "?" + connParams
	}
	return "file:" + path + "?" + connParams
}

// ensureDir creates the parent directory of an on-disk database.
func ensureDir(path string) error {
	if strings.HasPrefix(path, "file:") || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database directory %s: %w", dir, err)
	}
	return nil
}
