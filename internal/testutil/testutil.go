package testutil

import (
	"context"
	"database/sql"
	"testing"

	"cityMover/internal/db"
)

// OpenInMemoryDB opens an in-memory SQLite database, applies migrations and seeds it.
// The database is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	// We use a shared cache memory database so that pooled connections see the same DB.
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// CityID returns the id of a seeded city by name.
func CityID(t *testing.T, d *sql.DB, name string) int64 {
	t.Helper()
	var id int64
	if err := d.QueryRowContext(context.Background(), `SELECT id FROM cities WHERE name = ?`, name).Scan(&id); err != nil {
		t.Fatalf("city %q: %v", name, err)
	}
	return id
}

// UserID returns the id of a user by username.
func UserID(t *testing.T, d *sql.DB, username string) int64 {
	t.Helper()
	var id int64
	if err := d.QueryRowContext(context.Background(), `SELECT id FROM users WHERE username = ?`, username).Scan(&id); err != nil {
		t.Fatalf("user %q: %v", username, err)
	}
	return id
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
