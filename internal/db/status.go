package db

import (
	"context"
	"database/sql"
	"time"
)

const (
	StatusHealthy = "healthy"
	StatusError   = "error"
)

// Status is a diagnostic snapshot of the database.
type Status struct {
	DBFile        string   `json:"db_file"`
	Tables        []string `json:"tables,omitempty"`
	UserCount     int64    `json:"user_count"`
	PropertyCount int64    `json:"property_count"`
	Status        string   `json:"status"`
	Error         string   `json:"error,omitempty"`
}

// Healthy reports whether the snapshot was taken without errors.
func (s Status) Healthy() bool { return s.Status == StatusHealthy }

// CheckStatus lists the tables and counts users and properties.
// Failures are reported in the returned Status rather than as an error.
func CheckStatus(ctx context.Context, d *sql.DB, path string) Status {
	st := Status{DBFile: path}
	fail := func(err error) Status {
		st.Status = StatusError
		st.Error = err.Error()
		return st
	}
	if d == nil {
		st.Status = StatusError
		st.Error = "database is not open"
		return st
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := d.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' ORDER BY name`)
	if err != nil {
		return fail(err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return fail(err)
		}
		st.Tables = append(st.Tables, name)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fail(err)
	}
	rows.Close()

	if err := d.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&st.UserCount); err != nil {
		return fail(err)
	}
	if err := d.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`).Scan(&st.PropertyCount); err != nil {
		return fail(err)
	}
	st.Status = StatusHealthy
	return st
}
