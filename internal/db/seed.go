package db

import (
	"context"
	"database/sql"
	"fmt"
)

// DefaultCities is the fixed seed list, inserted in this order.
var DefaultCities = []string{
	"دمشق", "حلب", "حمص", "حماة", "اللاذقية", "طرطوس",
	"دير الزور", "الرقة", "الحسكة", "ريف دمشق",
	"درعا", "القنيطرة", "سويدا", "إدلب",
}

// DemoAccount is a seeded login. Passwords are stored as plain text.
type DemoAccount struct {
	Username string
	Password string
	Role     string
}

// DemoAccounts are created when the users table is empty.
var DemoAccounts = []DemoAccount{
	{Username: "user1", Password: "123456", Role: "user"},
	{Username: "owner1", Password: "123456", Role: "owner"},
}

// Seed inserts the default cities and demo accounts into empty tables.
// Each table is guarded by a row count and seeded in its own transaction.
func Seed(ctx context.Context, d *sql.DB) error {
	if err := seedTable(ctx, d, "cities", func(tx *sql.Tx) error {
		for _, name := range DefaultCities {
			if _, err := tx.ExecContext(ctx, `INSERT INTO cities (name) VALUES (?)`, name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	return seedTable(ctx, d, "users", func(tx *sql.Tx) error {
		for _, a := range DemoAccounts {
			if _, err := tx.ExecContext(ctx, `INSERT INTO users (username, password, role) VALUES (?, ?, ?)`, a.Username, a.Password, a.Role); err != nil {
				return err
			}
		}
		return nil
	})
}

func seedTable(ctx context.Context, d *sql.DB, table string, fill func(*sql.Tx) error) error {
	var n int
	// table is one of the fixed names above, never user input.
	if err := d.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return fmt.Errorf("count %s: %w", table, err)
	}
	if n > 0 {
		return nil
	}
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fill(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("seed %s: %w", table, err)
	}
	return tx.Commit()
}
