package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cityMover/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and returns its generated ID.
// A taken username yields ErrDuplicateUsername; other constraint failures
// (e.g. an unknown role) are returned as-is.
func (r *UserRepository) Create(ctx context.Context, username, password string, role models.Role) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO users (username, password, role) VALUES (?, ?, ?)`, username, password, string(role))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateUsername
		}
		return 0, err
	}
	return res.LastInsertId()
}

// Authenticate returns the user whose username and password both match exactly,
// or nil when there is no such row. Passwords are compared as stored (plain text).
func (r *UserRepository) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.scanOne(r.db.QueryRowContext(ctx, `SELECT id, username, role, created_at FROM users WHERE username = ? AND password = ?`, username, password))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.scanOne(r.db.QueryRowContext(ctx, `SELECT id, username, role, created_at FROM users WHERE id = ?`, id))
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	var role string
	var created sql.NullTime
	if err := row.Scan(&u.ID, &u.Username, &role, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Role = models.Role(role)
	if created.Valid {
		u.CreatedAt = created.Time
	}
	return &u, nil
}
