package models

import "time"

// Role distinguishes seekers from owners. It maps to the CHECK constraint on users.role.
type Role string

const (
	RoleSeeker Role = "user"
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the roles the schema accepts.
func (r Role) Valid() bool {
	switch r {
	case RoleSeeker, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// User represents an account in the system.
// It maps to the `users` table in SQLite. Password is never selected back out.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at,omitempty"`
}
