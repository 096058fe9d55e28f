package repository

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// ErrDuplicateUsername is returned by UserRepository.Create when the username is taken.
var ErrDuplicateUsername = errors.New("username already exists")

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint && se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
