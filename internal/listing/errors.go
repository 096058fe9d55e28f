package listing

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("property not found")
	ErrCityNotFound = errors.New("city not found")
	ErrForbidden    = errors.New("property belongs to another owner")
	ErrAreaInactive = errors.New("area is not active")
)

// ValidationError is a rejected user input. MessageID and Data select the
// localized message shown to the user.
type ValidationError struct {
	Field     string
	MessageID string
	Data      map[string]any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.MessageID)
}

func invalid(field, messageID string) *ValidationError {
	return &ValidationError{Field: field, MessageID: messageID}
}
