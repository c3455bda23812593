package service

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned when an operation requiring a session is
// called without one.
var ErrUnauthenticated = errors.New("authentication required")

// NotFoundError reports a missing Issue or User.
type NotFoundError struct {
	Resource string // "issue" or "user"
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ReferentialError reports a field referencing a record that does not
// exist (e.g. assignedToUserId with no matching User).
type ReferentialError struct {
	Field   string
	Message string
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
