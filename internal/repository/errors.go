// Package repository holds the CRUD operations for users, exams, questions and choices.
//
// Every function takes the *gorm.DB session of the current request. Absence is reported as a
// nil record or a false result, never as an error; errors are reserved for invalid input,
// duplicate keys and persistence failures.
package repository

import (
	"errors"
	"strings"
)

// ErrDuplicateUser is returned when a username or email is already taken
var ErrDuplicateUser = errors.New("username or email already exists")

// ValidationError reports a required field that is missing or malformed
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Reason: "must not be empty"}
	}
	return nil
}
