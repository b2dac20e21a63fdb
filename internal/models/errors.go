package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by storage lookups for absent keys.
var ErrNotFound = errors.New("not found")

// DuplicateNameError is returned when a saved program name is already taken
// (case-insensitive).
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("a program named %q already exists", e.Name)
}

// ProtectedError is returned when deleting the default or the active program.
type ProtectedError struct {
	ID     string
	Reason string
}

func (e *ProtectedError) Error() string {
	return fmt.Sprintf("program %q is protected: %s", e.ID, e.Reason)
}

// NotFoundError is returned when an id does not resolve.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError is returned for malformed user input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PersistError reports a failed write after the in-memory state has already
// changed. Durability is best-effort: the change is not rolled back.
type PersistError struct {
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Key, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
