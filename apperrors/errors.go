package apperrors

import (
	"fmt"
	"strings"
)

// DuplicateNameError reports a case-insensitive name collision within a
// scope (levels globally, sections within a level, teachers globally).
type DuplicateNameError struct {
	Resource string
	Names    []string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate %s name: %s", e.Resource, strings.Join(e.Names, ", "))
}

// NewDuplicateName builds a DuplicateNameError for one or more names.
func NewDuplicateName(resource string, names ...string) *DuplicateNameError {
	return &DuplicateNameError{Resource: resource, Names: names}
}

// NotFoundError reports an unknown entity id.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func NewNotFound(resource string, id uint) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError reports the first malformed or missing field of a request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError reports a state conflict that is not a plain name
// collision, e.g. deleting a level still referenced by attendance history
// or submitting a second attendance record for an already-recorded day.
type ConflictError struct {
	Resource string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Reason)
}

func NewConflict(resource, reason string) *ConflictError {
	return &ConflictError{Resource: resource, Reason: reason}
}
