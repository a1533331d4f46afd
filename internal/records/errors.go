package records

import "errors"

var (
	// ErrValidation is returned when a form is missing required fields. Nothing changes.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition is returned when a mutation targets a record in an ineligible state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrNotFound is returned when no record carries the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrUnscopedRole is returned for roles that have no record scope.
	ErrUnscopedRole = errors.New("role has no record scope")
)
