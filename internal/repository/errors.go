package repository

import "fmt"

// MappingError reports a row that could not be converted into a domain model:
// a missing column or a value of an unexpected type. It is fatal to the
// operation that produced it; values are never silently coerced.
type MappingError struct {
	Entity string
	Column string
	Reason string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("repository: cannot map %s.%s: %s", e.Entity, e.Column, e.Reason)
}

func newMappingError(entity, column, format string, args ...any) *MappingError {
	return &MappingError{
		Entity: entity,
		Column: column,
		Reason: fmt.Sprintf(format, args...),
	}
}
