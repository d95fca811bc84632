package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/entregas/internal/record"
	"github.com/roach88/entregas/internal/store"
)

// EditError reports a failed edit of one record field.
//
// The underlying cause is one of:
//   - record.ErrInvalidField: field outside the updatable set
//   - record.ErrValueType: value does not match the field kind
//   - store.ErrNotFound: no record with the id
//   - a storage failure (database unavailable or locked)
type EditError struct {
	// ID identifies the record the edit targeted.
	ID int64

	// Field is the field being written.
	Field record.Field

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *EditError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("edit record %d: %v", e.ID, e.Err)
	}
	return fmt.Sprintf("edit record %d field %s: %v", e.ID, e.Field, e.Err)
}

// Unwrap returns the underlying cause.
func (e *EditError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if err was caused by a missing record.
// Uses errors.Is to handle wrapped errors.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

// IsCallerError returns true if err was caused by misuse rather than storage:
// an invalid field, a mismatched value type, or a draft rejected by the
// creation-path rules.
func IsCallerError(err error) bool {
	return errors.Is(err, record.ErrInvalidField) ||
		errors.Is(err, record.ErrValueType) ||
		errors.Is(err, record.ErrCustomerRequired) ||
		errors.Is(err, record.ErrUnknownPaymentMethod)
}
