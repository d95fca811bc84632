package record

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidField is returned for field names outside the updatable set.
	ErrInvalidField = errors.New("invalid field")

	// ErrValueType is returned when an edit value does not match its field kind.
	ErrValueType = errors.New("value type mismatch")

	// ErrCustomerRequired is returned by Draft.Validate for an empty customer.
	ErrCustomerRequired = errors.New("customer is required")

	// ErrUnknownPaymentMethod is returned by Draft.Validate for a method
	// outside the configured choices.
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// PaymentMethodError reports a creation-path payment method that is not one
// of the allowed choices. It matches ErrUnknownPaymentMethod via errors.Is.
type PaymentMethodError struct {
	Method  string
	Allowed []string
}

func (e *PaymentMethodError) Error() string {
	return fmt.Sprintf("%s %q: must be one of %s",
		ErrUnknownPaymentMethod, e.Method, strings.Join(e.Allowed, ", "))
}

func (e *PaymentMethodError) Unwrap() error {
	return ErrUnknownPaymentMethod
}

func invalidField(name string) error {
	return fmt.Errorf("%w %q", ErrInvalidField, name)
}
