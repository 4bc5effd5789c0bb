package gate

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimension is returned for negative, non-finite or inconsistent dimensions
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrInvalidQuantity is returned for non-positive quantities or an unsupported number of sides
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidMarkup is returned for negative, non-finite or out-of-range markup percentages
	ErrInvalidMarkup = errors.New("invalid markup")

	// ErrInvalidPrice is returned for a negative unit price override
	ErrInvalidPrice = errors.New("invalid unit price")

	// ErrInvalidVATRate is returned when the configured VAT rate is unusable
	ErrInvalidVATRate = errors.New("invalid vat rate")

	// ErrProductIndex is returned when a product index does not exist in the selection
	ErrProductIndex = errors.New("product index out of range")

	// ErrCatalogLookupFailed is returned when a referenced product is not in the catalog
	ErrCatalogLookupFailed = errors.New("catalog lookup failed")

	// ErrIncompleteConfiguration is returned when a configuration is finalized too early
	ErrIncompleteConfiguration = errors.New("incomplete configuration")

	// ErrEmptyProductSelection is returned when a configuration without products is validated for saving
	ErrEmptyProductSelection = errors.New("empty product selection")

	// ErrMalformedRecord is returned when a stored gate record cannot be decoded
	ErrMalformedRecord = errors.New("malformed gate record")
)

// FieldError ties a validation failure to the input field that caused it.
type FieldError struct {
	Field  string
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s %s", e.Err, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldError(err error, field, reason string) error {
	return &FieldError{Field: field, Reason: reason, Err: err}
}
