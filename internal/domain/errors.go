package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced booking, item or customer does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateIdentifier is returned when an item name or a national id is already taken.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")

	// ErrInvalidIdentifier is returned when a national id fails the checksum.
	ErrInvalidIdentifier = errors.New("invalid national identifier")

	// ErrInUse is returned when an item or customer is still referenced by bookings.
	ErrInUse = errors.New("referenced by existing bookings")

	// ErrInvalidTransition is returned for status changes the booking state machine forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError describes malformed input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a *ValidationError.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InsufficientAvailabilityError names the item whose requested quantity
// exceeds what is still free over the requested range.
type InsufficientAvailabilityError struct {
	ItemID    int64
	ItemName  string
	Requested int64
	Available int64
}

func (e *InsufficientAvailabilityError) Error() string {
	return fmt.Sprintf("insufficient availability for item %q (id %d): requested %d, available %d",
		e.ItemName, e.ItemID, e.Requested, e.Available)
}

// IsInsufficientAvailability reports whether err carries an *InsufficientAvailabilityError.
func IsInsufficientAvailability(err error) bool {
	var ie *InsufficientAvailabilityError
	return errors.As(err, &ie)
}
