package application

import "errors"

var (
	// ErrDayClosed is returned when the requested weekday has no schedule or is closed.
	ErrDayClosed = errors.New("application: day closed")
	// ErrFullyBooked is returned when an open day has no free slot left.
	ErrFullyBooked = errors.New("application: fully booked")
	// ErrInvalidName is returned when the customer name is not a full name.
	ErrInvalidName = errors.New("application: invalid name")
	// ErrInvalidPhone is returned when the phone number is not at least ten digits.
	ErrInvalidPhone = errors.New("application: invalid phone")
	// ErrInvalidSlot is returned when the submitted date or slot cannot be parsed.
	ErrInvalidSlot = errors.New("application: invalid slot")
	// ErrSlotTaken is returned when the slot was booked before this submission.
	ErrSlotTaken = errors.New("application: slot taken")
	// ErrInvalidSchedule is returned when an admin schedule update is malformed.
	ErrInvalidSchedule = errors.New("application: invalid schedule")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrUnauthorized is returned when admin credentials are missing or wrong.
	ErrUnauthorized = errors.New("application: unauthorized")
)

// ValidationError captures field level problems. Kind is the sentinel the
// error unwraps to, so callers can match it with errors.Is.
type ValidationError struct {
	Kind        error
	FieldErrors map[string]string
}

func newValidationError(kind error, field, message string) *ValidationError {
	v := &ValidationError{Kind: kind}
	v.add(field, message)
	return v
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if v.Kind != nil {
		return v.Kind.Error()
	}
	return "validation failed"
}

// Unwrap exposes the sentinel kind.
func (v *ValidationError) Unwrap() error {
	if v == nil {
		return nil
	}
	return v.Kind
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
