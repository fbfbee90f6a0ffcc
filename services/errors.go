package services

import "errors"

var (
	ErrValidation = errors.New("validation_failed")
	ErrNotFound   = errors.New("room_not_found")
	ErrConflict   = errors.New("room_state_conflict")
	ErrForbidden  = errors.New("invalid_booking_code")
)

// BookingError carries a caller-facing message for one of the sentinel errors above.
type BookingError struct {
	Err     error
	Message string
}

func (e *BookingError) Error() string {
	return e.Err.Error() + ": " + e.Message
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

func validationError(msg string) error {
	return &BookingError{Err: ErrValidation, Message: msg}
}

func notFoundError() error {
	return &BookingError{Err: ErrNotFound, Message: "Room not found"}
}

func conflictError(msg string) error {
	return &BookingError{Err: ErrConflict, Message: msg}
}

func forbiddenError() error {
	return &BookingError{Err: ErrForbidden, Message: "Invalid booking code"}
}

// Message returns the caller-facing text of err, falling back to err.Error().
func Message(err error) string {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}
