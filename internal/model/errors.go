package model

import "errors"

var (
	// ErrNotFound is returned when a requested resource does not exist or is
	// not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrTicketBooked is returned when the ticket is already held by an
	// active booking.
	ErrTicketBooked = errors.New("ticket is already booked")

	// ErrAlreadyExists is returned when a login or email is taken.
	ErrAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials is returned for a wrong login/password pair.
	ErrInvalidCredentials = errors.New("invalid login or password")

	// ErrInvalidCode is returned for a wrong, used or expired verification code.
	ErrInvalidCode = errors.New("invalid or expired verification code")

	// ErrUnauthenticated is returned when no valid bearer token was presented.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the caller lacks the required role.
	ErrForbidden = errors.New("insufficient permissions")

	// ErrMailUnavailable is returned when an email could not be delivered.
	ErrMailUnavailable = errors.New("could not send email")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid builds a ValidationError.
func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
