package response

import "net/http"

// Error is a failure that maps onto an error envelope. Err keeps the
// underlying cause for logs only.
type Error struct {
	Status  int
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// WithCause attaches the underlying cause and returns e.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// New builds an Error with an explicit status code.
func New(status int, message string, details ...string) *Error {
	return &Error{Status: status, Message: message, Details: details}
}

// BadRequest reports missing or invalid client input.
func BadRequest(message string, details ...string) *Error {
	return New(http.StatusBadRequest, message, details...)
}

// Unauthorized reports a missing or invalid identity, or an ownership mismatch.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// NotFound reports an absent entity.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

// TooManyRequests reports a rate limit rejection.
func TooManyRequests(message string) *Error {
	return New(http.StatusTooManyRequests, message)
}

// Internal reports an unexpected failure caused by err.
func Internal(message string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message, Err: err}
}
