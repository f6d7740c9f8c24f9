// Package apperr holds the error taxonomy shared by the content and contact pipelines.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrSourceUnavailable = errors.New("content source unavailable")
	ErrMalformedEntry    = errors.New("malformed content entry")
	ErrTransport         = errors.New("notification transport failed")
)

// ValidationError is a user-facing validation failure with one message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
