package model

import "errors"

// ValidationError reports input rejected before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	// ErrNotFound is returned when an item or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrIO marks failures of the storage backend.
	ErrIO = errors.New("storage failure")
)
