package alert

import "errors"

var (
	// ErrNotFound is returned when an alert does not exist.
	ErrNotFound = errors.New("alert not found")

	// ErrInvalid is returned when alert data fails validation.
	ErrInvalid = errors.New("invalid alert")
)
