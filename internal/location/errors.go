package location

import "errors"

// Domain errors for the location package.
var (
	// ErrLocationNotFound is returned when a location ID does not exist.
	ErrLocationNotFound = errors.New("location: not found")

	// ErrClientNotFound is returned when a client ID does not exist.
	ErrClientNotFound = errors.New("location: client not found")

	// ErrInvalid is returned when validation fails.
	ErrInvalid = errors.New("location: invalid")
)
