package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, device.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when a device ID or serial does not exist.
	ErrNotFound = errors.New("device: not found")

	// ErrExists is returned when creating a device whose serial already exists.
	ErrExists = errors.New("device: already exists")

	// ErrInvalid is returned when device validation fails.
	ErrInvalid = errors.New("device: invalid")
)
