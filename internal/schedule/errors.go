package schedule

import "errors"

// Validation sentinels. These block submission locally and are never
// sent to the device.
var (
	ErrMissingTime        = errors.New("start and stop times are required")
	ErrDegenerateInterval = errors.New("start time equals stop time")
	ErrNoSelector         = errors.New("at least one of days, dates, or day ranges is required")
	ErrInvalidTime        = errors.New("invalid time format")
	ErrInvalidKind        = errors.New("invalid rule kind")
	ErrInvalidDay         = errors.New("invalid weekday name")
	ErrInvalidDate        = errors.New("invalid date token")
	ErrInvalidDayRange    = errors.New("invalid day-of-month token")
)

// Session and sync sentinels.
var (
	ErrIndexOutOfRange   = errors.New("rule index out of range")
	ErrSyncInFlight      = errors.New("a sync is already in flight for this session")
	ErrNotTimedOut       = errors.New("retry is only available after a timeout")
	ErrSessionClosed     = errors.New("session is closed")
	ErrSessionExists     = errors.New("an editing session is already open for this device")
	ErrSessionNotFound   = errors.New("session not found")
	ErrNoSnapshot        = errors.New("device returned no schedule snapshot")
	ErrMalformedSnapshot = errors.New("device schedule snapshot is malformed")
	ErrUnknownFamily     = errors.New("unknown device family")
	ErrUnknownControl    = errors.New("no control channel mapped for device type")
)
