package alert

import "time"

// Severity ranks how urgently an alert needs attention.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Valid returns true for a known severity level.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

// Alert records a fleet event raised against a device, such as a
// failed schedule sync or a device going offline.
type Alert struct {
	ID           string     `json:"id"`
	DeviceID     string     `json:"device_id"`
	Severity     Severity   `json:"severity"`
	Code         string     `json:"code"`
	Message      string     `json:"message"`
	Acknowledged bool       `json:"acknowledged"`
	AckedBy      *string    `json:"acked_by,omitempty"`
	AckedAt      *time.Time `json:"acked_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Well-known alert codes raised by the schedule engine.
const (
	CodeSyncTimeout    = "schedule_sync_timeout"
	CodeSyncFailed     = "schedule_sync_failed"
	CodeDeviceOffline  = "device_offline"
	CodeMalformedReply = "schedule_malformed_reply"
)
