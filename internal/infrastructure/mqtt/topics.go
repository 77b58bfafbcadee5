package mqtt

import "fmt"

// Topic prefixes for the Fleet Core MQTT scheme.
//
// Command topics address a physical device by serial; response topics are
// per-request channels the device publishes its confirmation to:
//
//	fleet/schedule/command/{serial}      — schedule commands to a device
//	fleet/schedule/response/{requestID}  — device confirmations, keyed by request
//	fleet/status/{serial}                — device online/offline status (retained)
//	fleet/telemetry/{serial}             — device telemetry readings
//	fleet/system/status                  — core online/offline status (retained)
const (
	// TopicPrefix is the base for all Fleet Core topics.
	TopicPrefix = "fleet"

	// TopicPrefixSchedule is the base for schedule sync topics.
	TopicPrefixSchedule = "fleet/schedule"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "fleet/system"
)

// Topics provides builders for Fleet Core MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// ScheduleCommand returns the command topic for a device's schedule channel.
//
// Example: fleet/schedule/command/SN-0042
func (Topics) ScheduleCommand(serial string) string {
	return fmt.Sprintf("%s/command/%s", TopicPrefixSchedule, serial)
}

// ScheduleResponse returns the per-request response topic a device publishes
// its schedule confirmation to.
//
// Example: fleet/schedule/response/req-7f3a21
func (Topics) ScheduleResponse(requestID string) string {
	return fmt.Sprintf("%s/response/%s", TopicPrefixSchedule, requestID)
}

// AllScheduleResponses returns a pattern matching all schedule response topics.
//
// Pattern: fleet/schedule/response/+
func (Topics) AllScheduleResponses() string {
	return fmt.Sprintf("%s/response/+", TopicPrefixSchedule)
}

// DeviceStatus returns the status topic for a device.
//
// Example: fleet/status/SN-0042
func (Topics) DeviceStatus(serial string) string {
	return fmt.Sprintf("%s/status/%s", TopicPrefix, serial)
}

// AllDeviceStatus returns a pattern matching all device status topics.
//
// Pattern: fleet/status/+
func (Topics) AllDeviceStatus() string {
	return fmt.Sprintf("%s/status/+", TopicPrefix)
}

// DeviceTelemetry returns the telemetry topic for a device.
//
// Example: fleet/telemetry/SN-0042
func (Topics) DeviceTelemetry(serial string) string {
	return fmt.Sprintf("%s/telemetry/%s", TopicPrefix, serial)
}

// AllDeviceTelemetry returns a pattern matching every device telemetry
// topic.
//
// Pattern: fleet/telemetry/+
func (Topics) AllDeviceTelemetry() string {
	return fmt.Sprintf("%s/telemetry/+", TopicPrefix)
}

// SystemStatus returns the core status topic.
//
// Example: fleet/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}
