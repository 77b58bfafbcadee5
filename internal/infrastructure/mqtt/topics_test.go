package mqtt

import "testing"

func TestTopics(t *testing.T) {
	var topics Topics

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"schedule command", topics.ScheduleCommand("SN-0042"), "fleet/schedule/command/SN-0042"},
		{"schedule response", topics.ScheduleResponse("req-7f3a21"), "fleet/schedule/response/req-7f3a21"},
		{"all schedule responses", topics.AllScheduleResponses(), "fleet/schedule/response/+"},
		{"device status", topics.DeviceStatus("SN-0042"), "fleet/status/SN-0042"},
		{"all device status", topics.AllDeviceStatus(), "fleet/status/+"},
		{"device telemetry", topics.DeviceTelemetry("SN-0042"), "fleet/telemetry/SN-0042"},
		{"all device telemetry", topics.AllDeviceTelemetry(), "fleet/telemetry/+"},
		{"system status", topics.SystemStatus(), "fleet/system/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
