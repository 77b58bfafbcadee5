package device

import (
	"testing"

	"github.com/cobaltfleet/fleet-core/internal/infrastructure/logging"
)

type metricSample struct {
	serial      string
	measurement string
	value       float64
}

type captureMetricWriter struct {
	samples []metricSample
}

func (c *captureMetricWriter) WriteDeviceMetric(serial, measurement string, value float64) {
	c.samples = append(c.samples, metricSample{serial, measurement, value})
}

func newTelemetryRelay(repo Repository, writer MetricWriter) *TelemetryRelay {
	return NewTelemetryRelay(repo, nil, logging.Default(), writer)
}

func TestTelemetryFansNumericFields(t *testing.T) {
	repo := &fakeStatusRepo{devices: map[string]*Device{
		"SN-0042": {ID: "dev-42", Serial: "SN-0042"},
	}}
	writer := &captureMetricWriter{}
	relay := newTelemetryRelay(repo, writer)

	payload := `{"supply_voltage":23.8,"uptime_s":86400,"firmware":"2.1.0"}`
	if err := relay.handleTelemetry("fleet/telemetry/SN-0042", []byte(payload)); err != nil {
		t.Fatalf("handleTelemetry() error = %v", err)
	}

	if len(writer.samples) != 2 {
		t.Fatalf("samples = %d, want 2 (non-numeric fields skipped)", len(writer.samples))
	}
	got := map[string]float64{}
	for _, s := range writer.samples {
		if s.serial != "SN-0042" {
			t.Errorf("sample serial = %q, want SN-0042", s.serial)
		}
		got[s.measurement] = s.value
	}
	if got["supply_voltage"] != 23.8 {
		t.Errorf("supply_voltage = %v, want 23.8", got["supply_voltage"])
	}
	if got["uptime_s"] != 86400 {
		t.Errorf("uptime_s = %v, want 86400", got["uptime_s"])
	}
}

func TestTelemetryDropsUnenrolledDevice(t *testing.T) {
	repo := &fakeStatusRepo{devices: map[string]*Device{}}
	writer := &captureMetricWriter{}
	relay := newTelemetryRelay(repo, writer)

	if err := relay.handleTelemetry("fleet/telemetry/SN-GHOST", []byte(`{"supply_voltage":23.8}`)); err != nil {
		t.Fatalf("handleTelemetry() error = %v", err)
	}
	if len(writer.samples) != 0 {
		t.Errorf("recorded %d samples for an unenrolled device", len(writer.samples))
	}
}

func TestTelemetryDropsMalformedPayload(t *testing.T) {
	repo := &fakeStatusRepo{devices: map[string]*Device{
		"SN-0042": {ID: "dev-42", Serial: "SN-0042"},
	}}
	writer := &captureMetricWriter{}
	relay := newTelemetryRelay(repo, writer)

	if err := relay.handleTelemetry("fleet/telemetry/SN-0042", []byte(`not json`)); err != nil {
		t.Fatalf("handleTelemetry() error = %v", err)
	}
	if len(writer.samples) != 0 {
		t.Errorf("recorded %d samples from a malformed payload", len(writer.samples))
	}
}
