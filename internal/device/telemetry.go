package device

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cobaltfleet/fleet-core/internal/infrastructure/logging"
	"github.com/cobaltfleet/fleet-core/internal/infrastructure/mqtt"
)

// MetricWriter records numeric device telemetry samples for trend
// analysis.
type MetricWriter interface {
	WriteDeviceMetric(serial, measurement string, value float64)
}

// TelemetryRelay fans device telemetry publications into the metrics
// store. Devices publish flat JSON objects of readings on
// fleet/telemetry/{serial}; each numeric field becomes one sample,
// non-numeric fields are ignored.
type TelemetryRelay struct {
	repo   Repository
	sub    StatusSubscriber
	topics mqtt.Topics
	logger *logging.Logger
	writer MetricWriter
}

// NewTelemetryRelay creates a relay writing samples through writer.
func NewTelemetryRelay(repo Repository, sub StatusSubscriber, logger *logging.Logger, writer MetricWriter) *TelemetryRelay {
	return &TelemetryRelay{
		repo:   repo,
		sub:    sub,
		logger: logger,
		writer: writer,
	}
}

// Start subscribes to the device telemetry wildcard.
func (t *TelemetryRelay) Start() error {
	return t.sub.Subscribe(t.topics.AllDeviceTelemetry(), 0, t.handleTelemetry)
}

// Stop removes the telemetry subscription.
func (t *TelemetryRelay) Stop() {
	if err := t.sub.Unsubscribe(t.topics.AllDeviceTelemetry()); err != nil {
		t.logger.Warn("unsubscribing device telemetry", "error", err)
	}
}

// handleTelemetry processes one telemetry publication. Readings for
// serials not in the registry are dropped; a device must be enrolled
// before its telemetry is recorded.
func (t *TelemetryRelay) handleTelemetry(topic string, payload []byte) error {
	serial := topic[strings.LastIndex(topic, "/")+1:]
	if serial == "" || serial == "+" {
		return nil
	}

	var readings map[string]any
	if err := json.Unmarshal(payload, &readings); err != nil {
		t.logger.Warn("malformed device telemetry message", "topic", topic, "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
	defer cancel()

	if _, err := t.repo.GetBySerial(ctx, serial); err != nil {
		t.logger.Debug("telemetry for unenrolled device dropped", "serial", serial)
		return nil
	}

	for field, raw := range readings {
		value, ok := raw.(float64)
		if !ok {
			continue
		}
		t.writer.WriteDeviceMetric(serial, field, value)
	}
	return nil
}
