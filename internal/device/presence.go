package device

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cobaltfleet/fleet-core/internal/infrastructure/logging"
	"github.com/cobaltfleet/fleet-core/internal/infrastructure/mqtt"
)

// updateTimeout bounds the repository write for a status message
// arriving on the MQTT handler goroutine.
const updateTimeout = 5 * time.Second

// StatusSubscriber is the slice of the MQTT client the tracker needs to
// receive device status publications.
type StatusSubscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// StatusBroadcaster pushes status changes to connected dashboard clients.
type StatusBroadcaster interface {
	Broadcast(channel string, payload any)
}

// statusChannel is the WebSocket channel status changes are published on.
const statusChannel = "device.status"

// statusMessage is the payload devices publish (retained, LWT for the
// offline case) on fleet/status/{serial}.
type statusMessage struct {
	Status          string `json:"status"`
	FirmwareVersion string `json:"firmware_version,omitempty"`
	Timestamp       string `json:"timestamp,omitempty"`
}

// statusEvent is the payload relayed to the dashboard.
type statusEvent struct {
	DeviceID string `json:"device_id"`
	Serial   string `json:"serial"`
	Status   Status `json:"status"`
}

// PresenceTracker maintains device connectivity state from the retained
// status topics. Devices publish online on connect and leave an offline
// LWT with the broker, so the tracker sees both ends of the lifecycle
// without polling.
type PresenceTracker struct {
	repo   Repository
	sub    StatusSubscriber
	topics mqtt.Topics
	logger *logging.Logger
	events StatusBroadcaster // optional
}

// NewPresenceTracker creates a tracker. events may be nil.
func NewPresenceTracker(repo Repository, sub StatusSubscriber, logger *logging.Logger, events StatusBroadcaster) *PresenceTracker {
	return &PresenceTracker{
		repo:   repo,
		sub:    sub,
		logger: logger,
		events: events,
	}
}

// Start subscribes to the device status wildcard.
func (t *PresenceTracker) Start() error {
	return t.sub.Subscribe(t.topics.AllDeviceStatus(), 1, t.handleStatus)
}

// Stop removes the status subscription.
func (t *PresenceTracker) Stop() {
	if err := t.sub.Unsubscribe(t.topics.AllDeviceStatus()); err != nil {
		t.logger.Warn("unsubscribing device status", "error", err)
	}
}

// handleStatus processes one status publication. Messages for serials
// not in the registry are logged and dropped; a device must be enrolled
// before its presence is tracked.
func (t *PresenceTracker) handleStatus(topic string, payload []byte) error {
	serial := topic[strings.LastIndex(topic, "/")+1:]
	if serial == "" || serial == "+" {
		return nil
	}

	var msg statusMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.logger.Warn("malformed device status message", "topic", topic, "error", err)
		return nil
	}

	status := StatusUnknown
	switch msg.Status {
	case "online":
		status = StatusOnline
	case "offline":
		status = StatusOffline
	default:
		t.logger.Warn("unknown device status value", "serial", serial, "status", msg.Status)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
	defer cancel()

	dev, err := t.repo.GetBySerial(ctx, serial)
	if err != nil {
		t.logger.Debug("status for unenrolled device dropped", "serial", serial)
		return nil
	}

	if err := t.repo.UpdateStatus(ctx, dev.ID, status, time.Now().UTC()); err != nil {
		t.logger.Error("failed to update device status",
			"device_id", dev.ID, "serial", serial, "error", err)
		return nil
	}

	t.logger.Info("device status changed", "serial", serial, "status", status)

	if t.events != nil {
		t.events.Broadcast(statusChannel, statusEvent{
			DeviceID: dev.ID,
			Serial:   serial,
			Status:   status,
		})
	}
	return nil
}
