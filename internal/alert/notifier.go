package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cobaltfleet/fleet-core/internal/infrastructure/logging"
)

// raiseTimeout bounds the database write for an alert raised from a
// background goroutine (sync deadline callbacks have no request
// context).
const raiseTimeout = 5 * time.Second

// Broadcaster pushes a raised alert to connected dashboard clients.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// broadcastChannel is the WebSocket channel alerts are published on.
const broadcastChannel = "alert.raised"

// Notifier persists alerts and relays them to the dashboard. It is the
// glue between the schedule engine's failure callbacks and the alert
// store; Broadcast is optional.
type Notifier struct {
	repo      Repository
	logger    *logging.Logger
	broadcast Broadcaster
}

// NewNotifier creates a notifier. broadcast may be nil.
func NewNotifier(repo Repository, logger *logging.Logger, broadcast Broadcaster) *Notifier {
	return &Notifier{repo: repo, logger: logger, broadcast: broadcast}
}

// Raise persists a new alert and broadcasts it.
func (n *Notifier) Raise(ctx context.Context, deviceID string, severity Severity, code, message string) {
	a := &Alert{
		ID:        "alr-" + uuid.NewString()[:8],
		DeviceID:  deviceID,
		Severity:  severity,
		Code:      code,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	if err := n.repo.Create(ctx, a); err != nil {
		n.logger.Error("failed to persist alert",
			"device_id", deviceID, "code", code, "error", err)
		return
	}

	n.logger.Warn("alert raised",
		"alert_id", a.ID, "device_id", deviceID, "severity", severity, "code", code)

	if n.broadcast != nil {
		n.broadcast.Broadcast(broadcastChannel, a)
	}
}

// ScheduleSyncTimedOut raises a warning alert for a schedule push that
// received no confirmation before its deadline.
func (n *Notifier) ScheduleSyncTimedOut(deviceID, serial string) {
	ctx, cancel := context.WithTimeout(context.Background(), raiseTimeout)
	defer cancel()

	n.Raise(ctx, deviceID, SeverityWarning, CodeSyncTimeout,
		fmt.Sprintf("device %s did not confirm its schedule within the sync deadline", serial))
}
