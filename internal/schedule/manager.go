package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cobaltfleet/fleet-core/internal/device"
	"github.com/cobaltfleet/fleet-core/internal/infrastructure/logging"
	"github.com/cobaltfleet/fleet-core/internal/infrastructure/mqtt"
)

// Subscriber is the slice of the MQTT client the manager needs to
// receive push confirmations.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// EventSink receives sync state transitions for dashboard broadcast.
type EventSink interface {
	BroadcastSyncEvent(ev SyncEvent)
}

// TelemetryRecorder records sync outcomes for trend analysis.
type TelemetryRecorder interface {
	WriteSyncResult(serial, result string, duration time.Duration)
}

// Alerter raises fleet alerts from sync failures.
type Alerter interface {
	ScheduleSyncTimedOut(deviceID, serial string)
}

// ManagerConfig carries the manager's collaborators. Events, Telemetry,
// and Alerts are optional.
type ManagerConfig struct {
	Transport  Transport
	Subscriber Subscriber
	Timeout    time.Duration
	Logger     *logging.Logger
	Events     EventSink
	Telemetry  TelemetryRecorder
	Alerts     Alerter
}

// Manager owns every active editing session and routes push
// confirmations to them. It holds one wildcard subscription on the
// schedule response topics; each session is addressed by its own
// per-session response topic, so correlation is explicit per session
// rather than shared process-wide.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session // keyed by response topic
	byDevice  map[string]*Session // keyed by device serial
	transport Transport
	sub       Subscriber
	topics    mqtt.Topics
	timeout   time.Duration
	logger    *logging.Logger
	events    EventSink
	telemetry TelemetryRecorder
	alerts    Alerter
}

// NewManager creates a session manager. Timeout zero falls back to the
// 30 second reference deadline.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		byDevice:  make(map[string]*Session),
		transport: cfg.Transport,
		sub:       cfg.Subscriber,
		timeout:   cfg.Timeout,
		logger:    cfg.Logger,
		events:    cfg.Events,
		telemetry: cfg.Telemetry,
		alerts:    cfg.Alerts,
	}
}

// Start subscribes to the schedule response wildcard so confirmations
// reach their sessions.
func (m *Manager) Start() error {
	return m.sub.Subscribe(m.topics.AllScheduleResponses(), 1, m.handleResponse)
}

// Stop unsubscribes and closes every active session.
func (m *Manager) Stop() {
	if err := m.sub.Unsubscribe(m.topics.AllScheduleResponses()); err != nil {
		m.logger.Warn("unsubscribing schedule responses", "error", err)
	}

	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.byDevice = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// Open creates an editing session for a device and issues the initial
// schedule fetch. Only one session per device may exist at a time. A
// failed initial fetch does not close the session: the operator can
// retry, or add rules against an empty set.
func (m *Manager) Open(ctx context.Context, dev *device.Device) (*Session, error) {
	family, err := FamilyFor(dev.Family)
	if err != nil {
		return nil, err
	}
	control, err := family.ControlFor(dev.Type)
	if err != nil {
		return nil, err
	}

	id := "ses-" + uuid.NewString()[:8]
	requestTopic := m.topics.ScheduleCommand(dev.Serial)
	responseTopic := m.topics.ScheduleResponse(id)

	session := newSession(id, dev, family, control, m.transport, requestTopic, responseTopic, m.timeout)
	session.notify = func(ev SyncEvent) { m.handleEvent(session, ev) }

	m.mu.Lock()
	if _, exists := m.byDevice[dev.Serial]; exists {
		m.mu.Unlock()
		return nil, ErrSessionExists
	}
	m.sessions[responseTopic] = session
	m.byDevice[dev.Serial] = session
	m.mu.Unlock()

	m.logger.Info("schedule session opened",
		"session_id", id, "serial", dev.Serial, "control", string(control))

	if err := session.Fetch(ctx); err != nil {
		m.logger.Warn("initial schedule fetch failed",
			"session_id", id, "serial", dev.Serial, "error", err)
	}

	return session, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[m.topics.ScheduleResponse(id)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Close tears down the session with the given ID, releasing its
// correlation slot and its device.
func (m *Manager) Close(id string) error {
	responseTopic := m.topics.ScheduleResponse(id)

	m.mu.Lock()
	session, ok := m.sessions[responseTopic]
	if !ok {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(m.sessions, responseTopic)
	delete(m.byDevice, session.DeviceSerial())
	m.mu.Unlock()

	session.Close()
	m.logger.Info("schedule session closed", "session_id", id, "serial", session.DeviceSerial())
	return nil
}

// SessionCount returns the number of active sessions.
func (m *Manager) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// handleResponse routes a push confirmation to its session by response
// topic. Confirmations for unknown topics are stale and are dropped.
func (m *Manager) handleResponse(topic string, payload []byte) error {
	m.mu.Lock()
	session, ok := m.sessions[topic]
	m.mu.Unlock()

	if !ok {
		m.logger.Debug("dropping confirmation for unknown session", "topic", topic)
		return nil
	}

	session.HandleConfirmation(payload)
	return nil
}

// handleEvent fans a session transition out to the dashboard hub,
// telemetry, and the alert sink.
func (m *Manager) handleEvent(session *Session, ev SyncEvent) {
	m.logger.Info("schedule sync transition",
		"session_id", ev.SessionID, "serial", ev.DeviceSerial,
		"state", string(ev.State), "result", ev.Result)

	if m.events != nil {
		m.events.BroadcastSyncEvent(ev)
	}
	if m.telemetry != nil && ev.Result != "" {
		m.telemetry.WriteSyncResult(ev.DeviceSerial, ev.Result, ev.Duration)
	}
	if m.alerts != nil && ev.State == StateTimedOut {
		m.alerts.ScheduleSyncTimedOut(session.dev.ID, ev.DeviceSerial)
	}
}
