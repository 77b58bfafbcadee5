package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cobaltfleet/fleet-core/internal/device"
)

// State is the correlator's position in its lifecycle.
type State string

const (
	StateIdle        State = "idle"
	StateAwaitingAck State = "awaiting_ack"
	StateConfirmed   State = "confirmed"
	StateTimedOut    State = "timed_out"
	StateClosed      State = "closed"
)

// Sync result labels, used in events and telemetry.
const (
	// ResultConfirmed means the device acknowledged the command.
	ResultConfirmed = "confirmed"

	// ResultDelivered means a confirmation arrived without an accepted
	// marker: delivered, content unconfirmed.
	ResultDelivered = "delivered"

	// ResultTimeout means the deadline elapsed with no confirmation.
	ResultTimeout = "timeout"
)

// CorrelationContext links an issued command to its eventual
// confirmation. Exactly one may be pending per session; it is destroyed
// on resolution, timeout, or session teardown.
type CorrelationContext struct {
	RequestTopic  string
	ResponseTopic string
	IssuedAt      time.Time
	Deadline      time.Time
}

// SyncEvent describes a correlator state transition, for the dashboard
// event hub and telemetry.
type SyncEvent struct {
	SessionID    string        `json:"session_id"`
	DeviceSerial string        `json:"device_serial"`
	State        State         `json:"state"`
	Result       string        `json:"result,omitempty"`
	Duration     time.Duration `json:"-"`
}

// confirmationPayload is the push confirmation wire shape. Schedules is
// held raw so a malformed snapshot can be detected and recovered from
// without losing the accepted marker.
type confirmationPayload struct {
	Accepted  bool            `json:"accepted"`
	Schedules json.RawMessage `json:"schedules"`
}

// Session is one device schedule editing session: the exclusively-owned
// ScheduleSet, the correlator state machine, and the single pending
// correlation slot. All methods are safe for concurrent use; internally
// the push channel is sole-writer to the confirmation slot.
type Session struct {
	mu sync.Mutex

	id      string
	dev     *device.Device
	family  Family
	control Control

	set         *ScheduleSet
	state       State
	corr        *CorrelationContext
	lastCommand *Command
	lastError   string

	transport     Transport
	timeout       time.Duration
	timer         *time.Timer
	requestTopic  string
	responseTopic string

	// notify is invoked outside the lock on every observable state
	// transition. Set by the manager; nil is allowed.
	notify func(SyncEvent)

	now func() time.Time
}

func newSession(id string, dev *device.Device, family Family, control Control,
	transport Transport, requestTopic, responseTopic string, timeout time.Duration) *Session {
	return &Session{
		id:            id,
		dev:           dev,
		family:        family,
		control:       control,
		set:           NewScheduleSet(dev.Serial, control),
		state:         StateIdle,
		transport:     transport,
		timeout:       timeout,
		requestTopic:  requestTopic,
		responseTopic: responseTopic,
		now:           time.Now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// DeviceSerial returns the serial of the device being edited.
func (s *Session) DeviceSerial() string { return s.dev.Serial }

// ResponseTopic returns the per-session confirmation topic.
func (s *Session) ResponseTopic() string { return s.responseTopic }

// State returns the correlator's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Rules returns a copy of the session's current rule list.
func (s *Session) Rules() []ScheduleRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ScheduleRule, len(s.set.Rules))
	copy(out, s.set.Rules)
	return out
}

// LastError returns the most recent recoverable data error, or empty.
// A non-empty value means existing schedules could not be refreshed but
// the session remains usable.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// AddRule appends a validated rule to the local set.
func (s *Session) AddRule(rule ScheduleRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return ErrSessionClosed
	}
	return s.set.Add(rule)
}

// UpdateRule replaces the rule at index with a validated one.
func (s *Session) UpdateRule(index int, rule ScheduleRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return ErrSessionClosed
	}
	return s.set.Update(index, rule)
}

// DeleteRule removes the rule at index.
func (s *Session) DeleteRule(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return ErrSessionClosed
	}
	return s.set.Delete(index)
}

// Fetch asks the device for its authoritative schedule snapshot.
func (s *Session) Fetch(ctx context.Context) error {
	return s.dispatch(ctx, Message{Directive: DirectiveGetAll})
}

// Submit pushes the local rule set to the device. Every rule is
// re-validated first; a validation failure blocks the dispatch and
// leaves the correlator untouched.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if err := ValidateAll(s.set); err != nil {
		s.mu.Unlock()
		return err
	}
	msg := Message{Directive: DirectiveSetAll, Schedules: EncodeAll(s.set)}
	s.mu.Unlock()

	return s.dispatch(ctx, msg)
}

// Retry re-dispatches the last command with its original payload. It is
// only valid from TimedOut; retry is never automatic.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state != StateTimedOut || s.lastCommand == nil {
		s.mu.Unlock()
		return ErrNotTimedOut
	}
	msg := s.lastCommand.Message
	s.mu.Unlock()

	return s.dispatch(ctx, msg)
}

// dispatch issues one correlated command. It registers the single
// pending correlation slot before calling the transport and never
// leaves two resolvers registered: a dispatch while one is in flight is
// rejected with ErrSyncInFlight.
func (s *Session) dispatch(ctx context.Context, msg Message) error {
	s.mu.Lock()
	switch s.state {
	case StateClosed:
		s.mu.Unlock()
		return ErrSessionClosed
	case StateAwaitingAck:
		s.mu.Unlock()
		return ErrSyncInFlight
	}

	cmd := Command{
		RequestTopic:  s.requestTopic,
		Message:       msg,
		ResponseTopic: s.responseTopic,
	}
	issuedAt := s.now()
	s.corr = &CorrelationContext{
		RequestTopic:  s.requestTopic,
		ResponseTopic: s.responseTopic,
		IssuedAt:      issuedAt,
		Deadline:      issuedAt.Add(s.timeout),
	}
	s.lastCommand = &cmd
	s.state = StateAwaitingAck
	s.mu.Unlock()

	ack, err := s.transport.Request(ctx, cmd)
	if err != nil {
		// Transport failure: no confirmation will come. Clear the slot
		// and leave the local set untouched; the operator may retry. A
		// push confirmation can land while Request is still returning
		// (the broker may forward the command even when the publish
		// cycle errors), so the transition only fires if the session
		// is still waiting.
		s.mu.Lock()
		if s.state != StateAwaitingAck {
			s.mu.Unlock()
			return nil
		}
		s.clearCorrelationLocked()
		s.state = StateTimedOut
		s.mu.Unlock()
		s.emit(SyncEvent{SessionID: s.id, DeviceSerial: s.dev.Serial, State: StateTimedOut, Result: ResultTimeout})
		return fmt.Errorf("dispatching %s: %w", msg.Directive, err)
	}

	if ack != nil && ack.Accepted {
		// Immediate acknowledgement: terminal success, no waiting.
		s.resolve(ack.Accepted, ack.Schedules, ack.Schedules != nil)
		return nil
	}

	s.mu.Lock()
	if s.state == StateAwaitingAck {
		s.timer = time.AfterFunc(s.timeout, s.onDeadline)
	}
	s.mu.Unlock()
	return nil
}

// HandleConfirmation feeds a push confirmation into the correlator. A
// confirmation arriving with no pending slot is stale and is dropped.
func (s *Session) HandleConfirmation(payload []byte) {
	s.mu.Lock()
	if s.state != StateAwaitingAck || s.corr == nil {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	var conf confirmationPayload
	if err := json.Unmarshal(payload, &conf); err != nil {
		// Unintelligible confirmation still resolves the wait: the
		// device answered, its content just can't be used.
		s.resolveWithError("confirmation payload malformed")
		return
	}

	var snapshot []WireRecord
	hasSnapshot := len(conf.Schedules) > 0 && string(conf.Schedules) != "null"
	if hasSnapshot {
		if err := json.Unmarshal(conf.Schedules, &snapshot); err != nil {
			s.resolveWithError("schedule snapshot malformed")
			return
		}
	}

	s.resolve(conf.Accepted, snapshot, hasSnapshot)
}

// resolve transitions AwaitingAck to Confirmed, applying any snapshot.
func (s *Session) resolve(accepted bool, snapshot []WireRecord, hasSnapshot bool) {
	s.mu.Lock()
	if s.state != StateAwaitingAck {
		s.mu.Unlock()
		return
	}
	duration := s.now().Sub(s.corr.IssuedAt)
	s.clearCorrelationLocked()
	s.state = StateConfirmed
	s.lastError = ""

	if hasSnapshot {
		if rules, err := Reconcile(snapshot, s.family, s.control); err != nil {
			s.lastError = err.Error()
		} else {
			s.set.Replace(rules)
		}
	}

	result := ResultDelivered
	if accepted {
		result = ResultConfirmed
	}
	s.mu.Unlock()

	s.emit(SyncEvent{
		SessionID:    s.id,
		DeviceSerial: s.dev.Serial,
		State:        StateConfirmed,
		Result:       result,
		Duration:     duration,
	})
}

// resolveWithError confirms delivery but records a recoverable data
// error; the local rule set is preserved.
func (s *Session) resolveWithError(reason string) {
	s.mu.Lock()
	if s.state != StateAwaitingAck {
		s.mu.Unlock()
		return
	}
	duration := s.now().Sub(s.corr.IssuedAt)
	s.clearCorrelationLocked()
	s.state = StateConfirmed
	s.lastError = reason
	s.mu.Unlock()

	s.emit(SyncEvent{
		SessionID:    s.id,
		DeviceSerial: s.dev.Serial,
		State:        StateConfirmed,
		Result:       ResultDelivered,
		Duration:     duration,
	})
}

// onDeadline fires when the deadline elapses with no confirmation. The
// local set is not mutated; the retained payload enables manual retry.
func (s *Session) onDeadline() {
	s.mu.Lock()
	if s.state != StateAwaitingAck {
		s.mu.Unlock()
		return
	}
	s.clearCorrelationLocked()
	s.state = StateTimedOut
	s.mu.Unlock()

	s.emit(SyncEvent{
		SessionID:    s.id,
		DeviceSerial: s.dev.Serial,
		State:        StateTimedOut,
		Result:       ResultTimeout,
		Duration:     s.timeout,
	})
}

// Close tears the session down, releasing the correlation slot so a
// late confirmation cannot be misrouted to a later session.
func (s *Session) Close() {
	s.mu.Lock()
	s.clearCorrelationLocked()
	s.state = StateClosed
	s.mu.Unlock()
}

// clearCorrelationLocked destroys the pending slot and stops its timer.
// Callers hold s.mu.
func (s *Session) clearCorrelationLocked() {
	s.corr = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) emit(ev SyncEvent) {
	if s.notify != nil {
		s.notify(ev)
	}
}
