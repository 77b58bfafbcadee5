package device

import (
	"context"
	"testing"
	"time"

	"github.com/cobaltfleet/fleet-core/internal/infrastructure/logging"
)

// fakeStatusRepo implements Repository with just enough behaviour for
// presence tracking.
type fakeStatusRepo struct {
	Repository
	devices    map[string]*Device // keyed by serial
	lastID     string
	lastStatus Status
}

func (f *fakeStatusRepo) GetBySerial(_ context.Context, serial string) (*Device, error) {
	d, ok := f.devices[serial]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (f *fakeStatusRepo) UpdateStatus(_ context.Context, id string, status Status, _ time.Time) error {
	f.lastID = id
	f.lastStatus = status
	return nil
}

type captureBroadcaster struct {
	channel string
	payload any
}

func (c *captureBroadcaster) Broadcast(channel string, payload any) {
	c.channel = channel
	c.payload = payload
}

func newStatusTracker(repo Repository, events StatusBroadcaster) *PresenceTracker {
	return NewPresenceTracker(repo, nil, logging.Default(), events)
}

func TestPresenceHandleStatus(t *testing.T) {
	repo := &fakeStatusRepo{devices: map[string]*Device{
		"SN-0042": {ID: "dev-42", Serial: "SN-0042"},
	}}
	events := &captureBroadcaster{}
	tracker := newStatusTracker(repo, events)

	tests := []struct {
		name       string
		topic      string
		payload    string
		wantID     string
		wantStatus Status
	}{
		{
			name:       "online message updates registry",
			topic:      "fleet/status/SN-0042",
			payload:    `{"status":"online","firmware_version":"2.1.0"}`,
			wantID:     "dev-42",
			wantStatus: StatusOnline,
		},
		{
			name:       "offline LWT updates registry",
			topic:      "fleet/status/SN-0042",
			payload:    `{"status":"offline"}`,
			wantID:     "dev-42",
			wantStatus: StatusOffline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo.lastID, repo.lastStatus = "", ""

			if err := tracker.handleStatus(tt.topic, []byte(tt.payload)); err != nil {
				t.Fatalf("handleStatus() error = %v", err)
			}
			if repo.lastID != tt.wantID {
				t.Errorf("updated device = %q, want %q", repo.lastID, tt.wantID)
			}
			if repo.lastStatus != tt.wantStatus {
				t.Errorf("status = %q, want %q", repo.lastStatus, tt.wantStatus)
			}
			if events.channel != "device.status" {
				t.Errorf("broadcast channel = %q, want device.status", events.channel)
			}
		})
	}
}

func TestPresenceDropsUnknownDevice(t *testing.T) {
	repo := &fakeStatusRepo{devices: map[string]*Device{}}
	tracker := newStatusTracker(repo, nil)

	if err := tracker.handleStatus("fleet/status/SN-GHOST", []byte(`{"status":"online"}`)); err != nil {
		t.Fatalf("handleStatus() error = %v", err)
	}
	if repo.lastID != "" {
		t.Errorf("unexpected update for unenrolled device: %q", repo.lastID)
	}
}

func TestPresenceDropsMalformedPayload(t *testing.T) {
	repo := &fakeStatusRepo{devices: map[string]*Device{
		"SN-0042": {ID: "dev-42", Serial: "SN-0042"},
	}}
	tracker := newStatusTracker(repo, nil)

	if err := tracker.handleStatus("fleet/status/SN-0042", []byte(`not json`)); err != nil {
		t.Fatalf("handleStatus() error = %v", err)
	}
	if repo.lastID != "" {
		t.Errorf("unexpected update from malformed payload: %q", repo.lastID)
	}

	if err := tracker.handleStatus("fleet/status/SN-0042", []byte(`{"status":"rebooting"}`)); err != nil {
		t.Fatalf("handleStatus() error = %v", err)
	}
	if repo.lastID != "" {
		t.Errorf("unexpected update from unknown status value: %q", repo.lastID)
	}
}
