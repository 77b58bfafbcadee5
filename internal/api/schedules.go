package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cobaltfleet/fleet-core/internal/device"
	"github.com/cobaltfleet/fleet-core/internal/schedule"
)

// scheduleSessionView is the session representation returned to the
// dashboard.
type scheduleSessionView struct {
	ID           string                  `json:"id"`
	DeviceSerial string                  `json:"device_serial"`
	State        schedule.State          `json:"state"`
	Rules        []schedule.ScheduleRule `json:"rules"`
	LastError    string                  `json:"last_error,omitempty"`
}

func sessionView(s *schedule.Session) scheduleSessionView {
	return scheduleSessionView{
		ID:           s.ID(),
		DeviceSerial: s.DeviceSerial(),
		State:        s.State(),
		Rules:        s.Rules(),
		LastError:    s.LastError(),
	}
}

// handleOpenScheduleSession opens an editing session for a device and
// issues the initial schedule fetch.
func (s *Server) handleOpenScheduleSession(w http.ResponseWriter, r *http.Request) {
	d, err := s.deviceRepo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	session, err := s.schedules.Open(r.Context(), d)
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrSessionExists):
			writeConflict(w, "an editing session is already open for this device")
		case errors.Is(err, schedule.ErrUnknownFamily), errors.Is(err, schedule.ErrUnknownControl):
			writeValidationError(w, err.Error())
		default:
			writeInternalError(w, "failed to open schedule session")
		}
		return
	}

	writeJSON(w, http.StatusCreated, sessionView(session))
}

// handleGetScheduleSession returns the current session state and rules.
func (s *Server) handleGetScheduleSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.schedules.Get(chi.URLParam(r, "sid"))
	if err != nil {
		writeNotFound(w, "schedule session not found")
		return
	}
	writeJSON(w, http.StatusOK, sessionView(session))
}

// handleAddScheduleRule appends a rule to the session's local set.
func (s *Server) handleAddScheduleRule(w http.ResponseWriter, r *http.Request) {
	session, err := s.schedules.Get(chi.URLParam(r, "sid"))
	if err != nil {
		writeNotFound(w, "schedule session not found")
		return
	}

	var rule schedule.ScheduleRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := session.AddRule(rule); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sessionView(session))
}

// handleUpdateScheduleRule replaces the rule at an index.
func (s *Server) handleUpdateScheduleRule(w http.ResponseWriter, r *http.Request) {
	session, err := s.schedules.Get(chi.URLParam(r, "sid"))
	if err != nil {
		writeNotFound(w, "schedule session not found")
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeBadRequest(w, "rule index must be an integer")
		return
	}

	var rule schedule.ScheduleRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := session.UpdateRule(index, rule); err != nil {
		if errors.Is(err, schedule.ErrIndexOutOfRange) {
			writeNotFound(w, "rule index out of range")
			return
		}
		writeValidationError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sessionView(session))
}

// handleDeleteScheduleRule removes the rule at an index.
func (s *Server) handleDeleteScheduleRule(w http.ResponseWriter, r *http.Request) {
	session, err := s.schedules.Get(chi.URLParam(r, "sid"))
	if err != nil {
		writeNotFound(w, "schedule session not found")
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeBadRequest(w, "rule index must be an integer")
		return
	}

	if err := session.DeleteRule(index); err != nil {
		if errors.Is(err, schedule.ErrIndexOutOfRange) {
			writeNotFound(w, "rule index out of range")
			return
		}
		writeInternalError(w, "failed to delete rule")
		return
	}
	writeJSON(w, http.StatusOK, sessionView(session))
}

// handleSubmitScheduleSession pushes the local rule set to the device.
// The response reflects the dispatch outcome; confirmation arrives
// asynchronously over the WebSocket event stream.
func (s *Server) handleSubmitScheduleSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.schedules.Get(chi.URLParam(r, "sid"))
	if err != nil {
		writeNotFound(w, "schedule session not found")
		return
	}

	if err := session.Submit(r.Context()); err != nil {
		switch {
		case errors.Is(err, schedule.ErrSyncInFlight):
			writeConflict(w, "a sync is already in flight for this session")
		case errors.Is(err, schedule.ErrMissingTime),
			errors.Is(err, schedule.ErrDegenerateInterval),
			errors.Is(err, schedule.ErrNoSelector),
			errors.Is(err, schedule.ErrInvalidTime),
			errors.Is(err, schedule.ErrInvalidKind),
			errors.Is(err, schedule.ErrInvalidDay),
			errors.Is(err, schedule.ErrInvalidDate),
			errors.Is(err, schedule.ErrInvalidDayRange):
			writeValidationError(w, err.Error())
		default:
			// Transport failure: the set is untouched and retry is
			// available.
			writeError(w, http.StatusBadGateway, ErrCodeInternal, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusAccepted, sessionView(session))
}

// handleRetryScheduleSession re-dispatches the last payload after a
// timeout. Retry is operator-triggered, never automatic.
func (s *Server) handleRetryScheduleSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.schedules.Get(chi.URLParam(r, "sid"))
	if err != nil {
		writeNotFound(w, "schedule session not found")
		return
	}

	if err := session.Retry(r.Context()); err != nil {
		switch {
		case errors.Is(err, schedule.ErrNotTimedOut):
			writeConflict(w, "retry is only available after a timeout")
		case errors.Is(err, schedule.ErrSyncInFlight):
			writeConflict(w, "a sync is already in flight for this session")
		default:
			writeError(w, http.StatusBadGateway, ErrCodeInternal, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusAccepted, sessionView(session))
}

// handleCloseScheduleSession discards the session and releases its
// correlation slot.
func (s *Server) handleCloseScheduleSession(w http.ResponseWriter, r *http.Request) {
	if err := s.schedules.Close(chi.URLParam(r, "sid")); err != nil {
		writeNotFound(w, "schedule session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}
