package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cobaltfleet/fleet-core/internal/alert"
)

// handleListAlerts returns alerts, newest first. Query parameters:
// unacknowledged=true limits to open alerts; device_id filters by
// device.
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if deviceID := r.URL.Query().Get("device_id"); deviceID != "" {
		alerts, err := s.alertRepo.ListByDevice(ctx, deviceID)
		if err != nil {
			writeInternalError(w, "failed to list alerts")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts, "count": len(alerts)})
		return
	}

	unackedOnly := r.URL.Query().Get("unacknowledged") == "true"
	alerts, err := s.alertRepo.List(ctx, unackedOnly)
	if err != nil {
		writeInternalError(w, "failed to list alerts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts, "count": len(alerts)})
}

// handleAcknowledgeAlert marks an alert as acknowledged by the caller.
func (s *Server) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	if claims == nil {
		writeUnauthorized(w, "authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.alertRepo.Acknowledge(r.Context(), id, claims.Subject); err != nil {
		if errors.Is(err, alert.ErrNotFound) {
			writeNotFound(w, "alert not found or already acknowledged")
			return
		}
		writeInternalError(w, "failed to acknowledge alert")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}
