package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cobaltfleet/fleet-core/internal/device"
)

// handleListDevices returns all devices, with optional location_id and
// type filters.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if locationID := r.URL.Query().Get("location_id"); locationID != "" {
		devices, err := s.deviceRepo.ListByLocation(ctx, locationID)
		if err != nil {
			writeInternalError(w, "failed to list devices")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
		return
	}

	if t := r.URL.Query().Get("type"); t != "" {
		devices, err := s.deviceRepo.ListByType(ctx, device.Type(t))
		if err != nil {
			writeInternalError(w, "failed to list devices")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
		return
	}

	devices, err := s.deviceRepo.List(ctx)
	if err != nil {
		writeInternalError(w, "failed to list devices")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleGetDevice returns a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	d, err := s.deviceRepo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleCreateDevice registers a new device.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var d device.Device
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if d.ID == "" {
		d.ID = "dev-" + uuid.NewString()[:8]
	}
	if d.Status == "" {
		d.Status = device.StatusUnknown
	}

	if err := device.Validate(&d); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	if err := s.deviceRepo.Create(r.Context(), &d); err != nil {
		if errors.Is(err, device.ErrExists) {
			writeConflict(w, "a device with this serial already exists")
			return
		}
		writeInternalError(w, "failed to create device")
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// updateDeviceRequest is the PATCH /devices/{id} body.
type updateDeviceRequest struct {
	Name            *string `json:"name,omitempty"`
	LocationID      *string `json:"location_id,omitempty"`
	FirmwareVersion *string `json:"firmware_version,omitempty"`
}

// handleUpdateDevice modifies a device's mutable fields.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, err := s.deviceRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to get device")
		return
	}

	var req updateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.LocationID != nil {
		d.LocationID = req.LocationID
	}
	if req.FirmwareVersion != nil {
		d.FirmwareVersion = req.FirmwareVersion
	}

	if err := device.Validate(d); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := s.deviceRepo.Update(r.Context(), d); err != nil {
		writeInternalError(w, "failed to update device")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleDeleteDevice removes a device from the fleet.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	if err := s.deviceRepo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, device.ErrNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, "failed to delete device")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
