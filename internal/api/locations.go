package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cobaltfleet/fleet-core/internal/location"
)

// handleListClients returns all clients.
func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.locationRepo.ListClients(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list clients")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clients": clients, "count": len(clients)})
}

// handleGetClient returns a single client by ID.
func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	c, err := s.locationRepo.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, location.ErrClientNotFound) {
			writeNotFound(w, "client not found")
			return
		}
		writeInternalError(w, "failed to get client")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleCreateClient creates a new client.
func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var c location.Client
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if c.ID == "" {
		c.ID = "cli-" + uuid.NewString()[:8]
	}

	if err := s.locationRepo.CreateClient(r.Context(), &c); err != nil {
		if errors.Is(err, location.ErrInvalid) {
			writeValidationError(w, err.Error())
			return
		}
		writeInternalError(w, "failed to create client")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// handleUpdateClient modifies a client.
func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := s.locationRepo.GetClient(r.Context(), id)
	if err != nil {
		if errors.Is(err, location.ErrClientNotFound) {
			writeNotFound(w, "client not found")
			return
		}
		writeInternalError(w, "failed to get client")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(c); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	c.ID = id

	if err := s.locationRepo.UpdateClient(r.Context(), c); err != nil {
		writeInternalError(w, "failed to update client")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleDeleteClient removes a client and cascades its locations.
func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := s.locationRepo.DeleteClient(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, location.ErrClientNotFound) {
			writeNotFound(w, "client not found")
			return
		}
		writeInternalError(w, "failed to delete client")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleListLocations returns all locations, with optional client_id
// filter.
func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if clientID := r.URL.Query().Get("client_id"); clientID != "" {
		locations, err := s.locationRepo.ListLocationsByClient(ctx, clientID)
		if err != nil {
			writeInternalError(w, "failed to list locations")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"locations": locations, "count": len(locations)})
		return
	}

	locations, err := s.locationRepo.ListLocations(ctx)
	if err != nil {
		writeInternalError(w, "failed to list locations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": locations, "count": len(locations)})
}

// handleGetLocation returns a single location by ID.
func (s *Server) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	l, err := s.locationRepo.GetLocation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			writeNotFound(w, "location not found")
			return
		}
		writeInternalError(w, "failed to get location")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handleCreateLocation creates a new location.
func (s *Server) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var l location.Location
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if l.ID == "" {
		l.ID = "loc-" + uuid.NewString()[:8]
	}

	if err := s.locationRepo.CreateLocation(r.Context(), &l); err != nil {
		if errors.Is(err, location.ErrInvalid) {
			writeValidationError(w, err.Error())
			return
		}
		writeInternalError(w, "failed to create location")
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// handleUpdateLocation modifies a location.
func (s *Server) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	l, err := s.locationRepo.GetLocation(r.Context(), id)
	if err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			writeNotFound(w, "location not found")
			return
		}
		writeInternalError(w, "failed to get location")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(l); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	l.ID = id

	if err := s.locationRepo.UpdateLocation(r.Context(), l); err != nil {
		writeInternalError(w, "failed to update location")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handleDeleteLocation removes a location.
func (s *Server) handleDeleteLocation(w http.ResponseWriter, r *http.Request) {
	if err := s.locationRepo.DeleteLocation(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			writeNotFound(w, "location not found")
			return
		}
		writeInternalError(w, "failed to delete location")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
