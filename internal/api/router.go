package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cobaltfleet/fleet-core/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// WebSocket for dashboard events. Browsers cannot set an
		// Authorization header on the upgrade request, so the handler
		// validates a token query parameter itself.
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)

			// Device endpoints
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.With(s.requireRole(auth.RoleAdmin)).Post("/", s.handleCreateDevice)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetDevice)
					r.With(s.requireRole(auth.RoleAdmin)).Patch("/", s.handleUpdateDevice)
					r.With(s.requireRole(auth.RoleAdmin)).Delete("/", s.handleDeleteDevice)

					// Schedule editing sessions (the schedule sync engine)
					r.With(s.requireRole(auth.RoleOperator)).
						Post("/schedule-session", s.handleOpenScheduleSession)
				})
			})

			// Schedule session endpoints
			r.Route("/schedule-sessions/{sid}", func(r chi.Router) {
				r.Get("/", s.handleGetScheduleSession)
				r.Group(func(r chi.Router) {
					r.Use(s.requireRole(auth.RoleOperator))
					r.Post("/rules", s.handleAddScheduleRule)
					r.Put("/rules/{index}", s.handleUpdateScheduleRule)
					r.Delete("/rules/{index}", s.handleDeleteScheduleRule)
					r.Post("/submit", s.handleSubmitScheduleSession)
					r.Post("/retry", s.handleRetryScheduleSession)
					r.Delete("/", s.handleCloseScheduleSession)
				})
			})

			// Client endpoints
			r.Route("/clients", func(r chi.Router) {
				r.Get("/", s.handleListClients)
				r.With(s.requireRole(auth.RoleAdmin)).Post("/", s.handleCreateClient)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetClient)
					r.With(s.requireRole(auth.RoleAdmin)).Patch("/", s.handleUpdateClient)
					r.With(s.requireRole(auth.RoleAdmin)).Delete("/", s.handleDeleteClient)
				})
			})

			// Location endpoints
			r.Route("/locations", func(r chi.Router) {
				r.Get("/", s.handleListLocations)
				r.With(s.requireRole(auth.RoleAdmin)).Post("/", s.handleCreateLocation)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetLocation)
					r.With(s.requireRole(auth.RoleAdmin)).Patch("/", s.handleUpdateLocation)
					r.With(s.requireRole(auth.RoleAdmin)).Delete("/", s.handleDeleteLocation)
				})
			})

			// Alert endpoints
			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", s.handleListAlerts)
				r.With(s.requireRole(auth.RoleOperator)).
					Post("/{id}/acknowledge", s.handleAcknowledgeAlert)
			})

			// User management (admin only)
			r.Route("/users", func(r chi.Router) {
				r.Use(s.requireRole(auth.RoleAdmin))
				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetUser)
					r.Patch("/", s.handleUpdateUser)
					r.Delete("/", s.handleDeleteUser)
				})
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
