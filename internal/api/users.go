package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cobaltfleet/fleet-core/internal/auth"
)

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 12

// handleListUsers returns all user accounts.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.userRepo.List(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users, "count": len(users)})
}

// handleGetUser returns a single user by ID.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.userRepo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		writeInternalError(w, "failed to get user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// createUserRequest is the POST /users body.
type createUserRequest struct {
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Role     auth.Role `json:"role"`
	Password string    `json:"password"`
}

// handleCreateUser creates a new user account.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if !auth.IsValidEmail(req.Email) {
		writeValidationError(w, "invalid email address")
		return
	}
	if !auth.IsValidRole(req.Role) {
		writeValidationError(w, "invalid role")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeValidationError(w, "password must be at least 12 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeInternalError(w, "failed to create user")
		return
	}

	user := &auth.User{
		Email:        req.Email,
		Name:         req.Name,
		Role:         req.Role,
		PasswordHash: hash,
		Enabled:      true,
	}
	if err := s.userRepo.Create(r.Context(), user); err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			writeConflict(w, "email already registered")
			return
		}
		writeInternalError(w, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// updateUserRequest is the PATCH /users/{id} body. Pointer fields are
// only applied when present; password changes replace the hash.
type updateUserRequest struct {
	Name     *string    `json:"name,omitempty"`
	Role     *auth.Role `json:"role,omitempty"`
	Enabled  *bool      `json:"enabled,omitempty"`
	Password *string    `json:"password,omitempty"`
}

// handleUpdateUser modifies a user account.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := s.userRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		writeInternalError(w, "failed to get user")
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		if !auth.IsValidRole(*req.Role) {
			writeValidationError(w, "invalid role")
			return
		}
		user.Role = *req.Role
	}
	if req.Enabled != nil {
		user.Enabled = *req.Enabled
	}

	if err := s.userRepo.Update(r.Context(), user); err != nil {
		writeInternalError(w, "failed to update user")
		return
	}

	if req.Password != nil {
		if len(*req.Password) < minPasswordLength {
			writeValidationError(w, "password must be at least 12 characters")
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			writeInternalError(w, "failed to update password")
			return
		}
		if err := s.userRepo.UpdatePassword(r.Context(), id, hash); err != nil {
			writeInternalError(w, "failed to update password")
			return
		}
	}

	writeJSON(w, http.StatusOK, user)
}

// handleDeleteUser removes a user account. Deleting your own account is
// rejected.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if claims := claimsFrom(r.Context()); claims != nil && claims.Subject == id {
		writeForbidden(w, "cannot delete your own account")
		return
	}

	if err := s.userRepo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		writeInternalError(w, "failed to delete user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
