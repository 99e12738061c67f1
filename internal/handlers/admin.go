package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/saransh000/hackathonpractice/internal/api/middleware"
	"github.com/saransh000/hackathonpractice/internal/models"
)

// LoginHistoryResponse lists recent logins across all accounts.
type LoginHistoryResponse struct {
	Sessions []models.LoginSession `json:"sessions"`
	Count    int                   `json:"count"`
}

// LoginHistory returns the most recent logins, newest first.
// Accepts ?limit=N between 1 and 500, defaulting to 100.
func (h *Handler) LoginHistory(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			h.Error(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	sessions, err := h.db.ListLoginSessions(r.Context(), limit)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to load login history")
		return
	}

	h.JSON(w, http.StatusOK, LoginHistoryResponse{
		Sessions: sessions,
		Count:    len(sessions),
	})
}

// LoginStats returns aggregate login counts.
func (h *Handler) LoginStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.GetLoginStats(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to load login stats")
		return
	}

	h.JSON(w, http.StatusOK, stats)
}

// UserListResponse lists every registered account.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Count int            `json:"count"`
}

// ListUsers returns all registered users, newest first.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.db.ListUsers(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, UserResponse{
			ID:      u.ID.String(),
			Name:    u.Name,
			Email:   u.Email,
			IsAdmin: u.IsAdmin,
		})
	}

	h.JSON(w, http.StatusOK, UserListResponse{Users: out, Count: len(out)})
}

// UpdateUserRoleRequest toggles a user's admin flag.
type UpdateUserRoleRequest struct {
	IsAdmin bool `json:"is_admin"`
}

// UpdateUserRole grants or revokes admin rights. Admins cannot demote
// themselves, so there is always at least one admin left to undo a mistake.
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUserFromContext(r.Context())
	if caller == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req UpdateUserRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if targetID == caller.ID && !req.IsAdmin {
		h.Error(w, http.StatusBadRequest, "cannot revoke your own admin access")
		return
	}

	target, err := h.db.GetUserByID(r.Context(), targetID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if target == nil {
		h.Error(w, http.StatusNotFound, "user not found")
		return
	}

	if err := h.db.SetUserAdmin(r.Context(), targetID, req.IsAdmin); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to update role")
		return
	}

	h.JSON(w, http.StatusOK, UserResponse{
		ID:      target.ID.String(),
		Name:    target.Name,
		Email:   target.Email,
		IsAdmin: req.IsAdmin,
	})
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUserFromContext(r.Context())
	if caller == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if targetID == caller.ID {
		h.Error(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	target, err := h.db.GetUserByID(r.Context(), targetID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if target == nil {
		h.Error(w, http.StatusNotFound, "user not found")
		return
	}

	if err := h.db.DeleteUser(r.Context(), targetID); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
