package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/saransh000/hackathonpractice/internal/api/middleware"
	"github.com/saransh000/hackathonpractice/internal/metrics"
	"github.com/saransh000/hackathonpractice/internal/models"
)

// SendDMRequest represents a direct message send request.
type SendDMRequest struct {
	ToID string `json:"to_id"`
	Body string `json:"body"`
}

// SendDM stores a direct message in the recipient's Redis inbox.
func (h *Handler) SendDM(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if h.redis == nil {
		h.Error(w, http.StatusServiceUnavailable, "messaging is not available")
		return
	}

	var req SendDMRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	toID, err := uuid.Parse(req.ToID)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid recipient ID format")
		return
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		h.Error(w, http.StatusBadRequest, "body is required")
		return
	}
	if len(req.Body) > 2000 {
		h.Error(w, http.StatusBadRequest, "body cannot exceed 2000 characters")
		return
	}

	recipient, err := h.db.GetUserByID(r.Context(), toID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if recipient == nil {
		h.Error(w, http.StatusNotFound, "recipient not found")
		return
	}

	dm := &models.DirectMessage{
		FromID: user.ID.String(),
		ToID:   toID.String(),
		Body:   req.Body,
	}
	if err := h.redis.StoreDM(r.Context(), dm); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	metrics.DMsSent.Inc()
	h.JSON(w, http.StatusCreated, dm)
}

// GetDMs returns the authenticated user's inbox, newest first.
func (h *Handler) GetDMs(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if h.redis == nil {
		h.Error(w, http.StatusServiceUnavailable, "messaging is not available")
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			h.Error(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	dms, err := h.redis.GetDMsForUser(r.Context(), user.ID.String(), limit)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to load messages")
		return
	}

	h.JSON(w, http.StatusOK, map[string]interface{}{"messages": dms})
}
