package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/saransh000/hackathonpractice/internal/api/middleware"
	"github.com/saransh000/hackathonpractice/internal/models"
)

// BoardResponse is the authoritative board snapshot clients re-fetch
// after a board-changed signal arrives over the realtime connection.
type BoardResponse struct {
	ID      string          `json:"id"`
	TeamID  string          `json:"team_id"`
	Title   string          `json:"title"`
	Columns []models.Column `json:"columns"`
	Tasks   []models.Task   `json:"tasks"`
}

// GetBoard returns a team's board with its columns and tasks ordered by
// column position.
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	team, ok := h.loadTeamForMember(w, r, user.ID)
	if !ok {
		return
	}

	board, err := h.db.GetBoardForTeam(r.Context(), team.ID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if board == nil {
		h.Error(w, http.StatusNotFound, "board not found")
		return
	}

	tasks, err := h.db.ListTasksForBoard(r.Context(), board.ID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	h.JSON(w, http.StatusOK, BoardResponse{
		ID:      board.ID.String(),
		TeamID:  board.TeamID.String(),
		Title:   board.Title,
		Columns: board.Columns,
		Tasks:   tasks,
	})
}

// UpdateColumnsRequest replaces a board's column layout.
type UpdateColumnsRequest struct {
	Columns []models.Column `json:"columns"`
}

// UpdateBoardColumns replaces the column layout of a team's board.
func (h *Handler) UpdateBoardColumns(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	team, ok := h.loadTeamForMember(w, r, user.ID)
	if !ok {
		return
	}

	var req UpdateColumnsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Columns) == 0 {
		h.Error(w, http.StatusBadRequest, "columns cannot be empty")
		return
	}
	for _, col := range req.Columns {
		if col.ID == "" || col.Title == "" {
			h.Error(w, http.StatusBadRequest, "every column needs an id and a title")
			return
		}
	}

	board, err := h.db.GetBoardForTeam(r.Context(), team.ID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if board == nil {
		h.Error(w, http.StatusNotFound, "board not found")
		return
	}

	if err := h.db.UpdateBoardColumns(r.Context(), board.ID, req.Columns); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to update columns")
		return
	}

	board.Columns = req.Columns
	h.JSON(w, http.StatusOK, board)
}
