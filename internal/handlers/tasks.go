package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/saransh000/hackathonpractice/internal/api/middleware"
	"github.com/saransh000/hackathonpractice/internal/metrics"
	"github.com/saransh000/hackathonpractice/internal/models"
)

// CreateTaskRequest represents the task creation request.
type CreateTaskRequest struct {
	BoardID     string     `json:"board_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssigneeID  string     `json:"assignee_id,omitempty"`
	Column      string     `json:"column,omitempty"`
	Position    int        `json:"position"`
}

// UpdateTaskRequest represents a partial task update. Nil fields are
// left unchanged.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
}

// MoveTaskRequest represents a drag-and-drop move between columns.
type MoveTaskRequest struct {
	Column   string `json:"column"`
	Position int    `json:"position"`
}

// CreateTask handles task creation on a board.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	boardID, err := uuid.Parse(req.BoardID)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid board ID format")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		h.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if len(req.Title) > 100 {
		h.Error(w, http.StatusBadRequest, "title cannot exceed 100 characters")
		return
	}
	if len(req.Description) > 500 {
		h.Error(w, http.StatusBadRequest, "description cannot exceed 500 characters")
		return
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(req.Priority) {
		h.Error(w, http.StatusBadRequest, "priority must be low, medium or high")
		return
	}
	if req.Column == "" {
		req.Column = "todo"
	}

	board, ok := h.loadBoardForMember(w, r, boardID, user.ID)
	if !ok {
		return
	}

	task := &models.Task{
		BoardID:     board.ID,
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Status:      models.StatusPending,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Column:      req.Column,
		Position:    req.Position,
		CreatedBy:   user.ID,
	}
	if req.AssigneeID != "" {
		assignee, err := uuid.Parse(req.AssigneeID)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "invalid assignee ID format")
			return
		}
		task.AssigneeID = &assignee
	}

	created, err := h.db.CreateTask(r.Context(), task)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	metrics.TasksMutated.WithLabelValues("created").Inc()
	h.JSON(w, http.StatusCreated, created)
}

// GetTask returns a single task.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	task, ok := h.loadTaskForMember(w, r, user.ID)
	if !ok {
		return
	}
	h.JSON(w, http.StatusOK, task)
}

// UpdateTask applies a partial update to a task.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	task, ok := h.loadTaskForMember(w, r, user.ID)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			h.Error(w, http.StatusBadRequest, "title cannot be empty")
			return
		}
		if len(title) > 100 {
			h.Error(w, http.StatusBadRequest, "title cannot exceed 100 characters")
			return
		}
		task.Title = title
	}
	if req.Description != nil {
		if len(*req.Description) > 500 {
			h.Error(w, http.StatusBadRequest, "description cannot exceed 500 characters")
			return
		}
		task.Description = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		if !models.ValidStatus(*req.Status) {
			h.Error(w, http.StatusBadRequest, "status must be pending, in-progress or completed")
			return
		}
		task.Status = *req.Status
	}
	if req.Priority != nil {
		if !models.ValidPriority(*req.Priority) {
			h.Error(w, http.StatusBadRequest, "priority must be low, medium or high")
			return
		}
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.AssigneeID != nil {
		if *req.AssigneeID == "" {
			task.AssigneeID = nil
		} else {
			assignee, err := uuid.Parse(*req.AssigneeID)
			if err != nil {
				h.Error(w, http.StatusBadRequest, "invalid assignee ID format")
				return
			}
			task.AssigneeID = &assignee
		}
	}

	if err := h.db.UpdateTask(r.Context(), task); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	metrics.TasksMutated.WithLabelValues("updated").Inc()
	h.JSON(w, http.StatusOK, task)
}

// MoveTask relocates a task to another column and position.
func (h *Handler) MoveTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	task, ok := h.loadTaskForMember(w, r, user.ID)
	if !ok {
		return
	}

	var req MoveTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Column == "" {
		h.Error(w, http.StatusBadRequest, "column is required")
		return
	}
	if req.Position < 0 {
		h.Error(w, http.StatusBadRequest, "position cannot be negative")
		return
	}

	if err := h.db.MoveTask(r.Context(), task.ID, req.Column, req.Position); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to move task")
		return
	}

	task.Column = req.Column
	task.Position = req.Position

	metrics.TasksMutated.WithLabelValues("moved").Inc()
	h.JSON(w, http.StatusOK, task)
}

// DeleteTask removes a task from its board.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	task, ok := h.loadTaskForMember(w, r, user.ID)
	if !ok {
		return
	}

	if err := h.db.DeleteTask(r.Context(), task.ID); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	metrics.TasksMutated.WithLabelValues("deleted").Inc()
	h.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// loadTaskForMember parses the {id} URL param, loads the task and checks
// the requester belongs to the task's team.
func (h *Handler) loadTaskForMember(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*models.Task, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid task ID format")
		return nil, false
	}

	task, err := h.db.GetTask(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return nil, false
	}
	if task == nil {
		h.Error(w, http.StatusNotFound, "task not found")
		return nil, false
	}

	if _, ok := h.loadBoardForMember(w, r, task.BoardID, userID); !ok {
		return nil, false
	}
	return task, true
}

// loadBoardForMember loads a board and checks the requester belongs to
// the team that owns it.
func (h *Handler) loadBoardForMember(w http.ResponseWriter, r *http.Request, boardID, userID uuid.UUID) (*models.Board, bool) {
	board, err := h.db.GetBoard(r.Context(), boardID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return nil, false
	}
	if board == nil {
		h.Error(w, http.StatusNotFound, "board not found")
		return nil, false
	}

	isMember, err := h.db.IsTeamMember(r.Context(), board.TeamID, userID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return nil, false
	}
	if !isMember {
		h.Error(w, http.StatusForbidden, "not a member of this team")
		return nil, false
	}
	return board, true
}
