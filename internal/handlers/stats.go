package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/saransh000/hackathonpractice/internal/api/middleware"
)

// StatsResponse represents the response from the admin stats endpoint.
type StatsResponse struct {
	TotalUsers    int64            `json:"total_users"`
	TotalTeams    int64            `json:"total_teams"`
	TotalTasks    int64            `json:"total_tasks"`
	TasksByStatus map[string]int64 `json:"tasks_by_status"`
	ActiveRooms   int              `json:"active_rooms"`
	ActiveClients int              `json:"active_clients"`
	GeneratedAt   string           `json:"generated_at"`
}

// Stats returns platform statistics for the admin dashboard.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalUsers, err := h.db.CountUsers(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count users")
		return
	}

	totalTeams, err := h.db.CountTeams(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count teams")
		return
	}

	totalTasks, err := h.db.CountTasks(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count tasks")
		return
	}

	byStatus, err := h.db.CountTasksByStatus(ctx)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to count tasks by status")
		return
	}

	rooms, clients := h.hub.Stats()

	h.JSON(w, http.StatusOK, StatsResponse{
		TotalUsers:    totalUsers,
		TotalTeams:    totalTeams,
		TotalTasks:    totalTasks,
		TasksByStatus: byStatus,
		ActiveRooms:   rooms,
		ActiveClients: clients,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	})
}

// ActiveUsersResponse lists who is currently online in a team's room.
type ActiveUsersResponse struct {
	TeamID string       `json:"team_id"`
	Users  []ActiveUser `json:"users"`
	Count  int          `json:"count"`
}

// ActiveUser is one online participant.
type ActiveUser struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Online   string `json:"online"`
}

// ActiveUsers returns the current presence of a team's board room.
func (h *Handler) ActiveUsers(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	team, ok := h.loadTeamForMember(w, r, user.ID)
	if !ok {
		return
	}

	participants := h.hub.Participants(team.ID.String())
	users := make([]ActiveUser, 0, len(participants))
	for _, p := range participants {
		users = append(users, ActiveUser{
			UserID:   p.UserID,
			UserName: p.UserName,
			Online:   formatTimeAgo(p.JoinedAt),
		})
	}

	h.JSON(w, http.StatusOK, ActiveUsersResponse{
		TeamID: team.ID.String(),
		Users:  users,
		Count:  len(users),
	})
}

// formatTimeAgo renders a timestamp as a human-friendly relative time.
func formatTimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
