package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/saransh000/hackathonpractice/internal/api/middleware"
	"github.com/saransh000/hackathonpractice/internal/models"
)

// CreateTeamRequest represents the team creation request.
type CreateTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TeamResponse represents a team in API responses.
type TeamResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	OwnerID     string              `json:"owner_id"`
	InviteCode  string              `json:"invite_code,omitempty"`
	Members     []models.TeamMember `json:"members,omitempty"`
}

func teamResponse(team *models.Team, members []models.TeamMember, includeInvite bool) TeamResponse {
	resp := TeamResponse{
		ID:          team.ID.String(),
		Name:        team.Name,
		Description: team.Description,
		OwnerID:     team.OwnerID.String(),
		Members:     members,
	}
	if includeInvite {
		resp.InviteCode = team.InviteCode
	}
	return resp
}

// CreateTeam handles team creation. The team's board is created alongside
// it with the default column layout.
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Name = sanitizeName(req.Name)
	if req.Name == "" {
		h.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Name) > 50 {
		h.Error(w, http.StatusBadRequest, "name cannot exceed 50 characters")
		return
	}
	if len(req.Description) > 200 {
		h.Error(w, http.StatusBadRequest, "description cannot exceed 200 characters")
		return
	}

	team, err := h.db.CreateTeam(r.Context(), req.Name, strings.TrimSpace(req.Description), user.ID, generateInviteCode())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create team")
		return
	}

	if _, err := h.db.CreateBoard(r.Context(), team.ID, team.Name+" Board", models.DefaultColumns()); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create board")
		return
	}

	h.JSON(w, http.StatusCreated, teamResponse(team, nil, true))
}

// ListTeams returns the teams the authenticated user belongs to.
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	teams, err := h.db.ListTeamsForUser(r.Context(), user.ID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	responses := make([]TeamResponse, 0, len(teams))
	for i := range teams {
		responses = append(responses, teamResponse(&teams[i], nil, teams[i].OwnerID == user.ID))
	}
	h.JSON(w, http.StatusOK, map[string]interface{}{"teams": responses})
}

// GetTeam returns one team with its member list. Only members may look.
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	team, ok := h.loadTeamForMember(w, r, user.ID)
	if !ok {
		return
	}

	members, err := h.db.ListTeamMembers(r.Context(), team.ID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.JSON(w, http.StatusOK, teamResponse(team, members, team.OwnerID == user.ID))
}

// JoinTeamRequest represents the join-by-invite request.
type JoinTeamRequest struct {
	InviteCode string `json:"invite_code"`
}

// JoinTeam adds the authenticated user to the team matching an invite code.
func (h *Handler) JoinTeam(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req JoinTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	code := strings.TrimSpace(req.InviteCode)
	if code == "" {
		h.Error(w, http.StatusBadRequest, "invite_code is required")
		return
	}

	team, err := h.db.GetTeamByInviteCode(r.Context(), code)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if team == nil {
		h.Error(w, http.StatusNotFound, "invalid invite code")
		return
	}

	if err := h.db.AddTeamMember(r.Context(), team.ID, user.ID); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to join team")
		return
	}

	h.JSON(w, http.StatusOK, teamResponse(team, nil, false))
}

// LeaveTeam removes the authenticated user from a team. The owner cannot
// leave their own team.
func (h *Handler) LeaveTeam(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	team, ok := h.loadTeamForMember(w, r, user.ID)
	if !ok {
		return
	}

	if team.OwnerID == user.ID {
		h.Error(w, http.StatusBadRequest, "owner cannot leave their own team")
		return
	}

	if err := h.db.RemoveTeamMember(r.Context(), team.ID, user.ID); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to leave team")
		return
	}

	h.JSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// loadTeamForMember parses the {id} URL param, loads the team and checks
// the user is a member. On failure it writes the error response and
// returns ok=false.
func (h *Handler) loadTeamForMember(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*models.Team, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid team ID format")
		return nil, false
	}

	team, err := h.db.GetTeam(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return nil, false
	}
	if team == nil {
		h.Error(w, http.StatusNotFound, "team not found")
		return nil, false
	}

	isMember, err := h.db.IsTeamMember(r.Context(), team.ID, userID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return nil, false
	}
	if !isMember {
		h.Error(w, http.StatusForbidden, "not a member of this team")
		return nil, false
	}

	return team, true
}

// generateInviteCode returns a short random code for team invitations.
func generateInviteCode() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform's entropy source is broken
		panic(err)
	}
	return strings.ToUpper(hex.EncodeToString(b))
}
