package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saransh000/hackathonpractice/internal/config"
	"github.com/saransh000/hackathonpractice/internal/realtime"
	"github.com/saransh000/hackathonpractice/internal/store"
)

type testEnv struct {
	server *httptest.Server
	db     *store.SQLiteStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Port:        "0",
		Env:         "test",
		JWTSecret:   "test-secret",
		TokenTTL:    time.Hour,
		CORSOrigins: []string{"*"},
	}

	ctx, cancel := context.WithCancel(context.Background())

	db, err := store.NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	hub := realtime.NewHub(zerolog.Nop())
	go hub.Run(ctx)

	router := NewRouter(zerolog.Nop(), cfg, db, nil, hub)
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		cancel()
		hub.Wait()
		db.Close()
	})
	return &testEnv{server: server, db: db}
}

// makeAdmin flips the admin flag directly in the store; there is no
// bootstrap endpoint for the first admin.
func (e *testEnv) makeAdmin(t *testing.T, userID string) {
	t.Helper()
	id, err := uuid.Parse(userID)
	require.NoError(t, err)
	require.NoError(t, e.db.SetUserAdmin(context.Background(), id, true))
}

// request performs a JSON request and decodes the response into out when
// out is non-nil.
func (e *testEnv) request(t *testing.T, method, path, token string, body, out interface{}) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (e *testEnv) signup(t *testing.T, name, email string) (token, userID string) {
	t.Helper()

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	status := e.request(t, "POST", "/api/auth/signup", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "hunter2hunter2",
	}, &resp)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User.ID
}

func TestSignupAndLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	token, _ := env.signup(t, "Saransh", "saransh@example.com")

	var me struct {
		Email string `json:"email"`
	}
	status := env.request(t, "GET", "/api/auth/me", token, nil, &me)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "saransh@example.com", me.Email)

	// Duplicate signup is refused
	status = env.request(t, "POST", "/api/auth/signup", "", map[string]string{
		"name":     "Saransh",
		"email":    "saransh@example.com",
		"password": "hunter2hunter2",
	}, nil)
	assert.Equal(t, http.StatusConflict, status)

	var login struct {
		Token string `json:"token"`
	}
	status = env.request(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "saransh@example.com",
		"password": "hunter2hunter2",
	}, &login)
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, login.Token)

	status = env.request(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "saransh@example.com",
		"password": "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthIsRequired(t *testing.T) {
	env := newTestEnv(t)

	status := env.request(t, "GET", "/api/teams", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status = env.request(t, "GET", "/api/teams", "not-a-token", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestTeamAndBoardLifecycle(t *testing.T) {
	env := newTestEnv(t)

	ownerToken, _ := env.signup(t, "Owner", "owner@example.com")
	memberToken, memberID := env.signup(t, "Member", "member@example.com")

	// Create a team; its board comes with the default columns
	var team struct {
		ID         string `json:"id"`
		InviteCode string `json:"invite_code"`
	}
	status := env.request(t, "POST", "/api/teams", ownerToken, map[string]string{
		"name": "Night Shift",
	}, &team)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, team.InviteCode)

	var board struct {
		ID      string `json:"id"`
		Columns []struct {
			ID string `json:"id"`
		} `json:"columns"`
		Tasks []json.RawMessage `json:"tasks"`
	}
	status = env.request(t, "GET", "/api/teams/"+team.ID+"/board", ownerToken, nil, &board)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, board.Columns, 3)
	assert.Equal(t, "todo", board.Columns[0].ID)
	assert.Empty(t, board.Tasks)

	// Non-members cannot see the team until they join by invite code
	status = env.request(t, "GET", "/api/teams/"+team.ID, memberToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = env.request(t, "POST", "/api/teams/join", memberToken, map[string]string{
		"invite_code": team.InviteCode,
	}, nil)
	require.Equal(t, http.StatusOK, status)

	var teamDetail struct {
		Members []struct {
			UserID string `json:"user_id"`
		} `json:"members"`
	}
	status = env.request(t, "GET", "/api/teams/"+team.ID, memberToken, nil, &teamDetail)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, teamDetail.Members, 2)

	// Tasks: create, move across columns, delete
	var task struct {
		ID     string `json:"id"`
		Column string `json:"column"`
	}
	status = env.request(t, "POST", "/api/tasks", memberToken, map[string]interface{}{
		"board_id":    board.ID,
		"title":       "Wire up the demo",
		"priority":    "high",
		"assignee_id": memberID,
	}, &task)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "todo", task.Column)

	status = env.request(t, "PUT", "/api/tasks/"+task.ID+"/move", ownerToken, map[string]interface{}{
		"column":   "in-progress",
		"position": 0,
	}, &task)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "in-progress", task.Column)

	status = env.request(t, "GET", "/api/teams/"+team.ID+"/board", memberToken, nil, &board)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, board.Tasks, 1)

	status = env.request(t, "DELETE", "/api/tasks/"+task.ID, ownerToken, nil, nil)
	require.Equal(t, http.StatusOK, status)

	status = env.request(t, "GET", "/api/teams/"+team.ID+"/board", ownerToken, nil, &board)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, board.Tasks)
}

func TestBoardColumnUpdate(t *testing.T) {
	env := newTestEnv(t)

	token, _ := env.signup(t, "Owner", "owner@example.com")

	var team struct {
		ID string `json:"id"`
	}
	status := env.request(t, "POST", "/api/teams", token, map[string]string{"name": "Demo"}, &team)
	require.Equal(t, http.StatusCreated, status)

	columns := []map[string]interface{}{
		{"id": "backlog", "title": "Backlog", "position": 0},
		{"id": "done", "title": "Done", "position": 1},
	}
	status = env.request(t, "PUT", fmt.Sprintf("/api/teams/%s/board/columns", team.ID), token,
		map[string]interface{}{"columns": columns}, nil)
	require.Equal(t, http.StatusOK, status)

	var board struct {
		Columns []struct {
			ID string `json:"id"`
		} `json:"columns"`
	}
	status = env.request(t, "GET", "/api/teams/"+team.ID+"/board", token, nil, &board)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, board.Columns, 2)
	assert.Equal(t, "backlog", board.Columns[0].ID)

	// An empty layout is rejected
	status = env.request(t, "PUT", fmt.Sprintf("/api/teams/%s/board/columns", team.ID), token,
		map[string]interface{}{"columns": []map[string]interface{}{}}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminStatsRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	token, _ := env.signup(t, "Pleb", "pleb@example.com")
	status := env.request(t, "GET", "/api/admin/stats", token, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAdminUserManagement(t *testing.T) {
	env := newTestEnv(t)

	adminToken, adminID := env.signup(t, "Admin", "admin@example.com")
	_, plebID := env.signup(t, "Pleb", "pleb@example.com")
	env.makeAdmin(t, adminID)

	var list struct {
		Users []struct {
			ID      string `json:"id"`
			IsAdmin bool   `json:"is_admin"`
		} `json:"users"`
		Count int `json:"count"`
	}
	status := env.request(t, "GET", "/api/admin/users", adminToken, nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, list.Count)

	// Promote, then demote the other user
	var updated struct {
		ID      string `json:"id"`
		IsAdmin bool   `json:"is_admin"`
	}
	status = env.request(t, "PUT", "/api/admin/users/"+plebID+"/role", adminToken,
		map[string]bool{"is_admin": true}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, updated.IsAdmin)

	status = env.request(t, "PUT", "/api/admin/users/"+plebID+"/role", adminToken,
		map[string]bool{"is_admin": false}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, updated.IsAdmin)

	// Self-demotion and self-deletion are refused
	status = env.request(t, "PUT", "/api/admin/users/"+adminID+"/role", adminToken,
		map[string]bool{"is_admin": false}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = env.request(t, "DELETE", "/api/admin/users/"+adminID, adminToken, nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = env.request(t, "DELETE", "/api/admin/users/"+plebID, adminToken, nil, nil)
	require.Equal(t, http.StatusNoContent, status)

	status = env.request(t, "GET", "/api/admin/users", adminToken, nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, list.Count)

	// Deleting an unknown user is a 404
	status = env.request(t, "DELETE", "/api/admin/users/"+plebID, adminToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdminLoginHistory(t *testing.T) {
	env := newTestEnv(t)

	adminToken, adminID := env.signup(t, "Admin", "admin@example.com")
	env.makeAdmin(t, adminID)
	env.signup(t, "Pleb", "pleb@example.com")

	// Signup issues a token without a login; history starts empty
	var history struct {
		Sessions []struct {
			UserID string `json:"user_id"`
			Email  string `json:"email"`
		} `json:"sessions"`
		Count int `json:"count"`
	}
	status := env.request(t, "GET", "/api/admin/login-history", adminToken, nil, &history)
	require.Equal(t, http.StatusOK, status)
	assert.Zero(t, history.Count)

	for i := 0; i < 2; i++ {
		status = env.request(t, "POST", "/api/auth/login", "", map[string]string{
			"email":    "pleb@example.com",
			"password": "hunter2hunter2",
		}, nil)
		require.Equal(t, http.StatusOK, status)
	}
	status = env.request(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "hunter2hunter2",
	}, nil)
	require.Equal(t, http.StatusOK, status)

	// Failed logins leave no record
	status = env.request(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "pleb@example.com",
		"password": "wrong-password",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status = env.request(t, "GET", "/api/admin/login-history", adminToken, nil, &history)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 3, history.Count)
	assert.Equal(t, "admin@example.com", history.Sessions[0].Email)

	var stats struct {
		TotalLogins int64 `json:"total_logins"`
		LoginsToday int64 `json:"logins_today"`
		UniqueUsers int64 `json:"unique_users"`
	}
	status = env.request(t, "GET", "/api/admin/login-stats", adminToken, nil, &stats)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, stats.TotalLogins)
	assert.EqualValues(t, 3, stats.LoginsToday)
	assert.EqualValues(t, 2, stats.UniqueUsers)

	// The limit parameter is validated
	status = env.request(t, "GET", "/api/admin/login-history?limit=0", adminToken, nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var health struct {
		Status string `json:"status"`
	}
	status := env.request(t, "GET", "/health", "", nil, &health)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", health.Status)
}
