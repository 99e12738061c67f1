// Package hackboard provides a client for the hackboard collaborative
// task board API, including the realtime board synchronization layer.
package hackboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a hackboard API client.
type Client struct {
	BaseURL    string
	Token      string
	UserID     string
	UserName   string
	HTTPClient *http.Client
}

// NewClient creates a new hackboard client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// doRequest performs an HTTP request, attaching the bearer token when
// the client has one.
func (c *Client) doRequest(method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return nil, fmt.Errorf("hackboard error %d: %s", resp.StatusCode, errResp.Error)
	}

	return respBody, nil
}

// User represents an account.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// AuthResponse is the response from signup and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Signup creates an account and stores the returned token on the client.
func (c *Client) Signup(name, email, password string) (*AuthResponse, error) {
	body, _ := json.Marshal(map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})

	respBody, err := c.doRequest("POST", "/api/auth/signup", body)
	if err != nil {
		return nil, err
	}

	var resp AuthResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}

	c.Token = resp.Token
	c.UserID = resp.User.ID
	c.UserName = resp.User.Name
	return &resp, nil
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(email, password string) (*AuthResponse, error) {
	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})

	respBody, err := c.doRequest("POST", "/api/auth/login", body)
	if err != nil {
		return nil, err
	}

	var resp AuthResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}

	c.Token = resp.Token
	c.UserID = resp.User.ID
	c.UserName = resp.User.Name
	return &resp, nil
}

// Team represents a team.
type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id"`
	InviteCode  string `json:"invite_code,omitempty"`
}

// TeamsResponse is the response from listing teams.
type TeamsResponse struct {
	Teams []Team `json:"teams"`
}

// CreateTeam creates a new team.
func (c *Client) CreateTeam(name, description string) (*Team, error) {
	body, _ := json.Marshal(map[string]string{
		"name":        name,
		"description": description,
	})

	respBody, err := c.doRequest("POST", "/api/teams", body)
	if err != nil {
		return nil, err
	}

	var team Team
	if err := json.Unmarshal(respBody, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// ListTeams lists the teams the user belongs to.
func (c *Client) ListTeams() (*TeamsResponse, error) {
	respBody, err := c.doRequest("GET", "/api/teams", nil)
	if err != nil {
		return nil, err
	}

	var resp TeamsResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// JoinTeam joins a team by invite code.
func (c *Client) JoinTeam(inviteCode string) (*Team, error) {
	body, _ := json.Marshal(map[string]string{"invite_code": inviteCode})

	respBody, err := c.doRequest("POST", "/api/teams/join", body)
	if err != nil {
		return nil, err
	}

	var team Team
	if err := json.Unmarshal(respBody, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// Column represents a board column.
type Column struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Color    string `json:"color,omitempty"`
	Position int    `json:"position"`
}

// Task represents a task on a board.
type Task struct {
	ID          string     `json:"id"`
	BoardID     string     `json:"board_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	Column      string     `json:"column"`
	Position    int        `json:"position"`
}

// BoardSnapshot is the authoritative board state. Clients re-fetch it
// whenever a board-changed signal arrives on the realtime connection.
type BoardSnapshot struct {
	ID      string   `json:"id"`
	TeamID  string   `json:"team_id"`
	Title   string   `json:"title"`
	Columns []Column `json:"columns"`
	Tasks   []Task   `json:"tasks"`
}

// GetBoard fetches a team's board with its tasks.
func (c *Client) GetBoard(teamID string) (*BoardSnapshot, error) {
	respBody, err := c.doRequest("GET", "/api/teams/"+teamID+"/board", nil)
	if err != nil {
		return nil, err
	}

	var board BoardSnapshot
	if err := json.Unmarshal(respBody, &board); err != nil {
		return nil, err
	}
	return &board, nil
}
