package hackboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// SyncState describes the realtime connection lifecycle.
type SyncState int

const (
	// StateDisconnected means no websocket is open.
	StateDisconnected SyncState = iota
	// StateConnected means the websocket is open but no room is joined.
	StateConnected
	// StateJoined means the client is receiving a team's board events.
	StateJoined
)

const (
	reconnectBase = 250 * time.Millisecond
	reconnectMax  = 5 * time.Second
)

// ErrNotConnected is returned when an emit is attempted without an open
// connection.
var ErrNotConnected = errors.New("hackboard: not connected")

// syncEvent mirrors the wire envelope of the realtime protocol.
type syncEvent struct {
	Type      string          `json:"type"`
	RoomID    string          `json:"roomId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	EmittedAt time.Time       `json:"emittedAt"`
}

// Sync is the realtime adapter for a board session. It keeps a single
// websocket to the server, remembers the last joined team and silently
// re-joins it after a reconnect.
//
// Handlers are single-slot: registering a handler for an event type
// replaces the previous one rather than stacking alongside it, so a
// component re-rendering and re-registering does not cause duplicate
// invocations.
type Sync struct {
	client *Client
	wsURL  string

	mu     sync.Mutex
	ws     *websocket.Conn
	state  SyncState
	teamID string
	closed bool

	onTaskUpdated    func(task json.RawMessage, action string)
	onColumnsUpdated func(columns json.RawMessage)
	onTyping         func(userName, taskID string)
	onUserJoined     func(userID, userName string)
	onUserLeft       func(userID, userName string)
	onActiveUsers    func(userIDs []string)
}

// NewSync creates a realtime adapter bound to an API client. The client
// provides the identity announced when joining rooms.
func NewSync(c *Client) *Sync {
	wsURL := strings.Replace(c.BaseURL, "http", "ws", 1) + "/ws"
	return &Sync{client: c, wsURL: wsURL}
}

// State reports the current connection state.
func (s *Sync) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect opens the websocket and starts the read loop. It is a no-op
// when already connected.
func (s *Sync) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ws != nil {
		return nil
	}
	s.closed = false

	ws, _, err := websocket.DefaultDialer.Dial(s.wsURL, nil)
	if err != nil {
		return fmt.Errorf("hackboard: dial %s: %w", s.wsURL, err)
	}

	s.ws = ws
	s.state = StateConnected
	go s.readLoop(ws)
	return nil
}

// Close tears the connection down and disables reconnection.
func (s *Sync) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.state = StateDisconnected
	if s.ws != nil {
		err := s.ws.Close()
		s.ws = nil
		return err
	}
	return nil
}

// JoinTeam enters a team's board room. The team is remembered and
// re-joined automatically after a reconnect.
func (s *Sync) JoinTeam(teamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeEventLocked(syncEvent{Type: "join-team"}, map[string]string{
		"teamId":   teamID,
		"userId":   s.client.UserID,
		"userName": s.client.UserName,
	}); err != nil {
		return err
	}

	s.teamID = teamID
	s.state = StateJoined
	return nil
}

// LeaveTeam exits the current board room and forgets it.
func (s *Sync) LeaveTeam() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	teamID := s.teamID
	s.teamID = ""
	if s.ws != nil {
		s.state = StateConnected
	}
	if teamID == "" {
		return nil
	}

	return s.writeEventLocked(syncEvent{Type: "leave-team"}, map[string]string{
		"teamId":   teamID,
		"userId":   s.client.UserID,
		"userName": s.client.UserName,
	})
}

// EmitTaskUpdate signals peers that a task changed. The task payload is
// advisory; receivers re-fetch the board over REST.
func (s *Sync) EmitTaskUpdate(task interface{}, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.teamID == "" {
		return ErrNotConnected
	}
	return s.writeEventLocked(syncEvent{Type: "task-update"}, map[string]interface{}{
		"teamId": s.teamID,
		"task":   task,
		"action": action,
	})
}

// EmitColumnUpdate signals peers that the column layout changed.
func (s *Sync) EmitColumnUpdate(columns interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.teamID == "" {
		return ErrNotConnected
	}
	return s.writeEventLocked(syncEvent{Type: "column-update"}, map[string]interface{}{
		"teamId":  s.teamID,
		"columns": columns,
	})
}

// EmitTyping signals peers that the user is editing a task.
func (s *Sync) EmitTyping(taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.teamID == "" {
		return ErrNotConnected
	}
	return s.writeEventLocked(syncEvent{Type: "user-typing"}, map[string]interface{}{
		"teamId":   s.teamID,
		"userName": s.client.UserName,
		"taskId":   taskID,
	})
}

// OnTaskUpdated registers the handler for peer task mutations,
// replacing any previous handler.
func (s *Sync) OnTaskUpdated(fn func(task json.RawMessage, action string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTaskUpdated = fn
}

// OnColumnsUpdated registers the handler for peer layout changes,
// replacing any previous handler.
func (s *Sync) OnColumnsUpdated(fn func(columns json.RawMessage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onColumnsUpdated = fn
}

// OnTyping registers the handler for peer typing indicators, replacing
// any previous handler.
func (s *Sync) OnTyping(fn func(userName, taskID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTyping = fn
}

// OnUserJoined registers the handler for peers entering the room,
// replacing any previous handler.
func (s *Sync) OnUserJoined(fn func(userID, userName string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUserJoined = fn
}

// OnUserLeft registers the handler for peers leaving the room,
// replacing any previous handler.
func (s *Sync) OnUserLeft(fn func(userID, userName string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUserLeft = fn
}

// OnActiveUsers registers the handler for the roster delivered on join,
// replacing any previous handler.
func (s *Sync) OnActiveUsers(fn func(userIDs []string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onActiveUsers = fn
}

// writeEventLocked marshals and sends one event. Callers hold s.mu.
func (s *Sync) writeEventLocked(ev syncEvent, payload interface{}) error {
	if s.ws == nil {
		return ErrNotConnected
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	ev.Payload = raw
	ev.EmittedAt = time.Now().UTC()

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.ws.WriteMessage(websocket.TextMessage, data)
}

// readLoop consumes server events until the connection drops, then
// hands off to the reconnect loop unless the adapter was closed.
func (s *Sync) readLoop(ws *websocket.Conn) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var ev syncEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		s.handleEvent(ev)
	}

	s.mu.Lock()
	if s.closed || s.ws != ws {
		s.mu.Unlock()
		return
	}
	s.ws = nil
	s.state = StateDisconnected
	s.mu.Unlock()

	ws.Close()
	go s.reconnect()
}

// reconnect re-dials with exponential backoff and silently re-joins the
// last-known team.
func (s *Sync) reconnect() {
	backoff := reconnectBase
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		if err := s.Connect(); err == nil {
			break
		}

		time.Sleep(backoff)
		backoff *= 2
		if backoff > reconnectMax {
			backoff = reconnectMax
		}
	}

	s.mu.Lock()
	teamID := s.teamID
	s.mu.Unlock()
	if teamID != "" {
		s.JoinTeam(teamID)
	}
}

// handleEvent dispatches one server event to its registered handler.
func (s *Sync) handleEvent(ev syncEvent) {
	s.mu.Lock()
	onTaskUpdated := s.onTaskUpdated
	onColumnsUpdated := s.onColumnsUpdated
	onTyping := s.onTyping
	onUserJoined := s.onUserJoined
	onUserLeft := s.onUserLeft
	onActiveUsers := s.onActiveUsers
	s.mu.Unlock()

	switch ev.Type {
	case "task-updated":
		if onTaskUpdated == nil {
			return
		}
		var p struct {
			Task   json.RawMessage `json:"task"`
			Action string          `json:"action"`
		}
		if json.Unmarshal(ev.Payload, &p) == nil {
			onTaskUpdated(p.Task, p.Action)
		}

	case "columns-updated":
		if onColumnsUpdated == nil {
			return
		}
		var p struct {
			Columns json.RawMessage `json:"columns"`
		}
		if json.Unmarshal(ev.Payload, &p) == nil {
			onColumnsUpdated(p.Columns)
		}

	case "user-typing-update":
		if onTyping == nil {
			return
		}
		var p struct {
			UserName string `json:"userName"`
			TaskID   string `json:"taskId"`
		}
		if json.Unmarshal(ev.Payload, &p) == nil {
			onTyping(p.UserName, p.TaskID)
		}

	case "user-joined":
		if onUserJoined == nil {
			return
		}
		var p struct {
			UserID   string `json:"userId"`
			UserName string `json:"userName"`
		}
		if json.Unmarshal(ev.Payload, &p) == nil {
			onUserJoined(p.UserID, p.UserName)
		}

	case "user-left":
		if onUserLeft == nil {
			return
		}
		var p struct {
			UserID   string `json:"userId"`
			UserName string `json:"userName"`
		}
		if json.Unmarshal(ev.Payload, &p) == nil {
			onUserLeft(p.UserID, p.UserName)
		}

	case "active-users":
		if onActiveUsers == nil {
			return
		}
		var userIDs []string
		if json.Unmarshal(ev.Payload, &userIDs) == nil {
			onActiveUsers(userIDs)
		}
	}
}
