// Package realtime implements live board synchronization: a room-scoped
// broadcast hub, per-room presence tracking, and the websocket transport
// connecting browser sessions to both.
//
// Events are wake-up signals, not replicated state: receivers re-fetch the
// authoritative board over REST instead of trusting broadcast payloads.
// That trades one extra round-trip for skipping conflict resolution
// entirely; the database stays the single source of truth.
package realtime

import (
	"encoding/json"
	"time"
)

// Client-to-server event types.
const (
	EventJoinTeam     = "join-team"
	EventLeaveTeam    = "leave-team"
	EventTaskUpdate   = "task-update"
	EventColumnUpdate = "column-update"
	EventUserTyping   = "user-typing"
)

// Server-to-client event types.
const (
	EventTaskUpdated    = "task-updated"
	EventColumnsUpdated = "columns-updated"
	EventTypingUpdate   = "user-typing-update"
	EventUserJoined     = "user-joined"
	EventUserLeft       = "user-left"
	EventActiveUsers    = "active-users"
)

// Task update actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionMove   = "move"
)

// Event is the envelope exchanged over a realtime connection. Payload shape
// depends on Type. EmittedAt is advisory: each sender stamps its own clock,
// so timestamps are not comparable across clients.
type Event struct {
	Type      string          `json:"type"`
	RoomID    string          `json:"roomId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	EmittedAt time.Time       `json:"emittedAt"`
}

// NewEvent builds an envelope with the payload marshalled and the
// emission time stamped.
func NewEvent(eventType, roomID string, payload interface{}) (Event, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Event{}, err
		}
		raw = data
	}
	return Event{
		Type:      eventType,
		RoomID:    roomID,
		Payload:   raw,
		EmittedAt: time.Now().UTC(),
	}, nil
}

// JoinPayload is carried by join-team and leave-team events.
type JoinPayload struct {
	TeamID   string `json:"teamId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

// TaskUpdatePayload is carried by client task-update events.
type TaskUpdatePayload struct {
	TeamID string          `json:"teamId"`
	Task   json.RawMessage `json:"task"`
	Action string          `json:"action"`
}

// TaskUpdatedPayload is fanned out to peers after a task mutation.
type TaskUpdatedPayload struct {
	Task      json.RawMessage `json:"task"`
	Action    string          `json:"action"`
	Timestamp time.Time       `json:"timestamp"`
}

// ColumnUpdatePayload is carried by client column-update events.
type ColumnUpdatePayload struct {
	TeamID  string          `json:"teamId"`
	Columns json.RawMessage `json:"columns"`
}

// ColumnsUpdatedPayload is fanned out to peers after a layout change.
type ColumnsUpdatedPayload struct {
	Columns   json.RawMessage `json:"columns"`
	Timestamp time.Time       `json:"timestamp"`
}

// TypingPayload is carried by user-typing events, both directions.
type TypingPayload struct {
	TeamID   string `json:"teamId"`
	UserName string `json:"userName"`
	TaskID   string `json:"taskId"`
}

// PresencePayload is carried by user-joined and user-left events.
type PresencePayload struct {
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomKey returns the broadcast domain key for a team.
func RoomKey(teamID string) string {
	return "room:" + teamID
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
