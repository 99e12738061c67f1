package models

// DirectMessage represents a direct message between two users.
// Messages live in Redis with a TTL; they are not part of the board state.
type DirectMessage struct {
	ID        string `json:"id"` // ULID
	FromID    string `json:"from"`
	ToID      string `json:"to"`
	Body      string `json:"body"`
	Timestamp int64  `json:"ts"` // Unix ms
}
