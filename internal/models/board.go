package models

import (
	"time"

	"github.com/google/uuid"
)

// Column is one lane of a Kanban board.
type Column struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Color    string `json:"color,omitempty"`
	Position int    `json:"position"`
}

// Board represents a team's Kanban board. Each team owns exactly one.
type Board struct {
	ID        uuid.UUID `json:"id"`
	TeamID    uuid.UUID `json:"team_id"`
	Title     string    `json:"title"`
	Columns   []Column  `json:"columns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultColumns returns the column layout a new board starts with.
func DefaultColumns() []Column {
	return []Column{
		{ID: "todo", Title: "To Do", Color: "#ef4444", Position: 0},
		{ID: "in-progress", Title: "In Progress", Color: "#f59e0b", Position: 1},
		{ID: "completed", Title: "Completed", Color: "#10b981", Position: 2},
	}
}
