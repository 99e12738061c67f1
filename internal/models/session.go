package models

import (
	"time"

	"github.com/google/uuid"
)

// LoginSession is one recorded login. Sessions are append-only: tokens
// are stateless, so there is no logout event to close them with.
type LoginSession struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	Email     string    `json:"email,omitempty"`
	LoginTime time.Time `json:"login_time"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// LoginStats aggregates the login history for the admin dashboard.
type LoginStats struct {
	TotalLogins int64 `json:"total_logins"`
	LoginsToday int64 `json:"logins_today"`
	UniqueUsers int64 `json:"unique_users"`
}
