package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/saransh000/hackathonpractice/internal/models"
)

// DataStore defines the interface for persistent storage of users, teams,
// boards and tasks. Both PostgresStore and SQLiteStore implement this
// interface; SQLite is the zero-setup development fallback.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// User operations
	CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SetUserAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)

	// Team operations
	CreateTeam(ctx context.Context, name, description string, ownerID uuid.UUID, inviteCode string) (*models.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetTeamByInviteCode(ctx context.Context, code string) (*models.Team, error)
	ListTeamsForUser(ctx context.Context, userID uuid.UUID) ([]models.Team, error)
	AddTeamMember(ctx context.Context, teamID, userID uuid.UUID) error
	RemoveTeamMember(ctx context.Context, teamID, userID uuid.UUID) error
	ListTeamMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error)
	IsTeamMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	CountTeams(ctx context.Context) (int64, error)

	// Board operations
	CreateBoard(ctx context.Context, teamID uuid.UUID, title string, columns []models.Column) (*models.Board, error)
	GetBoard(ctx context.Context, id uuid.UUID) (*models.Board, error)
	GetBoardForTeam(ctx context.Context, teamID uuid.UUID) (*models.Board, error)
	UpdateBoardColumns(ctx context.Context, boardID uuid.UUID, columns []models.Column) error

	// Task operations
	CreateTask(ctx context.Context, task *models.Task) (*models.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListTasksForBoard(ctx context.Context, boardID uuid.UUID) ([]models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id uuid.UUID) error
	MoveTask(ctx context.Context, id uuid.UUID, column string, position int) error
	CountTasks(ctx context.Context) (int64, error)
	CountTasksByStatus(ctx context.Context) (map[string]int64, error)

	// Login tracking
	RecordLogin(ctx context.Context, userID uuid.UUID, ipAddress, userAgent string) error
	ListLoginSessions(ctx context.Context, limit int) ([]models.LoginSession, error)
	GetLoginStats(ctx context.Context) (*models.LoginStats, error)
}
