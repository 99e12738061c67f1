package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/saransh000/hackathonpractice/internal/models"
)

// SQLiteStore handles SQLite database operations. It exists so development
// and tests need no external database; IDs and timestamps are generated in
// Go rather than by the engine.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/hackboard.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/hackboard.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		is_admin INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS teams (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		invite_code TEXT UNIQUE NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS team_members (
		team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		joined_at DATETIME NOT NULL,
		PRIMARY KEY (team_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS boards (
		id TEXT PRIMARY KEY,
		team_id TEXT UNIQUE NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		columns TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		board_id TEXT NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		priority TEXT NOT NULL DEFAULT 'medium',
		due_date DATETIME,
		assignee_id TEXT REFERENCES users(id) ON DELETE SET NULL,
		column_id TEXT NOT NULL DEFAULT 'todo',
		position INTEGER NOT NULL DEFAULT 0,
		created_by TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS login_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		login_time DATETIME NOT NULL,
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_teams_invite_code ON teams(invite_code);
	CREATE INDEX IF NOT EXISTS idx_team_members_user ON team_members(user_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_board_column ON tasks(board_id, column_id, position);
	CREATE INDEX IF NOT EXISTS idx_login_sessions_time ON login_sessions(login_time DESC);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateUser creates a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
	`, user.ID.String(), user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var id string
	err := row.Scan(&id, &user.Name, &user.Email, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	user.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, is_admin, created_at, updated_at
		FROM users WHERE id = ?
	`, id.String())
	return s.scanUser(row)
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, is_admin, created_at, updated_at
		FROM users WHERE email = ?
	`, email)
	return s.scanUser(row)
}

// CountUsers returns the total number of registered users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// ListUsers returns all registered users, newest first.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, password_hash, is_admin, created_at, updated_at
		FROM users ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		var id string
		if err := rows.Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		if u.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetUserAdmin grants or revokes admin rights for a user.
func (s *SQLiteStore) SetUserAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET is_admin = ?, updated_at = ? WHERE id = ?
	`, isAdmin, time.Now().UTC(), id.String())
	return err
}

// DeleteUser removes a user. Owned teams, created tasks, memberships and
// login records cascade away with them; assignments on others' tasks clear.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String())
	return err
}

// CreateTeam creates a new team and adds the owner as its first member.
func (s *SQLiteStore) CreateTeam(ctx context.Context, name, description string, ownerID uuid.UUID, inviteCode string) (*models.Team, error) {
	now := time.Now().UTC()
	team := &models.Team{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		InviteCode:  inviteCode,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (id, name, description, owner_id, invite_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, team.ID.String(), team.Name, team.Description, team.OwnerID.String(), team.InviteCode, team.CreatedAt, team.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := s.AddTeamMember(ctx, team.ID, ownerID); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *SQLiteStore) scanTeam(row *sql.Row) (*models.Team, error) {
	team := &models.Team{}
	var id, ownerID string
	err := row.Scan(&id, &team.Name, &team.Description, &ownerID, &team.InviteCode, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if team.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if team.OwnerID, err = uuid.Parse(ownerID); err != nil {
		return nil, err
	}
	return team, nil
}

// GetTeam retrieves a team by ID.
func (s *SQLiteStore) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, owner_id, invite_code, created_at, updated_at
		FROM teams WHERE id = ?
	`, id.String())
	return s.scanTeam(row)
}

// GetTeamByInviteCode retrieves a team by its invite code.
func (s *SQLiteStore) GetTeamByInviteCode(ctx context.Context, code string) (*models.Team, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, owner_id, invite_code, created_at, updated_at
		FROM teams WHERE invite_code = ?
	`, code)
	return s.scanTeam(row)
}

// ListTeamsForUser retrieves all teams the user is a member of.
func (s *SQLiteStore) ListTeamsForUser(ctx context.Context, userID uuid.UUID) ([]models.Team, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.description, t.owner_id, t.invite_code, t.created_at, t.updated_at
		FROM teams t
		JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = ?
		ORDER BY t.created_at
	`, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var team models.Team
		var id, ownerID string
		err := rows.Scan(&id, &team.Name, &team.Description, &ownerID, &team.InviteCode, &team.CreatedAt, &team.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if team.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if team.OwnerID, err = uuid.Parse(ownerID); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// AddTeamMember adds a user to a team. Adding an existing member is a no-op.
func (s *SQLiteStore) AddTeamMember(ctx context.Context, teamID, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO team_members (team_id, user_id, joined_at)
		VALUES (?, ?, ?)
	`, teamID.String(), userID.String(), time.Now().UTC())
	return err
}

// RemoveTeamMember removes a user from a team.
func (s *SQLiteStore) RemoveTeamMember(ctx context.Context, teamID, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM team_members WHERE team_id = ? AND user_id = ?
	`, teamID.String(), userID.String())
	return err
}

// ListTeamMembers retrieves the members of a team ordered by join time.
func (s *SQLiteStore) ListTeamMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, m.joined_at
		FROM team_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = ?
		ORDER BY m.joined_at
	`, teamID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var member models.TeamMember
		var id string
		if err := rows.Scan(&id, &member.Name, &member.Email, &member.JoinedAt); err != nil {
			return nil, err
		}
		if member.UserID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

// IsTeamMember reports whether the user belongs to the team.
func (s *SQLiteStore) IsTeamMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM team_members WHERE team_id = ? AND user_id = ?)
	`, teamID.String(), userID.String()).Scan(&exists)
	return exists == 1, err
}

// CountTeams returns the total number of teams.
func (s *SQLiteStore) CountTeams(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams`).Scan(&count)
	return count, err
}

// CreateBoard creates a board for a team.
func (s *SQLiteStore) CreateBoard(ctx context.Context, teamID uuid.UUID, title string, columns []models.Column) (*models.Board, error) {
	columnsJSON, err := encodeColumns(columns)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	board := &models.Board{
		ID:        uuid.New(),
		TeamID:    teamID,
		Title:     title,
		Columns:   columns,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO boards (id, team_id, title, columns, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, board.ID.String(), teamID.String(), title, columnsJSON, board.CreatedAt, board.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return board, nil
}

// GetBoard retrieves a board by ID.
func (s *SQLiteStore) GetBoard(ctx context.Context, id uuid.UUID) (*models.Board, error) {
	return s.scanBoard(s.db.QueryRowContext(ctx, `
		SELECT id, team_id, title, columns, created_at, updated_at
		FROM boards WHERE id = ?
	`, id.String()))
}

// GetBoardForTeam retrieves a team's board.
func (s *SQLiteStore) GetBoardForTeam(ctx context.Context, teamID uuid.UUID) (*models.Board, error) {
	return s.scanBoard(s.db.QueryRowContext(ctx, `
		SELECT id, team_id, title, columns, created_at, updated_at
		FROM boards WHERE team_id = ?
	`, teamID.String()))
}

func (s *SQLiteStore) scanBoard(row *sql.Row) (*models.Board, error) {
	board := &models.Board{}
	var id, tid, rawColumns string
	err := row.Scan(&id, &tid, &board.Title, &rawColumns, &board.CreatedAt, &board.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if board.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if board.TeamID, err = uuid.Parse(tid); err != nil {
		return nil, err
	}
	if board.Columns, err = decodeColumns(rawColumns); err != nil {
		return nil, err
	}
	return board, nil
}

// UpdateBoardColumns replaces a board's column layout.
func (s *SQLiteStore) UpdateBoardColumns(ctx context.Context, boardID uuid.UUID, columns []models.Column) error {
	columnsJSON, err := encodeColumns(columns)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE boards SET columns = ?, updated_at = ? WHERE id = ?
	`, columnsJSON, time.Now().UTC(), boardID.String())
	return err
}

// CreateTask inserts a task and fills in its generated fields.
func (s *SQLiteStore) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	now := time.Now().UTC()
	task.ID = uuid.New()
	task.CreatedAt = now
	task.UpdatedAt = now

	var assignee interface{}
	if task.AssigneeID != nil {
		assignee = task.AssigneeID.String()
	}
	var due interface{}
	if task.DueDate != nil {
		due = *task.DueDate
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, board_id, title, description, status, priority, due_date, assignee_id, column_id, position, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, task.ID.String(), task.BoardID.String(), task.Title, task.Description, task.Status,
		task.Priority, due, assignee, task.Column, task.Position, task.CreatedBy.String(),
		task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func scanTaskRow(scan func(dest ...interface{}) error) (*models.Task, error) {
	task := &models.Task{}
	var id, boardID, createdBy string
	var assignee sql.NullString
	var due sql.NullTime
	err := scan(&id, &boardID, &task.Title, &task.Description, &task.Status, &task.Priority,
		&due, &assignee, &task.Column, &task.Position, &createdBy, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if task.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if task.BoardID, err = uuid.Parse(boardID); err != nil {
		return nil, err
	}
	if task.CreatedBy, err = uuid.Parse(createdBy); err != nil {
		return nil, err
	}
	if assignee.Valid {
		parsed, err := uuid.Parse(assignee.String)
		if err != nil {
			return nil, err
		}
		task.AssigneeID = &parsed
	}
	if due.Valid {
		t := due.Time
		task.DueDate = &t
	}
	return task, nil
}

// GetTask retrieves a task by ID.
func (s *SQLiteStore) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, board_id, title, description, status, priority, due_date, assignee_id, column_id, position, created_by, created_at, updated_at
		FROM tasks WHERE id = ?
	`, id.String())

	task, err := scanTaskRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

// ListTasksForBoard retrieves a board's tasks ordered by column and position.
func (s *SQLiteStore) ListTasksForBoard(ctx context.Context, boardID uuid.UUID) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, board_id, title, description, status, priority, due_date, assignee_id, column_id, position, created_by, created_at, updated_at
		FROM tasks
		WHERE board_id = ?
		ORDER BY column_id, position, created_at
	`, boardID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTaskRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// UpdateTask rewrites a task's mutable fields.
func (s *SQLiteStore) UpdateTask(ctx context.Context, task *models.Task) error {
	var assignee interface{}
	if task.AssigneeID != nil {
		assignee = task.AssigneeID.String()
	}
	var due interface{}
	if task.DueDate != nil {
		due = *task.DueDate
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, status = ?, priority = ?, due_date = ?,
		    assignee_id = ?, column_id = ?, position = ?, updated_at = ?
		WHERE id = ?
	`, task.Title, task.Description, task.Status, task.Priority, due,
		assignee, task.Column, task.Position, time.Now().UTC(), task.ID.String())
	return err
}

// DeleteTask removes a task.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id.String())
	return err
}

// MoveTask repositions a task inside the board.
func (s *SQLiteStore) MoveTask(ctx context.Context, id uuid.UUID, column string, position int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET column_id = ?, position = ?, updated_at = ? WHERE id = ?
	`, column, position, time.Now().UTC(), id.String())
	return err
}

// CountTasks returns the total number of tasks.
func (s *SQLiteStore) CountTasks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&count)
	return count, err
}

// CountTasksByStatus returns task counts grouped by status.
func (s *SQLiteStore) CountTasksByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// RecordLogin appends a login record for the user. Records are never
// closed out: tokens are stateless, so there is no logout to observe.
func (s *SQLiteStore) RecordLogin(ctx context.Context, userID uuid.UUID, ipAddress, userAgent string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO login_sessions (id, user_id, login_time, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.New().String(), userID.String(), time.Now().UTC(), ipAddress, userAgent)
	return err
}

// ListLoginSessions returns the most recent logins, newest first.
func (s *SQLiteStore) ListLoginSessions(ctx context.Context, limit int) ([]models.LoginSession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ls.id, ls.user_id, u.name, u.email, ls.login_time, ls.ip_address, ls.user_agent
		FROM login_sessions ls
		JOIN users u ON u.id = ls.user_id
		ORDER BY ls.login_time DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []models.LoginSession{}
	for rows.Next() {
		var ls models.LoginSession
		var id, userID string
		if err := rows.Scan(&id, &userID, &ls.UserName, &ls.Email, &ls.LoginTime, &ls.IPAddress, &ls.UserAgent); err != nil {
			return nil, err
		}
		if ls.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if ls.UserID, err = uuid.Parse(userID); err != nil {
			return nil, err
		}
		sessions = append(sessions, ls)
	}
	return sessions, rows.Err()
}

// GetLoginStats returns aggregate login counts.
func (s *SQLiteStore) GetLoginStats(ctx context.Context) (*models.LoginStats, error) {
	stats := &models.LoginStats{}
	since := time.Now().UTC().Add(-24 * time.Hour)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(CASE WHEN login_time >= ? THEN 1 END),
		       COUNT(DISTINCT user_id)
		FROM login_sessions
	`, since).Scan(&stats.TotalLogins, &stats.LoginsToday, &stats.UniqueUsers)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
