package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saransh000/hackathonpractice/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool
// and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	store := &PostgresStore{pool: pool}
	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS teams (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		invite_code TEXT UNIQUE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS team_members (
		team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (team_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS boards (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		team_id UUID UNIQUE NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		columns JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		board_id UUID NOT NULL REFERENCES boards(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		priority TEXT NOT NULL DEFAULT 'medium',
		due_date TIMESTAMPTZ,
		assignee_id UUID REFERENCES users(id) ON DELETE SET NULL,
		column_id TEXT NOT NULL DEFAULT 'todo',
		position INTEGER NOT NULL DEFAULT 0,
		created_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS login_sessions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		login_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	CREATE INDEX IF NOT EXISTS idx_teams_invite_code ON teams(invite_code);
	CREATE INDEX IF NOT EXISTS idx_team_members_user ON team_members(user_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_board_column ON tasks(board_id, column_id, position);
	CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id);
	CREATE INDEX IF NOT EXISTS idx_login_sessions_time ON login_sessions(login_time DESC);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateUser creates a new user record.
func (s *PostgresStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, password_hash, is_admin, created_at, updated_at
	`, name, email, passwordHash).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, is_admin, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, email, password_hash, is_admin, created_at, updated_at
		FROM users WHERE email = $1
	`, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// CountUsers returns the total number of registered users.
func (s *PostgresStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// ListUsers returns all registered users, newest first.
func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `
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
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetUserAdmin grants or revokes admin rights for a user.
func (s *PostgresStore) SetUserAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE users SET is_admin = $1, updated_at = NOW() WHERE id = $2
	`, isAdmin, id)
	return err
}

// DeleteUser removes a user. Owned teams, created tasks, memberships and
// login records cascade away with them; assignments on others' tasks clear.
func (s *PostgresStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

// CreateTeam creates a new team and adds the owner as its first member.
func (s *PostgresStore) CreateTeam(ctx context.Context, name, description string, ownerID uuid.UUID, inviteCode string) (*models.Team, error) {
	team := &models.Team{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO teams (name, description, owner_id, invite_code)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, owner_id, invite_code, created_at, updated_at
	`, name, description, ownerID, inviteCode).Scan(
		&team.ID,
		&team.Name,
		&team.Description,
		&team.OwnerID,
		&team.InviteCode,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := s.AddTeamMember(ctx, team.ID, ownerID); err != nil {
		return nil, err
	}
	return team, nil
}

// GetTeam retrieves a team by ID.
func (s *PostgresStore) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	team := &models.Team{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, description, owner_id, invite_code, created_at, updated_at
		FROM teams WHERE id = $1
	`, id).Scan(
		&team.ID,
		&team.Name,
		&team.Description,
		&team.OwnerID,
		&team.InviteCode,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return team, nil
}

// GetTeamByInviteCode retrieves a team by its invite code.
func (s *PostgresStore) GetTeamByInviteCode(ctx context.Context, code string) (*models.Team, error) {
	team := &models.Team{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, description, owner_id, invite_code, created_at, updated_at
		FROM teams WHERE invite_code = $1
	`, code).Scan(
		&team.ID,
		&team.Name,
		&team.Description,
		&team.OwnerID,
		&team.InviteCode,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return team, nil
}

// ListTeamsForUser retrieves all teams the user is a member of.
func (s *PostgresStore) ListTeamsForUser(ctx context.Context, userID uuid.UUID) ([]models.Team, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT t.id, t.name, t.description, t.owner_id, t.invite_code, t.created_at, t.updated_at
		FROM teams t
		JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = $1
		ORDER BY t.created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var team models.Team
		err := rows.Scan(
			&team.ID,
			&team.Name,
			&team.Description,
			&team.OwnerID,
			&team.InviteCode,
			&team.CreatedAt,
			&team.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// AddTeamMember adds a user to a team. Adding an existing member is a no-op.
func (s *PostgresStore) AddTeamMember(ctx context.Context, teamID, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, teamID, userID)
	return err
}

// RemoveTeamMember removes a user from a team.
func (s *PostgresStore) RemoveTeamMember(ctx context.Context, teamID, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM team_members WHERE team_id = $1 AND user_id = $2
	`, teamID, userID)
	return err
}

// ListTeamMembers retrieves the members of a team ordered by join time.
func (s *PostgresStore) ListTeamMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.id, u.name, u.email, m.joined_at
		FROM team_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = $1
		ORDER BY m.joined_at
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var member models.TeamMember
		if err := rows.Scan(&member.UserID, &member.Name, &member.Email, &member.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

// IsTeamMember reports whether the user belongs to the team.
func (s *PostgresStore) IsTeamMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)
	`, teamID, userID).Scan(&exists)
	return exists, err
}

// CountTeams returns the total number of teams.
func (s *PostgresStore) CountTeams(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM teams`).Scan(&count)
	return count, err
}

// CreateBoard creates a board for a team.
func (s *PostgresStore) CreateBoard(ctx context.Context, teamID uuid.UUID, title string, columns []models.Column) (*models.Board, error) {
	columnsJSON, err := encodeColumns(columns)
	if err != nil {
		return nil, err
	}

	board := &models.Board{}
	var rawColumns string
	err = s.pool.QueryRow(ctx, `
		INSERT INTO boards (team_id, title, columns)
		VALUES ($1, $2, $3)
		RETURNING id, team_id, title, columns, created_at, updated_at
	`, teamID, title, columnsJSON).Scan(
		&board.ID,
		&board.TeamID,
		&board.Title,
		&rawColumns,
		&board.CreatedAt,
		&board.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	board.Columns, err = decodeColumns(rawColumns)
	if err != nil {
		return nil, err
	}
	return board, nil
}

// GetBoard retrieves a board by ID.
func (s *PostgresStore) GetBoard(ctx context.Context, id uuid.UUID) (*models.Board, error) {
	return s.scanBoardRow(s.pool.QueryRow(ctx, `
		SELECT id, team_id, title, columns, created_at, updated_at
		FROM boards WHERE id = $1
	`, id))
}

// GetBoardForTeam retrieves a team's board.
func (s *PostgresStore) GetBoardForTeam(ctx context.Context, teamID uuid.UUID) (*models.Board, error) {
	return s.scanBoardRow(s.pool.QueryRow(ctx, `
		SELECT id, team_id, title, columns, created_at, updated_at
		FROM boards WHERE team_id = $1
	`, teamID))
}

func (s *PostgresStore) scanBoardRow(row pgx.Row) (*models.Board, error) {
	board := &models.Board{}
	var rawColumns string
	err := row.Scan(
		&board.ID,
		&board.TeamID,
		&board.Title,
		&rawColumns,
		&board.CreatedAt,
		&board.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	board.Columns, err = decodeColumns(rawColumns)
	if err != nil {
		return nil, err
	}
	return board, nil
}

// UpdateBoardColumns replaces a board's column layout.
func (s *PostgresStore) UpdateBoardColumns(ctx context.Context, boardID uuid.UUID, columns []models.Column) error {
	columnsJSON, err := encodeColumns(columns)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		UPDATE boards SET columns = $1, updated_at = NOW() WHERE id = $2
	`, columnsJSON, boardID)
	return err
}

// CreateTask inserts a task and fills in its generated fields.
func (s *PostgresStore) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO tasks (board_id, title, description, status, priority, due_date, assignee_id, column_id, position, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, task.BoardID, task.Title, task.Description, task.Status, task.Priority,
		task.DueDate, task.AssigneeID, task.Column, task.Position, task.CreatedBy,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask retrieves a task by ID.
func (s *PostgresStore) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task := &models.Task{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, board_id, title, description, status, priority, due_date, assignee_id, column_id, position, created_by, created_at, updated_at
		FROM tasks WHERE id = $1
	`, id).Scan(
		&task.ID,
		&task.BoardID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.AssigneeID,
		&task.Column,
		&task.Position,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

// ListTasksForBoard retrieves a board's tasks ordered by column and position.
func (s *PostgresStore) ListTasksForBoard(ctx context.Context, boardID uuid.UUID) ([]models.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, board_id, title, description, status, priority, due_date, assignee_id, column_id, position, created_by, created_at, updated_at
		FROM tasks
		WHERE board_id = $1
		ORDER BY column_id, position, created_at
	`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		err := rows.Scan(
			&task.ID,
			&task.BoardID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.Priority,
			&task.DueDate,
			&task.AssigneeID,
			&task.Column,
			&task.Position,
			&task.CreatedBy,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// UpdateTask rewrites a task's mutable fields.
func (s *PostgresStore) UpdateTask(ctx context.Context, task *models.Task) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, due_date = $5,
		    assignee_id = $6, column_id = $7, position = $8, updated_at = NOW()
		WHERE id = $9
	`, task.Title, task.Description, task.Status, task.Priority, task.DueDate,
		task.AssigneeID, task.Column, task.Position, task.ID)
	return err
}

// DeleteTask removes a task.
func (s *PostgresStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

// MoveTask repositions a task inside the board.
func (s *PostgresStore) MoveTask(ctx context.Context, id uuid.UUID, column string, position int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE tasks SET column_id = $1, position = $2, updated_at = NOW() WHERE id = $3
	`, column, position, id)
	return err
}

// CountTasks returns the total number of tasks.
func (s *PostgresStore) CountTasks(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&count)
	return count, err
}

// CountTasksByStatus returns task counts grouped by status.
func (s *PostgresStore) CountTasksByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
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
func (s *PostgresStore) RecordLogin(ctx context.Context, userID uuid.UUID, ipAddress, userAgent string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO login_sessions (user_id, ip_address, user_agent)
		VALUES ($1, $2, $3)
	`, userID, ipAddress, userAgent)
	return err
}

// ListLoginSessions returns the most recent logins, newest first.
func (s *PostgresStore) ListLoginSessions(ctx context.Context, limit int) ([]models.LoginSession, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ls.id, ls.user_id, u.name, u.email, ls.login_time, ls.ip_address, ls.user_agent
		FROM login_sessions ls
		JOIN users u ON u.id = ls.user_id
		ORDER BY ls.login_time DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []models.LoginSession{}
	for rows.Next() {
		var ls models.LoginSession
		if err := rows.Scan(&ls.ID, &ls.UserID, &ls.UserName, &ls.Email, &ls.LoginTime, &ls.IPAddress, &ls.UserAgent); err != nil {
			return nil, err
		}
		sessions = append(sessions, ls)
	}
	return sessions, rows.Err()
}

// GetLoginStats returns aggregate login counts.
func (s *PostgresStore) GetLoginStats(ctx context.Context) (*models.LoginStats, error) {
	stats := &models.LoginStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE login_time >= NOW() - INTERVAL '24 hours'),
		       COUNT(DISTINCT user_id)
		FROM login_sessions
	`).Scan(&stats.TotalLogins, &stats.LoginsToday, &stats.UniqueUsers)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
