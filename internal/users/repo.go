// Package users persists user accounts and their weekly schedules.
package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"timeclock/internal/schedule"
)

// Roles a user can hold. Role is fixed at registration.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// User is an account row. Schedule fields are empty strings until an admin
// assigns a weekly window.
type User struct {
	ID           uuid.UUID         `json:"id"`
	Email        string            `json:"email"`
	Name         string            `json:"name"`
	Role         string            `json:"role"`
	PasswordHash string            `json:"-"`
	Schedule     schedule.Schedule `json:"schedule"`
	CreatedAt    time.Time         `json:"createdAt"`
	LastLogin    *time.Time        `json:"lastLogin,omitempty"`
}

// Repository persists users in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, email, name, role, password_hash,
	allowed_day, allowed_start_time, allowed_end_time, created_at, last_login`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash,
		&u.Schedule.Day, &u.Schedule.StartTime, &u.Schedule.EndTime,
		&u.CreatedAt, &u.LastLogin)
	return u, err
}

// Create inserts a new account. Duplicate emails map to ErrDuplicateEmail.
func (r *Repository) Create(ctx context.Context, u User) (User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, u.ID, u.Email, u.Name, u.Role, u.PasswordHash)
	if err := row.Scan(&u.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrDuplicateEmail
		}
		return User{}, err
	}
	return u, nil
}

// GetByEmail returns the account for an email address.
func (r *Repository) GetByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// GetByID returns the account for an id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// List returns every account, admins and users in one view, ordered by
// creation time.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateSchedule overwrites a user's weekly window in place. Passing an
// empty schedule clears it.
func (r *Repository) UpdateSchedule(ctx context.Context, id uuid.UUID, s schedule.Schedule) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET allowed_day = $2, allowed_start_time = $3, allowed_end_time = $4
		WHERE id = $1
	`, id, s.Day, s.StartTime, s.EndTime)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastLogin stamps the last successful sign-in.
func (r *Repository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	return err
}
