package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists attendance logs in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const logColumns = `id, user_id, clock_in, clock_out, day, in_status, out_status,
	is_missed_schedule, auto_logged, COALESCE(missed_date::text, ''), created_at`

func scanLog(row interface{ Scan(...any) error }) (Log, error) {
	var l Log
	err := row.Scan(&l.ID, &l.UserID, &l.ClockIn, &l.ClockOut, &l.Day,
		&l.InStatus, &l.OutStatus, &l.IsMissedSchedule, &l.AutoLogged,
		&l.MissedDate, &l.CreatedAt)
	return l, err
}

// Insert writes a new log record. An insert that would create a second open
// session for the user hits the partial unique index and maps to
// ErrAlreadyClockedIn.
func (r *Repository) Insert(ctx context.Context, l Log) (Log, error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	var missedDate any
	if l.MissedDate != "" {
		missedDate = l.MissedDate
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_logs
			(id, user_id, clock_in, clock_out, day, in_status, out_status,
			 is_missed_schedule, auto_logged, missed_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at
	`, l.ID, l.UserID, l.ClockIn, l.ClockOut, l.Day, l.InStatus, l.OutStatus,
		l.IsMissedSchedule, l.AutoLogged, missedDate)
	if err := row.Scan(&l.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Log{}, ErrAlreadyClockedIn
		}
		return Log{}, err
	}
	return l, nil
}

// Close sets clock_out and the out status on an open record. The single
// UPDATE keeps the clock-out atomic.
func (r *Repository) Close(ctx context.Context, id uuid.UUID, out time.Time, outStatus string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE attendance_logs
		SET clock_out = $2, out_status = $3
		WHERE id = $1 AND clock_out IS NULL
	`, id, out, outStatus)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotClockedIn
	}
	return nil
}

// OpenSession returns the user's open record, or nil. Should more than one
// somehow exist, the latest clock_in wins.
func (r *Repository) OpenSession(ctx context.Context, userID uuid.UUID) (*Log, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+logColumns+`
		FROM attendance_logs
		WHERE user_id = $1 AND clock_out IS NULL
		ORDER BY clock_in DESC
		LIMIT 1
	`, userID)
	l, err := scanLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// HasLogBetween reports whether any of the user's logs clocked in inside
// [from, to).
func (r *Repository) HasLogBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM attendance_logs
			WHERE user_id = $1 AND clock_in >= $2 AND clock_in < $3
		)
	`, userID, from, to).Scan(&exists)
	return exists, err
}

// ListByUser returns all of a user's logs, newest clock_in first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Log, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+logColumns+`
		FROM attendance_logs
		WHERE user_id = $1
		ORDER BY clock_in DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Log
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListAll returns every log across all users with owner name and email,
// newest clock_in first. Full scan, no pagination.
func (r *Repository) ListAll(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.id, l.user_id, l.clock_in, l.clock_out, l.day, l.in_status,
		       l.out_status, l.is_missed_schedule, l.auto_logged,
		       COALESCE(l.missed_date::text, ''), l.created_at,
		       u.name, u.email
		FROM attendance_logs l
		JOIN users u ON u.id = l.user_id
		ORDER BY l.clock_in DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ClockIn, &e.ClockOut, &e.Day,
			&e.InStatus, &e.OutStatus, &e.IsMissedSchedule, &e.AutoLogged,
			&e.MissedDate, &e.CreatedAt, &e.UserName, &e.UserEmail); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
