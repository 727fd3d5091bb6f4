package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"timeclock/internal/schedule"
	"timeclock/internal/users"
)

var (
	// ErrAlreadyClockedIn means an open session already exists for the user.
	ErrAlreadyClockedIn = errors.New("already clocked in")
	// ErrNotClockedIn means there is no open session to close.
	ErrNotClockedIn = errors.New("not clocked in")
)

// backfillWindowDays is the trailing scan window. A weekly recurring day
// occurs at least once in it.
const backfillWindowDays = 7

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, l Log) (Log, error)
	Close(ctx context.Context, id uuid.UUID, out time.Time, outStatus string) error
	OpenSession(ctx context.Context, userID uuid.UUID) (*Log, error)
	HasLogBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Log, error)
	ListAll(ctx context.Context) ([]Entry, error)
}

// DayMarker gates the backfill scan to once per user per calendar day. The
// mark is taken atomically so the API and the worker cannot both scan.
type DayMarker interface {
	TryMark(ctx context.Context, userID uuid.UUID, day string) (bool, error)
}

// Service is the clock session controller plus the backfill scanner.
type Service struct {
	store  Store
	marker DayMarker
	log    *zap.Logger
}

// NewService creates a service backed by a store and a day marker.
func NewService(store Store, marker DayMarker, log *zap.Logger) *Service {
	return &Service{store: store, marker: marker, log: log}
}

// ClockIn validates the user's schedule at now, then creates an open log
// with the computed in-status. The open-session index rejects a second
// concurrent clock-in with ErrAlreadyClockedIn.
func (s *Service) ClockIn(ctx context.Context, u users.User, now time.Time) (Log, error) {
	if open, err := s.store.OpenSession(ctx, u.ID); err != nil {
		return Log{}, err
	} else if open != nil {
		return Log{}, ErrAlreadyClockedIn
	}
	if err := u.Schedule.CanClockIn(now); err != nil {
		return Log{}, err
	}
	status, err := u.Schedule.ClockInStatus(now)
	if err != nil {
		return Log{}, err
	}
	rec, err := s.store.Insert(ctx, Log{
		UserID:   u.ID,
		ClockIn:  now,
		Day:      schedule.DayOfWeek(now),
		InStatus: status,
	})
	if err != nil {
		return Log{}, err
	}
	s.log.Info("clock in",
		zap.String("user", u.ID.String()),
		zap.String("status", status),
		zap.String("log", rec.ID.String()))
	return rec, nil
}

// ClockOut validates against the same schedule and closes the open session
// with the computed out-status.
func (s *Service) ClockOut(ctx context.Context, u users.User, now time.Time) (Log, error) {
	open, err := s.store.OpenSession(ctx, u.ID)
	if err != nil {
		return Log{}, err
	}
	if open == nil {
		return Log{}, ErrNotClockedIn
	}
	if err := u.Schedule.CanClockOut(now); err != nil {
		return Log{}, err
	}
	status, err := u.Schedule.ClockOutStatus(now)
	if err != nil {
		return Log{}, err
	}
	if err := s.store.Close(ctx, open.ID, now, status); err != nil {
		return Log{}, err
	}
	s.log.Info("clock out",
		zap.String("user", u.ID.String()),
		zap.String("status", status),
		zap.String("log", open.ID.String()))
	open.ClockOut = &now
	open.OutStatus = status
	return *open, nil
}

// OpenSession returns the user's open session, if any.
func (s *Service) OpenSession(ctx context.Context, userID uuid.UUID) (*Log, error) {
	return s.store.OpenSession(ctx, userID)
}

// Backfill scans the last seven calendar days before today for scheduled
// days with no log and synthesizes a Missed record for each. It returns the
// number of records created. The scan runs at most once per user per
// calendar day; repeat calls are no-ops.
func (s *Service) Backfill(ctx context.Context, u users.User, today time.Time) (int, error) {
	if !u.Schedule.IsSet() {
		s.log.Debug("backfill skipped, no schedule", zap.String("user", u.ID.String()))
		return 0, nil
	}
	if u.CreatedAt.IsZero() {
		s.log.Debug("backfill skipped, creation date unknown", zap.String("user", u.ID.String()))
		return 0, nil
	}
	todayDate := dateOf(today)
	createdDate := dateOf(u.CreatedAt.In(today.Location()))
	if !createdDate.Before(todayDate) {
		return 0, nil
	}

	ok, err := s.marker.TryMark(ctx, u.ID, todayDate.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	created := 0
	for i := 1; i <= backfillWindowDays; i++ {
		checkDate := todayDate.AddDate(0, 0, -i)
		if schedule.DayOfWeek(checkDate) != u.Schedule.Day || checkDate.Before(createdDate) {
			continue
		}
		exists, err := s.store.HasLogBetween(ctx, u.ID, checkDate, checkDate.AddDate(0, 0, 1))
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		start, err := u.Schedule.StartOn(checkDate)
		if err != nil {
			s.log.Warn("backfill skipped day, bad schedule time",
				zap.String("user", u.ID.String()),
				zap.String("date", checkDate.Format("2006-01-02")))
			continue
		}
		end, err := u.Schedule.EndOn(checkDate)
		if err != nil {
			s.log.Warn("backfill skipped day, bad schedule time",
				zap.String("user", u.ID.String()),
				zap.String("date", checkDate.Format("2006-01-02")))
			continue
		}
		if _, err := s.store.Insert(ctx, Log{
			UserID:           u.ID,
			ClockIn:          start,
			ClockOut:         &end,
			Day:              u.Schedule.Day,
			InStatus:         schedule.StatusMissed,
			OutStatus:        schedule.StatusMissed,
			IsMissedSchedule: true,
			AutoLogged:       true,
			MissedDate:       checkDate.Format("2006-01-02"),
		}); err != nil {
			return created, err
		}
		created++
	}
	if created > 0 {
		s.log.Info("backfill synthesized missed logs",
			zap.String("user", u.ID.String()), zap.Int("count", created))
	}
	return created, nil
}

// History returns the user's logs, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]Log, error) {
	return s.store.ListByUser(ctx, userID)
}

// AllLogs returns every user's logs for the admin view.
func (s *Service) AllLogs(ctx context.Context) ([]Entry, error) {
	return s.store.ListAll(ctx)
}

// dateOf truncates t to midnight in its own location.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
