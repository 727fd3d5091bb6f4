package attendance

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"timeclock/internal/schedule"
	"timeclock/internal/users"
)

// memStore mimics the Postgres repo, including the one-open-session index.
type memStore struct {
	logs []Log
}

func (m *memStore) Insert(_ context.Context, l Log) (Log, error) {
	if l.Open() {
		for _, existing := range m.logs {
			if existing.UserID == l.UserID && existing.Open() {
				return Log{}, ErrAlreadyClockedIn
			}
		}
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.CreatedAt = time.Now()
	m.logs = append(m.logs, l)
	return l, nil
}

func (m *memStore) Close(_ context.Context, id uuid.UUID, out time.Time, outStatus string) error {
	for i := range m.logs {
		if m.logs[i].ID == id && m.logs[i].Open() {
			m.logs[i].ClockOut = &out
			m.logs[i].OutStatus = outStatus
			return nil
		}
	}
	return ErrNotClockedIn
}

func (m *memStore) OpenSession(_ context.Context, userID uuid.UUID) (*Log, error) {
	var open *Log
	for i := range m.logs {
		l := m.logs[i]
		if l.UserID == userID && l.Open() {
			if open == nil || l.ClockIn.After(open.ClockIn) {
				open = &m.logs[i]
			}
		}
	}
	if open == nil {
		return nil, nil
	}
	cp := *open
	return &cp, nil
}

func (m *memStore) HasLogBetween(_ context.Context, userID uuid.UUID, from, to time.Time) (bool, error) {
	for _, l := range m.logs {
		if l.UserID == userID && !l.ClockIn.Before(from) && l.ClockIn.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListByUser(_ context.Context, userID uuid.UUID) ([]Log, error) {
	var out []Log
	for _, l := range m.logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClockIn.After(out[j].ClockIn) })
	return out, nil
}

func (m *memStore) ListAll(_ context.Context) ([]Entry, error) {
	var out []Entry
	for _, l := range m.logs {
		out = append(out, Entry{Log: l})
	}
	return out, nil
}

// memMarker is a map-backed DayMarker.
type memMarker struct {
	seen map[string]bool
}

func (m *memMarker) TryMark(_ context.Context, userID uuid.UUID, day string) (bool, error) {
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	key := userID.String() + ":" + day
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

func newTestService() (*Service, *memStore, *memMarker) {
	store := &memStore{}
	marker := &memMarker{}
	return NewService(store, marker, zap.NewNop()), store, marker
}

func testUser(createdDaysAgo int, ref time.Time) users.User {
	return users.User{
		ID:        uuid.New(),
		Email:     "member@example.com",
		Name:      "Member",
		Role:      users.RoleUser,
		Schedule:  schedule.Schedule{Day: "Monday", StartTime: "09:00", EndTime: "17:00"},
		CreatedAt: ref.AddDate(0, 0, -createdDaysAgo),
	}
}

// monday 2024-06-03
func mondayAt(hour, minute int) time.Time {
	return time.Date(2024, 6, 3, hour, minute, 0, 0, time.UTC)
}

func TestClockInEarly(t *testing.T) {
	svc, _, _ := newTestService()
	u := testUser(30, mondayAt(0, 0))

	rec, err := svc.ClockIn(context.Background(), u, mondayAt(8, 56))
	assert.NoError(t, err)
	assert.Equal(t, schedule.StatusEarlyIn, rec.InStatus)
	assert.Equal(t, "Monday", rec.Day)
	assert.True(t, rec.Open())
}

func TestClockInOnTimeWithinGrace(t *testing.T) {
	svc, _, _ := newTestService()
	u := testUser(30, mondayAt(0, 0))

	rec, err := svc.ClockIn(context.Background(), u, mondayAt(9, 3))
	assert.NoError(t, err)
	assert.Equal(t, schedule.StatusOnTime, rec.InStatus)
}

func TestClockInRejections(t *testing.T) {
	svc, _, _ := newTestService()
	u := testUser(30, mondayAt(0, 0))

	_, err := svc.ClockIn(context.Background(), u, mondayAt(8, 40))
	assert.ErrorIs(t, err, schedule.ErrTooEarly)

	_, err = svc.ClockIn(context.Background(), u, mondayAt(17, 30))
	assert.ErrorIs(t, err, schedule.ErrTooLate)

	noSched := u
	noSched.Schedule = schedule.Schedule{}
	_, err = svc.ClockIn(context.Background(), noSched, mondayAt(9, 0))
	assert.ErrorIs(t, err, schedule.ErrScheduleNotSet)
}

func TestClockInTwiceRejected(t *testing.T) {
	svc, _, _ := newTestService()
	u := testUser(30, mondayAt(0, 0))
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, u, mondayAt(9, 0))
	assert.NoError(t, err)
	_, err = svc.ClockIn(ctx, u, mondayAt(9, 10))
	assert.ErrorIs(t, err, ErrAlreadyClockedIn)
}

func TestClockOutLateIsMissed(t *testing.T) {
	svc, _, _ := newTestService()
	u := testUser(30, mondayAt(0, 0))
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, u, mondayAt(9, 0))
	assert.NoError(t, err)

	rec, err := svc.ClockOut(ctx, u, mondayAt(17, 8))
	assert.NoError(t, err)
	assert.Equal(t, schedule.StatusMissed, rec.OutStatus)
	assert.False(t, rec.Open())

	// Session closed, nothing left to clock out.
	_, err = svc.ClockOut(ctx, u, mondayAt(17, 30))
	assert.ErrorIs(t, err, ErrNotClockedIn)
}

func TestClockOutOnTimeUnlabeled(t *testing.T) {
	svc, _, _ := newTestService()
	u := testUser(30, mondayAt(0, 0))
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, u, mondayAt(9, 0))
	assert.NoError(t, err)
	rec, err := svc.ClockOut(ctx, u, mondayAt(16, 45))
	assert.NoError(t, err)
	assert.Equal(t, "", rec.OutStatus)
}

func TestOpenSessionPicksLatestClockIn(t *testing.T) {
	svc, store, _ := newTestService()
	u := testUser(30, mondayAt(0, 0))

	// Two open records should never happen under the unique index; seed them
	// directly to exercise the tie-break.
	early := Log{ID: uuid.New(), UserID: u.ID, ClockIn: mondayAt(8, 0)}
	late := Log{ID: uuid.New(), UserID: u.ID, ClockIn: mondayAt(9, 30)}
	store.logs = append(store.logs, early, late)

	open, err := svc.OpenSession(context.Background(), u.ID)
	assert.NoError(t, err)
	assert.Equal(t, late.ID, open.ID)
}

func TestBackfillMondayScenario(t *testing.T) {
	// Schedule Monday 09:00-17:00, today Thursday, created 10 days ago,
	// no prior logs: exactly one record for the most recent Monday.
	svc, store, _ := newTestService()
	thursday := time.Date(2024, 6, 6, 10, 0, 0, 0, time.UTC)
	u := testUser(10, thursday)

	n, err := svc.Backfill(context.Background(), u, thursday)
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, store.logs, 1)

	rec := store.logs[0]
	assert.Equal(t, mondayAt(9, 0), rec.ClockIn)
	assert.NotNil(t, rec.ClockOut)
	assert.Equal(t, mondayAt(17, 0), *rec.ClockOut)
	assert.Equal(t, schedule.StatusMissed, rec.InStatus)
	assert.Equal(t, schedule.StatusMissed, rec.OutStatus)
	assert.True(t, rec.IsMissedSchedule)
	assert.True(t, rec.AutoLogged)
	assert.Equal(t, "2024-06-03", rec.MissedDate)
}

func TestBackfillIdempotentSameDay(t *testing.T) {
	svc, store, _ := newTestService()
	thursday := time.Date(2024, 6, 6, 10, 0, 0, 0, time.UTC)
	u := testUser(10, thursday)
	ctx := context.Background()

	n1, err := svc.Backfill(ctx, u, thursday)
	assert.NoError(t, err)
	n2, err := svc.Backfill(ctx, u, thursday.Add(4*time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, 1, n1)
	assert.Equal(t, 0, n2)
	assert.Len(t, store.logs, 1)
}

func TestBackfillSkipsExistingLog(t *testing.T) {
	svc, store, _ := newTestService()
	thursday := time.Date(2024, 6, 6, 10, 0, 0, 0, time.UTC)
	u := testUser(10, thursday)

	// A real clock-in already covers Monday.
	out := mondayAt(17, 0)
	store.logs = append(store.logs, Log{
		ID: uuid.New(), UserID: u.ID,
		ClockIn: mondayAt(9, 2), ClockOut: &out,
		Day: "Monday", InStatus: schedule.StatusOnTime,
	})

	n, err := svc.Backfill(context.Background(), u, thursday)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, store.logs, 1)
}

func TestBackfillNoScheduleNoRecords(t *testing.T) {
	svc, store, _ := newTestService()
	thursday := time.Date(2024, 6, 6, 10, 0, 0, 0, time.UTC)
	u := testUser(10, thursday)
	u.Schedule = schedule.Schedule{}

	n, err := svc.Backfill(context.Background(), u, thursday)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, store.logs)
}

func TestBackfillUserCreatedTodayNoRecords(t *testing.T) {
	svc, store, _ := newTestService()
	thursday := time.Date(2024, 6, 6, 10, 0, 0, 0, time.UTC)
	u := testUser(0, thursday)

	n, err := svc.Backfill(context.Background(), u, thursday)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, store.logs)
}

func TestBackfillRespectsCreationDate(t *testing.T) {
	// Created Tuesday: the Monday before creation must not be backfilled.
	svc, store, _ := newTestService()
	thursday := time.Date(2024, 6, 6, 10, 0, 0, 0, time.UTC)
	u := testUser(2, thursday) // created Tuesday 2024-06-04

	n, err := svc.Backfill(context.Background(), u, thursday)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, store.logs)
}

func TestBackfillBadTimeFormatSkipsAndContinues(t *testing.T) {
	svc, store, _ := newTestService()
	thursday := time.Date(2024, 6, 6, 10, 0, 0, 0, time.UTC)
	u := testUser(10, thursday)
	u.Schedule.StartTime = "9am"

	n, err := svc.Backfill(context.Background(), u, thursday)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, store.logs)
}

func TestBackfillNeverDuplicatesADate(t *testing.T) {
	svc, store, marker := newTestService()
	thursday := time.Date(2024, 6, 6, 10, 0, 0, 0, time.UTC)
	u := testUser(10, thursday)
	ctx := context.Background()

	_, err := svc.Backfill(ctx, u, thursday)
	assert.NoError(t, err)

	// Next day's scan (marker expires) still must not duplicate Monday.
	marker.seen = nil
	friday := thursday.AddDate(0, 0, 1)
	n, err := svc.Backfill(ctx, u, friday)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)

	dates := map[string]int{}
	for _, l := range store.logs {
		dates[l.ClockIn.Format("2006-01-02")]++
	}
	for d, c := range dates {
		assert.Equal(t, 1, c, "date %s", d)
	}
}
