package attendance

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"timeclock/internal/schedule"
)

func sampleLogs() []Log {
	uid := uuid.New()
	mk := func(day string, clockIn time.Time, in, out string) Log {
		end := clockIn.Add(8 * time.Hour)
		return Log{ID: uuid.New(), UserID: uid, ClockIn: clockIn, ClockOut: &end,
			Day: day, InStatus: in, OutStatus: out}
	}
	return []Log{
		mk("Monday", time.Date(2024, 6, 3, 8, 56, 0, 0, time.UTC), schedule.StatusEarlyIn, ""),
		mk("Monday", time.Date(2024, 5, 27, 9, 2, 0, 0, time.UTC), schedule.StatusOnTime, schedule.StatusLateOut),
		mk("Monday", time.Date(2024, 5, 20, 9, 40, 0, 0, time.UTC), schedule.StatusLate, ""),
		mk("Monday", time.Date(2023, 12, 4, 9, 0, 0, 0, time.UTC), schedule.StatusMissed, schedule.StatusMissed),
	}
}

func TestFilterByStatus(t *testing.T) {
	logs := sampleLogs()

	assert.Len(t, Filter{Status: "Early In"}.Apply(logs), 1)
	assert.Len(t, Filter{Status: "On Time"}.Apply(logs), 1)
	assert.Len(t, Filter{Status: "Late In"}.Apply(logs), 1)
	assert.Len(t, Filter{Status: "Late Out"}.Apply(logs), 1)
	assert.Len(t, Filter{Status: "Missed"}.Apply(logs), 1)
	assert.Len(t, Filter{}.Apply(logs), 4)
}

func TestFilterByMonthYear(t *testing.T) {
	logs := sampleLogs()

	assert.Len(t, Filter{Year: 2024}.Apply(logs), 3)
	assert.Len(t, Filter{Year: 2024, Month: 6}.Apply(logs), 1)
	assert.Len(t, Filter{Year: 2023, Month: 12}.Apply(logs), 1)
	assert.Empty(t, Filter{Year: 2022}.Apply(logs))
}

func TestFilterBySearch(t *testing.T) {
	logs := sampleLogs()

	assert.Len(t, Filter{Search: "monday"}.Apply(logs), 4)
	assert.Len(t, Filter{Search: "early"}.Apply(logs), 1)
	assert.Len(t, Filter{Search: "2024-05"}.Apply(logs), 2)
	assert.Empty(t, Filter{Search: "friday"}.Apply(logs))
}

func TestFilterEntriesSearchesOwner(t *testing.T) {
	entries := []Entry{
		{Log: sampleLogs()[0], UserName: "Alice Cruz", UserEmail: "alice@example.com"},
		{Log: sampleLogs()[1], UserName: "Bob Reyes", UserEmail: "bob@example.com"},
	}
	assert.Len(t, Filter{Search: "alice"}.ApplyEntries(entries), 1)
	assert.Len(t, Filter{Search: "example.com"}.ApplyEntries(entries), 2)
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleLogs())
	assert.Equal(t, Stats{TotalDays: 4, EarlyIn: 1, OnTime: 1, LateIn: 1, LateOut: 1, Missed: 1}, s)
}

func TestWriteCSV(t *testing.T) {
	logs := sampleLogs()
	open := logs[0]
	open.ClockOut = nil
	logs[0] = open

	var buf bytes.Buffer
	assert.NoError(t, WriteCSV(&buf, logs))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, "Date,Day,Clock In,Clock Out,In Status,Out Status", lines[0])
	assert.Contains(t, lines[1], "Not clocked out")
	assert.Contains(t, lines[1], "Early IN")
}
