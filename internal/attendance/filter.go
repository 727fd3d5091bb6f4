package attendance

import (
	"strings"
	"time"

	"timeclock/internal/schedule"
)

// Filter narrows a history or admin listing. Zero values match everything.
type Filter struct {
	Month  int    // 1..12
	Year   int
	Status string // Early In | On Time | Late In | Late Out | Missed
	Search string // matched against day, statuses, owner name/email, date
}

// Stats are the summary counts shown above the history table and feeding
// the remarks chart. Missed counts records with either status Missed.
type Stats struct {
	TotalDays int `json:"totalDays"`
	EarlyIn   int `json:"earlyIn"`
	OnTime    int `json:"onTime"`
	LateIn    int `json:"lateIn"`
	LateOut   int `json:"lateOut"`
	Missed    int `json:"missed"`
}

func (f Filter) matchStatus(l Log) bool {
	switch f.Status {
	case "":
		return true
	case "Early In":
		return l.InStatus == schedule.StatusEarlyIn
	case "On Time":
		return l.InStatus == schedule.StatusOnTime
	case "Late In":
		return l.InStatus == schedule.StatusLate
	case "Late Out":
		return l.OutStatus == schedule.StatusLateOut
	case "Missed":
		return l.InStatus == schedule.StatusMissed || l.OutStatus == schedule.StatusMissed
	default:
		return true
	}
}

func (f Filter) matchLog(l Log, extra ...string) bool {
	if f.Month != 0 && int(l.ClockIn.Month()) != f.Month {
		return false
	}
	if f.Year != 0 && l.ClockIn.Year() != f.Year {
		return false
	}
	if !f.matchStatus(l) {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		haystack := []string{l.Day, l.InStatus, l.OutStatus, l.ClockIn.Format("2006-01-02")}
		haystack = append(haystack, extra...)
		found := false
		for _, h := range haystack {
			if strings.Contains(strings.ToLower(h), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Apply filters a personal history.
func (f Filter) Apply(logs []Log) []Log {
	out := make([]Log, 0, len(logs))
	for _, l := range logs {
		if f.matchLog(l) {
			out = append(out, l)
		}
	}
	return out
}

// ApplyEntries filters an admin listing; the search term also matches the
// owner's name and email.
func (f Filter) ApplyEntries(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.matchLog(e.Log, e.UserName, e.UserEmail) {
			out = append(out, e)
		}
	}
	return out
}

// Summarize computes the status counts for a set of logs.
func Summarize(logs []Log) Stats {
	var s Stats
	s.TotalDays = len(logs)
	for _, l := range logs {
		switch l.InStatus {
		case schedule.StatusEarlyIn:
			s.EarlyIn++
		case schedule.StatusOnTime:
			s.OnTime++
		case schedule.StatusLate:
			s.LateIn++
		}
		if l.OutStatus == schedule.StatusLateOut {
			s.LateOut++
		}
		if l.InStatus == schedule.StatusMissed || l.OutStatus == schedule.StatusMissed {
			s.Missed++
		}
	}
	return s
}

// FormatClock renders a timestamp for tables and CSV rows.
func FormatClock(t *time.Time) string {
	if t == nil {
		return "Not clocked out"
	}
	return t.Format("15:04")
}
