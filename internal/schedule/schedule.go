// Package schedule holds the weekly schedule model and the pure time
// comparisons that decide whether a clock action is allowed and which
// status label it earns.
package schedule

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Status labels stored on attendance logs. An on-time clock-out is
// deliberately unlabeled.
const (
	StatusEarlyIn = "Early IN"
	StatusOnTime  = "On Time"
	StatusLate    = "Late"
	StatusLateOut = "Late out"
	StatusMissed  = "Missed"
)

// GraceMinutes is the tolerance applied at the early clock-in boundary and
// the late status boundaries.
const GraceMinutes = 5

var (
	ErrScheduleNotSet = errors.New("no schedule set")
	ErrWrongDay       = errors.New("not the scheduled day")
	ErrTooEarly       = errors.New("too early")
	ErrTooLate        = errors.New("too late")
	ErrInvalidFormat  = errors.New("invalid schedule time format")
)

var dayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// DayOfWeek returns the Sunday-indexed day label for t's local wall-clock day.
func DayOfWeek(t time.Time) string {
	return dayNames[int(t.Weekday())]
}

// IsDayName reports whether s is one of the seven day labels.
func IsDayName(s string) bool {
	for _, d := range dayNames {
		if d == s {
			return true
		}
	}
	return false
}

// MinutesOfDay returns the minute of t's day in [0, 1440).
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ParseHHMM parses a "HH:MM" string. Anything other than exactly two
// colon-separated numeric parts fails with ErrInvalidFormat.
func ParseHHMM(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, ErrInvalidFormat
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, ErrInvalidFormat
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, ErrInvalidFormat
	}
	return hour, minute, nil
}

// Schedule is a single allowed weekday plus a start/end window, both "HH:MM".
// It is embedded in the user record and overwritten in place by admin edits.
type Schedule struct {
	Day       string `json:"allowedDay"`
	StartTime string `json:"allowedStartTime"`
	EndTime   string `json:"allowedEndTime"`
}

// IsSet reports whether all three schedule fields are present.
func (s Schedule) IsSet() bool {
	return s.Day != "" && s.StartTime != "" && s.EndTime != ""
}

// window returns the scheduled start and end as minutes of the day.
func (s Schedule) window() (start, end int, err error) {
	sh, sm, err := ParseHHMM(s.StartTime)
	if err != nil {
		return 0, 0, err
	}
	eh, em, err := ParseHHMM(s.EndTime)
	if err != nil {
		return 0, 0, err
	}
	return sh*60 + sm, eh*60 + em, nil
}

// CanClockIn decides clock-in eligibility at the given instant. Clock-in
// opens GraceMinutes before the scheduled start and closes at the
// scheduled end.
func (s Schedule) CanClockIn(now time.Time) error {
	if !s.IsSet() {
		return ErrScheduleNotSet
	}
	if DayOfWeek(now) != s.Day {
		return ErrWrongDay
	}
	start, end, err := s.window()
	if err != nil {
		return err
	}
	m := MinutesOfDay(now)
	if m < start-GraceMinutes {
		return ErrTooEarly
	}
	if m > end {
		return ErrTooLate
	}
	return nil
}

// ClockInStatus classifies a permitted clock-in: before the start is
// Early IN, within GraceMinutes after it is On Time, anything later is Late.
func (s Schedule) ClockInStatus(now time.Time) (string, error) {
	start, _, err := s.window()
	if err != nil {
		return "", err
	}
	m := MinutesOfDay(now)
	switch {
	case m < start:
		return StatusEarlyIn, nil
	case m <= start+GraceMinutes:
		return StatusOnTime, nil
	default:
		return StatusLate, nil
	}
}

// CanClockOut decides clock-out eligibility. There is no upper bound: a
// user can clock out arbitrarily late, the status label records how late.
func (s Schedule) CanClockOut(now time.Time) error {
	if !s.IsSet() {
		return ErrScheduleNotSet
	}
	if DayOfWeek(now) != s.Day {
		return ErrWrongDay
	}
	start, _, err := s.window()
	if err != nil {
		return err
	}
	if MinutesOfDay(now) < start {
		return ErrTooEarly
	}
	return nil
}

// ClockOutStatus classifies a clock-out: empty (on time) at or before the
// scheduled end, Late out within GraceMinutes after it, Missed beyond that.
func (s Schedule) ClockOutStatus(now time.Time) (string, error) {
	_, end, err := s.window()
	if err != nil {
		return "", err
	}
	m := MinutesOfDay(now)
	switch {
	case m <= end:
		return "", nil
	case m <= end+GraceMinutes:
		return StatusLateOut, nil
	default:
		return StatusMissed, nil
	}
}

// StartOn returns the scheduled start instant on the calendar day of date.
func (s Schedule) StartOn(date time.Time) (time.Time, error) {
	h, m, err := ParseHHMM(s.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, date.Location()), nil
}

// EndOn returns the scheduled end instant on the calendar day of date.
func (s Schedule) EndOn(date time.Time) (time.Time, error) {
	h, m, err := ParseHHMM(s.EndTime)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, date.Location()), nil
}
