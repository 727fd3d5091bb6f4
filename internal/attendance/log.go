// Package attendance owns clock-in/out sessions, the missed-schedule
// backfill scan, and log queries.
package attendance

import (
	"time"

	"github.com/google/uuid"
)

// Log is one clock-in/out cycle. ClockOut is nil while the session is open;
// the open session is the only record allowed to have a nil ClockOut per
// user. Synthesized missed-day records carry both timestamps up front.
type Log struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"userId"`
	ClockIn          time.Time  `json:"clockIn"`
	ClockOut         *time.Time `json:"clockOut"`
	Day              string     `json:"day"`
	InStatus         string     `json:"INstatus"`
	OutStatus        string     `json:"OUTstatus"`
	IsMissedSchedule bool       `json:"isMissedSchedule"`
	AutoLogged       bool       `json:"autoLogged"`
	MissedDate       string     `json:"missedDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Open reports whether the record is an open session.
func (l Log) Open() bool {
	return l.ClockOut == nil
}

// Entry is a log joined with its owner, used by the admin views.
type Entry struct {
	Log
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}
