package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timeclock/internal/attendance"
	"timeclock/internal/auth"
	"timeclock/internal/metrics"
	"timeclock/internal/schedule"
	"timeclock/internal/users"
)

// currentUser loads the authenticated user's stored row so clock decisions
// always run against the server-side schedule.
func (h *Handlers) currentUser(c *gin.Context) (users.User, bool) {
	id, ok := auth.SubjectID(c)
	if !ok {
		fail(c, http.StatusUnauthorized, 40103, "invalid session")
		return users.User{}, false
	}
	u, err := h.users.GetByID(c.Request.Context(), id)
	if errors.Is(err, users.ErrNotFound) {
		fail(c, http.StatusUnauthorized, 40104, "invalid session")
		return users.User{}, false
	}
	if err != nil {
		h.log.Error("user lookup failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, 50010, "Something went wrong. Please try again.")
		return users.User{}, false
	}
	return u, true
}

// ClockStatus reports whether the user has an open session.
func (h *Handlers) ClockStatus(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	open, err := h.att.OpenSession(c.Request.Context(), u.ID)
	if err != nil {
		h.log.Error("open session lookup failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, 50011, "Failed to load clock status.")
		return
	}
	success(c, http.StatusOK, "", gin.H{
		"clockedIn": open != nil,
		"session":   open,
		"schedule":  u.Schedule,
		"now":       time.Now().In(h.loc),
	})
}

// ClockIn opens a session if the schedule window allows it.
func (h *Handlers) ClockIn(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	now := time.Now().In(h.loc)
	rec, err := h.att.ClockIn(c.Request.Context(), u, now)
	if err != nil {
		h.clockError(c, u, err, "in")
		return
	}
	metrics.ClockIns.WithLabelValues(rec.InStatus).Inc()
	success(c, http.StatusCreated, fmt.Sprintf("Clocked in at %s (%s).", now.Format("15:04"), rec.InStatus), rec)
}

// ClockOut closes the open session.
func (h *Handlers) ClockOut(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	now := time.Now().In(h.loc)
	rec, err := h.att.ClockOut(c.Request.Context(), u, now)
	if err != nil {
		h.clockError(c, u, err, "out")
		return
	}
	status := rec.OutStatus
	if status == "" {
		status = "On Time"
	}
	metrics.ClockOuts.WithLabelValues(status).Inc()
	success(c, http.StatusOK, fmt.Sprintf("Clocked out at %s (%s).", now.Format("15:04"), status), rec)
}

// Backfill runs the missed-schedule scan for the user and reports how many
// records it synthesized.
func (h *Handlers) Backfill(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	n, err := h.att.Backfill(c.Request.Context(), u, time.Now().In(h.loc))
	if err != nil {
		h.log.Error("backfill failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, 50012, "Failed to check for missed schedules.")
		return
	}
	metrics.BackfillRecords.Add(float64(n))
	if n > 0 {
		info(c, fmt.Sprintf("%d missed schedule day(s) were added to your attendance history.", n), gin.H{"created": n})
		return
	}
	success(c, http.StatusOK, "No missed schedules found.", gin.H{"created": 0})
}

// clockError maps clock action failures to fixed user-facing messages.
func (h *Handlers) clockError(c *gin.Context, u users.User, err error, direction string) {
	switch {
	case errors.Is(err, schedule.ErrScheduleNotSet):
		fail(c, http.StatusUnprocessableEntity, 42210, "No schedule has been set for your account. Please contact an admin.")
	case errors.Is(err, schedule.ErrWrongDay):
		fail(c, http.StatusUnprocessableEntity, 42211, fmt.Sprintf("You can only clock %s on %s.", direction, u.Schedule.Day))
	case errors.Is(err, schedule.ErrTooEarly) && direction == "in":
		fail(c, http.StatusUnprocessableEntity, 42212, fmt.Sprintf("Clock in opens %d minutes before your %s start time.", schedule.GraceMinutes, u.Schedule.StartTime))
	case errors.Is(err, schedule.ErrTooEarly):
		fail(c, http.StatusUnprocessableEntity, 42213, fmt.Sprintf("You cannot clock out before your %s start time.", u.Schedule.StartTime))
	case errors.Is(err, schedule.ErrTooLate):
		fail(c, http.StatusUnprocessableEntity, 42214, "Your scheduled window has already ended for today.")
	case errors.Is(err, schedule.ErrInvalidFormat):
		fail(c, http.StatusUnprocessableEntity, 42215, "Your schedule times are invalid. Please contact an admin.")
	case errors.Is(err, attendance.ErrAlreadyClockedIn):
		fail(c, http.StatusConflict, 40910, "You are already clocked in.")
	case errors.Is(err, attendance.ErrNotClockedIn):
		fail(c, http.StatusConflict, 40911, "You are not clocked in.")
	default:
		h.log.Error("clock action failed", zap.Error(err), zap.String("direction", direction))
		fail(c, http.StatusInternalServerError, 50013, "Something went wrong. Please try again.")
	}
}
