package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"timeclock/internal/attendance"
	"timeclock/internal/schedule"
	"timeclock/internal/users"
)

// ListUsers returns every account, admins and users merged into one view.
func (h *Handlers) ListUsers(c *gin.Context) {
	list, err := h.users.List(c.Request.Context())
	if err != nil {
		h.log.Error("user listing failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, 50030, "Failed to load users.")
		return
	}
	success(c, http.StatusOK, "", gin.H{"users": list})
}

type scheduleRequest struct {
	Day       string `json:"allowedDay"`
	StartTime string `json:"allowedStartTime"`
	EndTime   string `json:"allowedEndTime"`
}

// UpdateSchedule overwrites a user's weekly window. Sending all three
// fields empty clears the schedule.
func (h *Handlers) UpdateSchedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, 40030, "invalid user id")
		return
	}
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, 40031, "invalid schedule payload")
		return
	}

	s := schedule.Schedule{Day: req.Day, StartTime: req.StartTime, EndTime: req.EndTime}
	if s != (schedule.Schedule{}) {
		if !schedule.IsDayName(s.Day) {
			fail(c, http.StatusUnprocessableEntity, 42230, "Please select a valid day of the week.")
			return
		}
		if _, _, err := schedule.ParseHHMM(s.StartTime); err != nil {
			fail(c, http.StatusUnprocessableEntity, 42231, "Start time must be in HH:MM format.")
			return
		}
		if _, _, err := schedule.ParseHHMM(s.EndTime); err != nil {
			fail(c, http.StatusUnprocessableEntity, 42232, "End time must be in HH:MM format.")
			return
		}
	}

	if err := h.users.UpdateSchedule(c.Request.Context(), id, s); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			fail(c, http.StatusNotFound, 40430, "User not found.")
			return
		}
		h.log.Error("schedule update failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, 50031, "Failed to update schedule.")
		return
	}
	success(c, http.StatusOK, "Schedule updated successfully.", s)
}

// AllLogs returns every user's attendance records with owner details.
func (h *Handlers) AllLogs(c *gin.Context) {
	entries, err := h.att.AllLogs(c.Request.Context())
	if err != nil {
		h.log.Error("admin log query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, 50032, "Failed to load attendance logs.")
		return
	}
	filtered := filterFromQuery(c).ApplyEntries(entries)
	logs := make([]attendance.Log, len(filtered))
	for i, e := range filtered {
		logs[i] = e.Log
	}
	success(c, http.StatusOK, "", gin.H{
		"records": filtered,
		"stats":   attendance.Summarize(logs),
	})
}

// ExportAllLogs streams the filtered admin listing as CSV.
func (h *Handlers) ExportAllLogs(c *gin.Context) {
	entries, err := h.att.AllLogs(c.Request.Context())
	if err != nil {
		h.log.Error("admin log query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, 50033, "Failed to export attendance logs.")
		return
	}
	filtered := filterFromQuery(c).ApplyEntries(entries)

	filename := fmt.Sprintf("attendance_all_%s.csv", time.Now().In(h.loc).Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := attendance.WriteEntriesCSV(c.Writer, filtered); err != nil {
		h.log.Error("csv export failed", zap.Error(err))
	}
}
