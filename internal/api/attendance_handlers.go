package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timeclock/internal/attendance"
)

// filterFromQuery reads the listing filters: month, year, status, q.
func filterFromQuery(c *gin.Context) attendance.Filter {
	var f attendance.Filter
	if v := c.Query("month"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 12 {
			f.Month = n
		}
	}
	if v := c.Query("year"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Year = n
		}
	}
	f.Status = c.Query("status")
	f.Search = c.Query("q")
	return f
}

// History returns the user's filtered attendance records with summary counts.
func (h *Handlers) History(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	logs, err := h.att.History(c.Request.Context(), u.ID)
	if err != nil {
		h.log.Error("history query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, 50020, "Failed to load attendance records.")
		return
	}
	filtered := filterFromQuery(c).Apply(logs)
	success(c, http.StatusOK, "", gin.H{
		"records": filtered,
		"stats":   attendance.Summarize(filtered),
	})
}

// HistoryStats returns only the summary counts, feeding the remarks chart.
func (h *Handlers) HistoryStats(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	logs, err := h.att.History(c.Request.Context(), u.ID)
	if err != nil {
		h.log.Error("history query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, 50021, "Failed to load attendance records.")
		return
	}
	success(c, http.StatusOK, "", attendance.Summarize(filterFromQuery(c).Apply(logs)))
}

// ExportHistory streams the filtered history as a CSV attachment.
func (h *Handlers) ExportHistory(c *gin.Context) {
	u, ok := h.currentUser(c)
	if !ok {
		return
	}
	logs, err := h.att.History(c.Request.Context(), u.ID)
	if err != nil {
		h.log.Error("history query failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, 50022, "Failed to export attendance records.")
		return
	}
	filtered := filterFromQuery(c).Apply(logs)

	filename := fmt.Sprintf("attendance_history_%s.csv", time.Now().In(h.loc).Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := attendance.WriteCSV(c.Writer, filtered); err != nil {
		h.log.Error("csv export failed", zap.Error(err))
	}
}
