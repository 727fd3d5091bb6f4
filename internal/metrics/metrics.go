// Package metrics registers the service's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClockIns counts successful clock-ins by in-status label.
	ClockIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timeclock_clock_ins_total",
		Help: "Successful clock-ins by status.",
	}, []string{"status"})

	// ClockOuts counts successful clock-outs by out-status label.
	ClockOuts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timeclock_clock_outs_total",
		Help: "Successful clock-outs by status.",
	}, []string{"status"})

	// BackfillRecords counts synthesized missed-schedule logs.
	BackfillRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timeclock_backfill_records_total",
		Help: "Missed-schedule records synthesized by the backfill scan.",
	})

	// SignInFailures counts rejected sign-ins by reason.
	SignInFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timeclock_sign_in_failures_total",
		Help: "Rejected sign-ins by reason.",
	}, []string{"reason"})
)
