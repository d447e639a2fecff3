// Package metrics registers the application's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntriesCreated counts ledger entries written, by transaction kind.
	EntriesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopbook_entries_created_total",
		Help: "Number of ledger entries created.",
	}, []string{"kind"})

	// EntriesDeleted counts entries moved to the recycle bin.
	EntriesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopbook_entries_deleted_total",
		Help: "Number of ledger entries soft-deleted.",
	})

	// EntriesRestored counts entries brought back from the recycle bin.
	EntriesRestored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopbook_entries_restored_total",
		Help: "Number of ledger entries restored from the recycle bin.",
	})

	// RowsPurged counts physical removals, by row type (entry or party).
	RowsPurged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopbook_rows_purged_total",
		Help: "Number of rows permanently purged from the recycle bin.",
	}, []string{"row"})

	// ReconcileRuns counts per-party recalculations, by outcome.
	ReconcileRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopbook_reconcile_runs_total",
		Help: "Number of per-party aggregate recalculations.",
	}, []string{"outcome"})

	// ReconcileDrift counts recalculations that materially changed a stored
	// aggregate, the signal for the accumulator's known blind spots.
	ReconcileDrift = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopbook_reconcile_drift_total",
		Help: "Number of recalculations that corrected a drifted aggregate.",
	})

	// HTTPRequestDuration observes request latency per route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shopbook_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
