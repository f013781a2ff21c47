// Package metrics defines and registers all custom Prometheus metrics for
// the roster API. It is the single source of truth for metric names, labels,
// and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "roster"

// MutationsTotal counts snapshot mutations that completed successfully.
// Label:
//   - action: "create", "update", "delete", "renew", "reorder", "restore"
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of roster mutations successfully persisted.",
	},
	[]string{"action"},
)

// MutationErrorsTotal counts mutations that failed.
// Labels:
//   - action: the attempted mutation
//   - reason: short failure description (e.g. "invalid_date", "write_failed")
var MutationErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutation_errors_total",
		Help:      "Total number of roster mutations that failed.",
	},
	[]string{"action", "reason"},
)

// AssistRequestsTotal counts text-generation requests by kind and outcome.
// Labels:
//   - kind: "reminder", "summary", "password", "parse"
//   - outcome: "ok" or "fallback"
var AssistRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assist_requests_total",
		Help:      "Total number of assist requests, by kind and outcome.",
	},
	[]string{"kind", "outcome"},
)

// BackupOperationsTotal counts backup operations by kind.
// Labels:
//   - op: "export", "restore", "cloud_upload", "cloud_restore"
//   - outcome: "ok" or "error"
var BackupOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backup_operations_total",
		Help:      "Total number of backup operations, by kind and outcome.",
	},
	[]string{"op", "outcome"},
)

// BulkJobsEnqueuedTotal counts bulk-reminder jobs handed to the dispatcher.
var BulkJobsEnqueuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bulk_jobs_enqueued_total",
		Help:      "Total number of bulk reminder jobs enqueued.",
	},
)

// ViewDuration measures how long building the derived roster view takes.
var ViewDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "view_duration_seconds",
		Help:      "Duration of derived roster view computation.",
		Buckets:   prometheus.DefBuckets,
	},
)
