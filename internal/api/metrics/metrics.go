// Package metrics defines and registers all custom Prometheus metrics for the
// stash API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry at package init
// via promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stash"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register/login/refresh outcomes.
// Labels:
//   - operation: "register", "login" or "refresh"
//   - result: "success", "invalid", "duplicate", "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// PasswordHashDuration measures bcrypt time including queueing on the worker pool.
// Label:
//   - op: "hash" or "verify"
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of password hash and verify operations.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"op"},
)

// WorkerQueueDepth tracks jobs waiting in each worker pool.
// Label:
//   - pool: pool name (e.g. "bcrypt")
var WorkerQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "worker_queue_depth",
		Help:      "Current number of jobs pending in a worker pool.",
	},
	[]string{"pool"},
)

// ── Item metrics ──────────────────────────────────────────────────────────────

// ItemMutationsTotal counts successful item writes.
// Labels:
//   - operation: "create", "update" or "delete"
//   - item_type: the item type after the write, or "" for deletes
var ItemMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "item_mutations_total",
		Help:      "Total number of item writes, by operation and item type.",
	},
	[]string{"operation", "item_type"},
)

// IdempotentReplaysTotal counts creates answered from the idempotency store.
var IdempotentReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotent_replays_total",
		Help:      "Total number of item creates served as idempotent replays.",
	},
)
