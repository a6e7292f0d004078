// Package metrics defines and registers the custom Prometheus metrics of the
// acquisitions API. It is the single source of truth for metric names,
// labels, and help strings.
//
// All metrics are registered with the default registry on import (promauto),
// which is the registry served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "acquisitions"

// ── User metrics ──────────────────────────────────────────────────────────────

// UserMutationsTotal counts update and delete attempts that reached the repository.
// Labels:
//   - action: "update" or "delete"
//   - result: "ok", "not_found", "conflict" or "error"
var UserMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_mutations_total",
		Help:      "Total number of user mutations, by action and result.",
	},
	[]string{"action", "result"},
)

// PolicyDenialsTotal counts requests rejected by the user policy.
// Label:
//   - reason: the denial reason (e.g. "forbidden-not-self", "forbidden-last-admin")
var PolicyDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "policy_denials_total",
		Help:      "Total number of requests denied by the user policy, by reason.",
	},
	[]string{"reason"},
)

// AuthAttemptsTotal counts sign-in attempts.
// Label:
//   - result: "ok" or "invalid_credentials"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_sign_in_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events by outcome.
// Label:
//   - result: "recorded", "failed" or "dropped" (queue full or stopped)
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events, labelled by outcome.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditRecordDuration measures how long persisting one audit event takes.
var AuditRecordDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_record_duration_seconds",
		Help:      "Duration of audit event persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)
