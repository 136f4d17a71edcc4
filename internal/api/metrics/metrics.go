// Package metrics defines all custom Prometheus metrics for the consignment
// tracker. It is the single source of truth for metric names, labels, and
// help strings; promauto registers everything with the default registry at
// package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tracker"

// ── Bot command metrics ───────────────────────────────────────────────────────

// CommandsProcessedTotal counts bot commands that reached the executor.
// Labels:
//   - verb: the command verb ("status", "create", "addcp", "list", "simulate",
//     "remove_sub", "unknown")
//   - result: "ok" or "error"
var CommandsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_processed_total",
		Help:      "Total number of bot commands executed, by verb and result.",
	},
	[]string{"verb", "result"},
)

// ParseErrorsTotal counts inbound command lines the parser rejected.
// Label:
//   - verb: the offending verb as reported by the parse error
var ParseErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parse_errors_total",
		Help:      "Total number of malformed bot command lines.",
	},
	[]string{"verb"},
)

// InboundDedupTotal counts idempotency decisions on inbound bot messages.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new message, processed)
var InboundDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inbound_dedup_total",
		Help:      "Total number of inbound message dedup checks, by result.",
	},
	[]string{"result"},
)

// WebhookRejectedTotal counts webhook calls rejected before reaching the
// executor (bad token, unparsable payload).
var WebhookRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_rejected_total",
		Help:      "Total number of rejected bot webhook requests, by reason.",
	},
	[]string{"reason"},
)

// QueueDepth tracks the number of jobs waiting in each webhook worker channel.
var QueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current number of jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Pipeline metrics ──────────────────────────────────────────────────────────

// CheckpointsAppendedTotal counts committed checkpoints, by resulting status.
var CheckpointsAppendedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkpoints_appended_total",
		Help:      "Total number of checkpoints appended, by derived status.",
	},
	[]string{"status"},
)

// NotificationsTotal counts per-subscriber notification outcomes.
// Label:
//   - result: "sent", "failed", or "skipped" (duplicate checkpoint fan-out)
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of per-subscriber notification outcomes.",
	},
	[]string{"result"},
)

// NotificationDuration measures one full fan-out, from dedup check to the
// last delivery attempt finishing.
var NotificationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of checkpoint notification fan-out.",
		Buckets:   prometheus.DefBuckets,
	},
)
