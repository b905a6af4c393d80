// Package metrics defines the custom Prometheus metrics of the admin console.
// It is the single source of truth for metric names, labels, and help strings.
//
// Metrics are registered with the default registry through promauto when the
// package is imported; the echoprometheus handler serves them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "admin_console"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginAttempts counts login attempts.
// Label:
//   - result: "success" or "rejected"
var LoginAttempts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ActiveSessions tracks the number of open workspaces.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Current number of open session workspaces.",
	},
)

// ── Directory metrics ─────────────────────────────────────────────────────────

// StaffMutations counts successful roster changes.
// Label:
//   - action: the activity action recorded (e.g. "CREATE_USER", "CHANGE_ROLE")
var StaffMutations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "staff_mutations_total",
		Help:      "Total number of roster mutations, by action.",
	},
	[]string{"action"},
)

// ── Conversation metrics ──────────────────────────────────────────────────────

// MessagesSent counts messages delivered between staff members.
var MessagesSent = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Total number of direct messages sent.",
	},
)

// ── Mail metrics ──────────────────────────────────────────────────────────────

// MailQueueDepth tracks the number of mail jobs waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of mail jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// MailJobs counts mail jobs handed to the sender.
// Label:
//   - result: "sent", "error", "rejected" or "dropped"
var MailJobs = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_jobs_total",
		Help:      "Total number of mail jobs processed, by result.",
	},
	[]string{"result"},
)

// MailSendDuration measures how long a sender takes to accept one job.
var MailSendDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mail_send_duration_seconds",
		Help:      "Duration of handing a mail job to the delivery backend.",
		Buckets:   prometheus.DefBuckets,
	},
)
