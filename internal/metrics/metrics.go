// Package metrics exposes Prometheus instruments for the billing and access
// surfaces. All instruments are registered on the default registry and served
// from /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEvents counts received billing webhook events by type and
	// outcome (ok, error).
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicegate_webhook_events_total",
		Help: "Billing webhook events received, by event type and outcome.",
	}, []string{"event_type", "outcome"})

	// AccessDecisions counts access gate answers.
	AccessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicegate_access_decisions_total",
		Help: "Access gate decisions, by result (authorized, denied, error).",
	}, []string{"result"})

	// CredentialMints counts ephemeral credential requests against the
	// realtime provider.
	CredentialMints = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicegate_credential_mints_total",
		Help: "Ephemeral credential mint attempts, by outcome (ok, error).",
	}, []string{"outcome"})

	// CredentialMintDuration observes provider round-trip latency.
	CredentialMintDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voicegate_credential_mint_duration_seconds",
		Help:    "Latency of ephemeral credential mints against the realtime provider.",
		Buckets: prometheus.DefBuckets,
	})

	// DiagnosticActions counts admin diagnostics usage by action.
	DiagnosticActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voicegate_diagnostic_actions_total",
		Help: "Admin diagnostic actions performed, by action name.",
	}, []string{"action"})

	// EventsPurged counts webhook ledger rows removed by the cleanup job.
	EventsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicegate_webhook_events_purged_total",
		Help: "Processed webhook event records purged by the retention job.",
	})
)
