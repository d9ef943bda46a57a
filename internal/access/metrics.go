// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameDB Contributors

package access

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for access decisions and audit activity.
var (
	// decisionDuration tracks the latency of engine decisions.
	decisionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gamedb_access_decision_duration_seconds",
		Help:    "Histogram of access decision latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// decisionsTotal counts decisions by operation and outcome.
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamedb_access_decisions_total",
		Help: "Total number of access decisions",
	}, []string{"operation", "outcome"})

	// auditEntriesTotal counts appended audit entries by action.
	auditEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamedb_audit_entries_total",
		Help: "Total number of audit entries appended",
	}, []string{"action"})
)

// observeDecision records one completed engine decision.
func observeDecision(operation, outcome string, start time.Time) {
	decisionDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	decisionsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordAuditEntry records that an audit entry was appended. Called by
// the service layer after a successful append.
func RecordAuditEntry(action AuditAction) {
	auditEntriesTotal.WithLabelValues(string(action)).Inc()
}
