package module

import (
	"context"
	"time"

	httpmetrics "github.com/slok/go-http-metrics/metrics"
)

// ValidationMetrics collects metrics of the validation coordinator.
type ValidationMetrics interface {
	// AssignmentsActive reports the number of assignments currently tracked in memory.
	AssignmentsActive(count int)

	// EvaluationCompleted is called once per evaluation with its vote and reasons.
	EvaluationCompleted(approve bool, reasons []string)

	// CommitSubmitted is called after each commit attempt reached the chain or failed.
	CommitSubmitted(success bool)

	// RevealSubmitted is called after each reveal attempt reached the chain or failed.
	RevealSubmitted(success bool)

	// RevealScheduled is called whenever a reveal timer is armed.
	RevealScheduled(delay time.Duration, fallback bool)

	// NotificationSent is called after each notification attempt.
	NotificationSent(eventType string, delivered bool)

	// RetryScheduled is called when a failed attempt is scheduled for retry.
	RetryScheduled()
}

// RestMetrics collects metrics of the HTTP API.
type RestMetrics interface {
	httpmetrics.Recorder
	AddTotalRequests(ctx context.Context, method string, routeName string)
}
