package metrics

import (
	"context"
	"time"

	httpmetrics "github.com/slok/go-http-metrics/metrics"

	"github.com/agentjobs/validation-gateway/module"
)

type NoopCollector struct{}

var _ module.ValidationMetrics = (*NoopCollector)(nil)
var _ module.RestMetrics = (*NoopCollector)(nil)

func NewNoopCollector() *NoopCollector {
	return &NoopCollector{}
}

func (nc *NoopCollector) AssignmentsActive(int) {}
func (nc *NoopCollector) EvaluationCompleted(bool, []string) {}
func (nc *NoopCollector) CommitSubmitted(bool) {}
func (nc *NoopCollector) RevealSubmitted(bool) {}
func (nc *NoopCollector) RevealScheduled(time.Duration, bool) {}
func (nc *NoopCollector) NotificationSent(string, bool) {}
func (nc *NoopCollector) RetryScheduled() {}

func (nc *NoopCollector) ObserveHTTPRequestDuration(context.Context, httpmetrics.HTTPReqProperties, time.Duration) {}
func (nc *NoopCollector) ObserveHTTPResponseSize(context.Context, httpmetrics.HTTPReqProperties, int64) {}
func (nc *NoopCollector) AddInflightRequests(context.Context, httpmetrics.HTTPProperties, int) {}
func (nc *NoopCollector) AddTotalRequests(context.Context, string, string) {}
