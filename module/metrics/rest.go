package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	httpmetrics "github.com/slok/go-http-metrics/metrics"
	metricsProm "github.com/slok/go-http-metrics/metrics/prometheus"

	"github.com/agentjobs/validation-gateway/module"
)

// RestCollector records latency, response size and in-flight requests of the
// HTTP API, plus a request counter per route.
type RestCollector struct {
	httpmetrics.Recorder
	totalRequests *prometheus.CounterVec
}

var _ module.RestMetrics = (*RestCollector)(nil)

func NewRestCollector(registerer prometheus.Registerer) *RestCollector {
	rc := &RestCollector{
		Recorder: metricsProm.NewRecorder(metricsProm.Config{
			Prefix:   namespaceValidation + "_" + subsystemREST,
			Registry: registerer,
		}),
		totalRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceValidation,
			Subsystem: subsystemREST,
			Name:      "requests_total",
			Help:      "the number of HTTP API requests per route",
		}, []string{LabelMethod, LabelRoute}),
	}
	registerer.MustRegister(rc.totalRequests)
	return rc
}

func (rc *RestCollector) AddTotalRequests(_ context.Context, method string, routeName string) {
	rc.totalRequests.WithLabelValues(method, routeName).Inc()
}
