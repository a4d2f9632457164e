package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentjobs/validation-gateway/module"
)

var _ module.ValidationMetrics = (*ValidationCollector)(nil)

type ValidationCollector struct {
	assignmentsActive  prometheus.Gauge       // assignments currently tracked in memory
	evaluationsTotal   *prometheus.CounterVec // evaluations by vote
	reasonsTotal       *prometheus.CounterVec // evaluation reasons by code
	commitsTotal       *prometheus.CounterVec // commit attempts by result
	revealsTotal       *prometheus.CounterVec // reveal attempts by result
	revealDelaySeconds *prometheus.HistogramVec
	notificationsTotal *prometheus.CounterVec // notifications by event type and result
	retriesTotal       prometheus.Counter
}

func NewValidationCollector(registerer prometheus.Registerer) *ValidationCollector {

	assignmentsActive := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      "assignments_active",
		Namespace: namespaceValidation,
		Subsystem: subsystemCoordinator,
		Help:      "the number of validation assignments tracked in memory",
	})

	evaluationsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "evaluations_total",
		Namespace: namespaceValidation,
		Subsystem: subsystemEvaluator,
		Help:      "total number of submission evaluations by resulting vote",
	}, []string{LabelVote})

	reasonsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "evaluation_reasons_total",
		Namespace: namespaceValidation,
		Subsystem: subsystemEvaluator,
		Help:      "total number of reason codes attached to evaluations",
	}, []string{LabelReason})

	commitsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "commits_total",
		Namespace: namespaceValidation,
		Subsystem: subsystemChain,
		Help:      "total number of commit transactions by result",
	}, []string{LabelResult})

	revealsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "reveals_total",
		Namespace: namespaceValidation,
		Subsystem: subsystemChain,
		Help:      "total number of reveal transactions by result",
	}, []string{LabelResult})

	revealDelaySeconds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:      "reveal_delay_seconds",
		Namespace: namespaceValidation,
		Subsystem: subsystemScheduler,
		Help:      "delay between commit and the armed reveal timer",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 900, 3600},
	}, []string{LabelKind})

	notificationsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "notifications_total",
		Namespace: namespaceValidation,
		Subsystem: subsystemNotifier,
		Help:      "total number of agent notifications by event type and delivery result",
	}, []string{LabelEventType, LabelResult})

	retriesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name:      "retries_scheduled_total",
		Namespace: namespaceValidation,
		Subsystem: subsystemCoordinator,
		Help:      "total number of evaluation attempts scheduled for retry",
	})

	registerer.MustRegister(
		assignmentsActive,
		evaluationsTotal,
		reasonsTotal,
		commitsTotal,
		revealsTotal,
		revealDelaySeconds,
		notificationsTotal,
		retriesTotal,
	)

	return &ValidationCollector{
		assignmentsActive:  assignmentsActive,
		evaluationsTotal:   evaluationsTotal,
		reasonsTotal:       reasonsTotal,
		commitsTotal:       commitsTotal,
		revealsTotal:       revealsTotal,
		revealDelaySeconds: revealDelaySeconds,
		notificationsTotal: notificationsTotal,
		retriesTotal:       retriesTotal,
	}
}

func (vc *ValidationCollector) AssignmentsActive(count int) {
	vc.assignmentsActive.Set(float64(count))
}

func (vc *ValidationCollector) EvaluationCompleted(approve bool, reasons []string) {
	vote := VoteReject
	if approve {
		vote = VoteApprove
	}
	vc.evaluationsTotal.WithLabelValues(vote).Inc()
	for _, reason := range reasons {
		vc.reasonsTotal.WithLabelValues(reason).Inc()
	}
}

func (vc *ValidationCollector) CommitSubmitted(success bool) {
	vc.commitsTotal.WithLabelValues(resultLabel(success)).Inc()
}

func (vc *ValidationCollector) RevealSubmitted(success bool) {
	vc.revealsTotal.WithLabelValues(resultLabel(success)).Inc()
}

func (vc *ValidationCollector) RevealScheduled(delay time.Duration, fallback bool) {
	kind := KindComputed
	if fallback {
		kind = KindFallback
	}
	vc.revealDelaySeconds.WithLabelValues(kind).Observe(delay.Seconds())
}

func (vc *ValidationCollector) NotificationSent(eventType string, delivered bool) {
	vc.notificationsTotal.WithLabelValues(eventType, resultLabel(delivered)).Inc()
}

func (vc *ValidationCollector) RetryScheduled() {
	vc.retriesTotal.Inc()
}

func resultLabel(success bool) string {
	if success {
		return ResultSuccess
	}
	return ResultFailure
}
