package trace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/module"
	"github.com/agentjobs/validation-gateway/utils/logging"
)

const (
	tracerName          = "validation-gateway"
	spanEvaluateCommit  = "validation.evaluate_and_commit"
	OutcomeSuccess      = "success"
	OutcomeFailure      = "failure"
	attributeJobID      = "job.id"
	attributeValidator  = "validator.address"
	attributeOutcome    = "outcome"
	attributeDurationMs = "duration_ms"
)

// ErrUnknownSpan is returned when a span handle does not refer to an open span.
var ErrUnknownSpan = errors.New("unknown span")

type openSpan struct {
	span      trace.Span
	handle    validation.SpanHandle
	startedAt time.Time
}

// Telemetry measures evaluation attempts as tracing spans. Closing a span
// yields an energy sample derived from the span duration; publishing logs the
// sample as the measurement record.
type Telemetry struct {
	log    zerolog.Logger
	tracer trace.Tracer
	now    func() time.Time

	mu    sync.Mutex
	spans map[string]*openSpan
}

var _ module.Telemetry = (*Telemetry)(nil)

func NewTelemetry(log zerolog.Logger, provider trace.TracerProvider) *Telemetry {
	return &Telemetry{
		log:    log.With().Str("module", "telemetry").Logger(),
		tracer: provider.Tracer(tracerName),
		now:    time.Now,
		spans:  make(map[string]*openSpan),
	}
}

func (t *Telemetry) StartSpan(ctx context.Context, jobID validation.JobID, validator common.Address) validation.SpanHandle {
	_, span := t.tracer.Start(ctx, spanEvaluateCommit, trace.WithAttributes(
		attribute.String(attributeJobID, jobID.String()),
		attribute.String(attributeValidator, logging.Address(validator)),
	))

	startedAt := t.now().UTC()
	handle := validation.SpanHandle{
		ID:        uuid.NewString(),
		JobID:     jobID,
		Validator: validator,
		StartedAt: startedAt,
	}

	t.mu.Lock()
	t.spans[handle.ID] = &openSpan{span: span, handle: handle, startedAt: startedAt}
	t.mu.Unlock()

	return handle
}

func (t *Telemetry) EndSpan(handle validation.SpanHandle, outcome string) (*validation.EnergySample, error) {
	t.mu.Lock()
	open, ok := t.spans[handle.ID]
	delete(t.spans, handle.ID)
	t.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("span %s: %w", handle.ID, ErrUnknownSpan)
	}

	finishedAt := t.now().UTC()
	duration := finishedAt.Sub(open.startedAt)

	open.span.SetAttributes(
		attribute.String(attributeOutcome, outcome),
		attribute.Int64(attributeDurationMs, duration.Milliseconds()),
	)
	if outcome != OutcomeSuccess {
		open.span.SetStatus(codes.Error, outcome)
	} else {
		open.span.SetStatus(codes.Ok, "")
	}
	open.span.End(trace.WithTimestamp(finishedAt))

	return &validation.EnergySample{
		SpanID:     handle.ID,
		JobID:      handle.JobID,
		Validator:  handle.Validator,
		Outcome:    outcome,
		StartedAt:  open.startedAt,
		FinishedAt: finishedAt,
		DurationMs: duration.Milliseconds(),
	}, nil
}

func (t *Telemetry) Publish(_ context.Context, sample *validation.EnergySample) error {
	if sample == nil {
		return fmt.Errorf("nil energy sample")
	}
	t.log.Info().
		Str("span_id", sample.SpanID).
		Str(logging.KeyJobID, sample.JobID.String()).
		Str(logging.KeyValidator, logging.Address(sample.Validator)).
		Str(attributeOutcome, sample.Outcome).
		Int64(attributeDurationMs, sample.DurationMs).
		Msg("energy sample published")
	return nil
}

// OpenSpans returns the number of spans that were started but not ended.
func (t *Telemetry) OpenSpans() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.spans)
}
