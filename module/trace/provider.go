package trace

import (
	"context"

	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NewTracerProvider returns a tracer provider sampling the given ratio of
// traces and writing finished spans to the logger. A zero ratio disables
// tracing. The returned function flushes and stops the provider.
func NewTracerProvider(log zerolog.Logger, sampleRatio float64) (trace.TracerProvider, func(context.Context) error) {
	if sampleRatio <= 0 {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio))),
		sdktrace.WithSyncer(NewLogExporter(log)),
	)
	return provider, provider.Shutdown
}

// LogExporter writes finished spans as debug log lines.
type LogExporter struct {
	log zerolog.Logger
}

var _ sdktrace.SpanExporter = (*LogExporter)(nil)

func NewLogExporter(log zerolog.Logger) *LogExporter {
	return &LogExporter{
		log: log.With().Str("module", "tracer").Logger(),
	}
}

func (e *LogExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		event := e.log.Debug().
			Str("span", span.Name()).
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Dur("duration", span.EndTime().Sub(span.StartTime())).
			Str("status", span.Status().Code.String())
		for _, attr := range span.Attributes() {
			event = event.Str(string(attr.Key), attr.Value.Emit())
		}
		event.Msg("span finished")
	}
	return nil
}

func (e *LogExporter) Shutdown(context.Context) error {
	return nil
}
