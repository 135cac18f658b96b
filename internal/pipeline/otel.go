package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/sofiagarciap/preprocesador-datos/internal/infrastructure"
)

const (
	TracerName = "preprocesador.pipeline"
)

// StageTracer provides OpenTelemetry instrumentation for stage invocations
type StageTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewStageTracer creates a stage tracer. Metrics are recorded only when the
// providers carry a meter.
func NewStageTracer(providers *infrastructure.OTelProviders) (*StageTracer, error) {
	st := &StageTracer{tracer: otel.Tracer(TracerName)}
	if providers == nil {
		return st, nil
	}
	if providers.Tracer != nil {
		st.tracer = providers.Tracer
	}
	if providers.Meter != nil {
		m, err := infrastructure.CreatePipelineMetrics(providers.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
		}
		st.metrics = m
	}
	return st, nil
}

// Metrics returns the instruments shared with loaders and writers; nil when
// metrics are disabled
func (st *StageTracer) Metrics() *infrastructure.PipelineMetrics {
	if st == nil {
		return nil
	}
	return st.metrics
}

// TraceStage creates a span for one stage invocation
func (st *StageTracer) TraceStage(ctx context.Context, stage StageID, state State) (context.Context, trace.Span) {
	return st.tracer.Start(ctx, fmt.Sprintf("pipeline.stage.%s", stage),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("session.id", infrastructure.GetSessionID(ctx)),
			attribute.String("stage.id", string(stage)),
			attribute.String("pipeline.state", state.String()),
		),
	)
}

// RecordStage closes the span and records the stage metrics
func (st *StageTracer) RecordStage(ctx context.Context, span trace.Span, stage StageID, report *Report, err error, duration time.Duration) {
	defer span.End()

	outcome := string(OutcomeRejected)
	if report != nil {
		outcome = string(report.Outcome)
		span.SetAttributes(
			attribute.String("stage.outcome", outcome),
			attribute.String("stage.strategy", report.Strategy),
			attribute.Int("dataset.rows_before", report.RowsBefore),
			attribute.Int("dataset.rows_after", report.RowsAfter),
		)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, outcome)
	}

	if st.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("stage", string(stage)),
		attribute.String("outcome", outcome),
	)
	st.metrics.StageExecutions.Add(ctx, 1, attrs)
	st.metrics.StageDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		st.metrics.StageRejections.Add(ctx, 1, metric.WithAttributes(
			attribute.String("stage", string(stage)),
			attribute.String("error.type", string(GetErrorType(err))),
		))
	}
	if report != nil && report.RowsBefore > report.RowsAfter {
		st.metrics.RowsDropped.Add(ctx, int64(report.RowsBefore-report.RowsAfter),
			metric.WithAttributes(attribute.String("stage", string(stage))))
	}
}
