package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/sofiagarciap/preprocesador-datos/internal/config"
)

const (
	MeterName = "preprocesador"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	EnableTracing  bool
	EnableMetrics  bool
	// TraceOutput receives spans as JSON; nil means TraceFile, or stderr
	// when no file is set either
	TraceOutput io.Writer
	TraceFile   string
	// MetricsFile is where WriteMetrics puts the Prometheus textfile
	MetricsFile string
}

// OTelConfigFrom maps the telemetry section of the application config
func OTelConfigFrom(cfg config.TelemetryConfig) *OTelConfig {
	return &OTelConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: config.AppVersion,
		EnableTracing:  cfg.Tracing,
		EnableMetrics:  cfg.Metrics,
		TraceFile:      cfg.TraceFile,
		MetricsFile:    cfg.MetricsFile,
	}
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry
	Logger         *slog.Logger

	metricsFile string
	traceFile   *os.File
}

// InitializeOTel sets up tracing and metrics as configured. Disabled signals
// leave their provider fields nil.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = OTelConfigFrom(config.Default().Telemetry)
	}
	if logger == nil {
		logger = GetLogger()
	}
	ctx := context.Background()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("service.instance.id", NewSessionID()),
	)

	providers := &OTelProviders{Logger: logger, metricsFile: cfg.MetricsFile}

	if cfg.EnableTracing {
		if err := initializeTracing(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}
	if cfg.EnableMetrics {
		if err := initializeMetrics(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.DebugContext(ctx, "otel_initialized",
		slog.String("service", cfg.ServiceName),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))
	return providers, nil
}

// initializeTracing sets up the stdout span exporter
func initializeTracing(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	out := cfg.TraceOutput
	if out == nil && cfg.TraceFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return fmt.Errorf("failed to create trace directory: %w", err)
		}
		f, err := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open trace file: %w", err)
		}
		providers.traceFile = f
		out = f
	}
	if out == nil {
		out = os.Stderr
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)
	return nil
}

// initializeMetrics bridges the otel meter into a private Prometheus registry
func initializeMetrics(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	reg := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	providers.Registry = reg
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetMeterProvider(mp)
	return nil
}

// PipelineMetrics holds the stage instruments
type PipelineMetrics struct {
	StageExecutions metric.Int64Counter
	StageDuration   metric.Float64Histogram
	StageRejections metric.Int64Counter
	RowsDropped     metric.Int64Counter
	DatasetsLoaded  metric.Int64Counter
	FilesWritten    metric.Int64Counter
}

// CreatePipelineMetrics registers the stage instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	executions, err := meter.Int64Counter(
		"pipeline_stage_executions",
		metric.WithDescription("Stage invocations by stage and outcome"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stage executions counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		"pipeline_stage_duration",
		metric.WithDescription("Stage execution time"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.001, 0.01, 0.1, 1, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stage duration histogram: %w", err)
	}

	rejections, err := meter.Int64Counter(
		"pipeline_stage_rejections",
		metric.WithDescription("Stage invocations refused by the gate or failed"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stage rejections counter: %w", err)
	}

	dropped, err := meter.Int64Counter(
		"pipeline_rows_dropped",
		metric.WithDescription("Rows removed by missing-value or outlier handling"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rows dropped counter: %w", err)
	}

	loaded, err := meter.Int64Counter(
		"datasets_loaded",
		metric.WithDescription("Datasets loaded by source format"),
		metric.WithUnit("{dataset}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create datasets loaded counter: %w", err)
	}

	written, err := meter.Int64Counter(
		"files_written",
		metric.WithDescription("Exports and plots written by kind"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create files written counter: %w", err)
	}

	return &PipelineMetrics{
		StageExecutions: executions,
		StageDuration:   duration,
		StageRejections: rejections,
		RowsDropped:     dropped,
		DatasetsLoaded:  loaded,
		FilesWritten:    written,
	}, nil
}

// RecordLoad counts a dataset loaded from format. A nil receiver does
// nothing.
func (m *PipelineMetrics) RecordLoad(ctx context.Context, format string) {
	if m == nil {
		return
	}
	m.DatasetsLoaded.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}

// RecordFile counts a written export or plot. A nil receiver does nothing.
func (m *PipelineMetrics) RecordFile(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.FilesWritten.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// WriteMetrics writes the registry in Prometheus text format. It does
// nothing when metrics are disabled or no file is configured.
func (p *OTelProviders) WriteMetrics() error {
	if p == nil || p.Registry == nil || p.metricsFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p.metricsFile), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(p.metricsFile, p.Registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// Shutdown flushes and stops the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if p.traceFile != nil {
		if err := p.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace file close: %w", err))
		}
		p.traceFile = nil
	}
	return errors.Join(errs...)
}

// TraceIDFromContext returns the current span's trace ID, or "" when the
// context carries no sampled span
func TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
