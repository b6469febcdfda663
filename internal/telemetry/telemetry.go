// Package telemetry sets up the file-backed logger and the OpenTelemetry
// providers. Nothing is written to the terminal, which belongs to the REPL.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const serviceName = "kashar"

// file names under the log directory
const (
	LogFile     = "kashar.log"
	TracesFile  = "kashar_traces.log"
	MetricsFile = "kashar_metrics.log"
)

func rotatingFile(logDir, name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir, name),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}

// InitLogger installs a JSON slog logger writing to <logDir>/kashar.log and
// makes it the default. Close the returned closer on exit.
func InitLogger(logDir string, debug bool) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	file := rotatingFile(logDir, LogFile)
	logger := slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})).
		With("service", serviceName)
	slog.SetDefault(logger)
	return logger, file, nil
}

// Options configures Init
type Options struct {
	LogDir         string
	Version        string
	MetricInterval time.Duration // default 10s
}

// Providers holds the tracer and meter handed to instrumented components
type Providers struct {
	Tracer trace.Tracer
	Meter  metric.Meter

	tp    *sdktrace.TracerProvider
	mp    *sdkmetric.MeterProvider
	files []io.Closer
}

// Init creates the trace and metric pipelines. Spans are exported to
// <logDir>/kashar_traces.log, metrics to <logDir>/kashar_metrics.log.
func Init(ctx context.Context, opts Options) (*Providers, error) {
	if opts.MetricInterval <= 0 {
		opts.MetricInterval = 10 * time.Second
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if err := os.MkdirAll(opts.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(opts.Version),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	p := &Providers{}

	traceFile := rotatingFile(opts.LogDir, TracesFile)
	p.files = append(p.files, traceFile)
	spans, err := stdouttrace.New(stdouttrace.WithWriter(traceFile))
	if err != nil {
		p.closeFiles()
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	p.tp = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spans),
		sdktrace.WithResource(res),
	)

	metricsFile := rotatingFile(opts.LogDir, MetricsFile)
	p.files = append(p.files, metricsFile)
	metrics, err := stdoutmetric.New(stdoutmetric.WithWriter(metricsFile))
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = p.tp.Shutdown(shutdownCtx)
		p.closeFiles()
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}
	p.mp = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metrics, sdkmetric.WithInterval(opts.MetricInterval))),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(p.tp)
	otel.SetMeterProvider(p.mp)
	p.Tracer = p.tp.Tracer(serviceName)
	p.Meter = p.mp.Meter(serviceName)
	return p, nil
}

// Shutdown flushes pending spans and metrics and closes the export files
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	if err := p.tp.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
	}
	if err := p.mp.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
	}
	if err := p.closeFiles(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (p *Providers) closeFiles() error {
	var errs []error
	for _, f := range p.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
