// Package telemetry configures OpenTelemetry tracing. Spans go to an OTLP
// HTTP collector when an endpoint is set and to a JSON file otherwise.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.uber.org/zap"
)

const serviceName = "studybuddy"

// Options configures Setup.
type Options struct {
	Enabled     bool
	Endpoint    string
	Insecure    bool
	SampleRatio float64
	File        string
	Version     string
}

// ShutdownFunc flushes pending spans and releases exporters.
type ShutdownFunc func(context.Context) error

func nopShutdown(context.Context) error { return nil }

// Setup installs the global tracer provider. When tracing is disabled the
// global no-op provider stays in place.
func Setup(ctx context.Context, opts Options, log *zap.Logger) (ShutdownFunc, error) {
	if !opts.Enabled {
		return nopShutdown, nil
	}
	if log == nil {
		log = zap.NewNop()
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(opts.Version),
		),
	)
	if err != nil {
		log.Warn("otel resource init failed, continuing", zap.Error(err))
	}

	exporter, closeFile, err := buildExporter(ctx, opts)
	if err != nil {
		return nopShutdown, fmt.Errorf("trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	log.Info("tracing initialized", zap.String("endpoint", opts.Endpoint), zap.String("file", opts.File))

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), closeFile())
	}, nil
}

func buildExporter(ctx context.Context, opts Options) (sdktrace.SpanExporter, func() error, error) {
	if opts.Endpoint != "" {
		httpOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(opts.Endpoint)}
		if opts.Insecure {
			httpOpts = append(httpOpts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(ctx, httpOpts...)
		return exp, func() error { return nil }, err
	}

	if opts.File == "" {
		return nil, nil, errors.New("telemetry needs an endpoint or a file")
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(f))
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return exp, f.Close, nil
}
