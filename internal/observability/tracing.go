// Package observability wires OpenTelemetry tracing and structured logging.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"resumedesk/internal/config"
)

// InitTracing 安装全局 TracerProvider；未启用时返回空操作的 shutdown。
func InitTracing(ctx context.Context, cfg config.TracingConfig, logger *slog.Logger) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return noop, nil
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "resumedesk"
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)))
	if err != nil {
		logger.Warn("otel resource init failed (continuing)", slog.Any("error", err))
	}

	exporter, err := buildExporter(ctx, cfg, os.Stdout)
	if err != nil {
		return noop, fmt.Errorf("init trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("otel tracing initialized",
		slog.String("service", serviceName),
		slog.String("exporter", cfg.Exporter),
	)
	return tp.Shutdown, nil
}

func buildExporter(ctx context.Context, cfg config.TracingConfig, stdout io.Writer) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Exporter)) {
	case "otlp":
		opts := []otlptracehttp.Option{}
		if endpoint := strings.TrimSpace(cfg.OTLPEndpoint); endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpointURL(endpoint))
		}
		return otlptracehttp.New(ctx, opts...)
	case "", "stdout":
		return stdouttrace.New(stdouttrace.WithWriter(stdout))
	default:
		return nil, fmt.Errorf("unsupported trace exporter %q", cfg.Exporter)
	}
}
