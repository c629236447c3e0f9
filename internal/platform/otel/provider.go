// Package otel wires OpenTelemetry tracing for somnia-jump binaries.
package otel

import (
	"context"
	"fmt"
	"strings"

	"github.com/daemonn69/somnia-jump/internal/platform/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/daemonn69/somnia-jump"
	serviceNamespace    = "somnia-jump"
)

// Settings controls span export.
type Settings struct {
	// Endpoint is the OTLP/HTTP collector URL. Empty disables tracing.
	Endpoint string `env:"SOMNIA_JUMP_OTEL_ENDPOINT"`
	// Enabled set to "false" disables tracing even with an endpoint.
	Enabled string `env:"SOMNIA_JUMP_OTEL_ENABLED"`
	// SampleRatio is the fraction of root traces kept; values >= 1 keep all.
	SampleRatio float64 `env:"SOMNIA_JUMP_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

func (s Settings) active() bool {
	return !strings.EqualFold(strings.TrimSpace(s.Enabled), "false") && strings.TrimSpace(s.Endpoint) != ""
}

// Setup reads Settings from the environment and calls SetupWithSettings.
func Setup(ctx context.Context, serviceName string, attrs ...attribute.KeyValue) (func(context.Context) error, error) {
	var settings Settings
	if err := config.ParseEnv(&settings); err != nil {
		return func(context.Context) error { return nil }, fmt.Errorf("otel settings: %w", err)
	}
	return SetupWithSettings(ctx, serviceName, settings, attrs...)
}

// SetupWithSettings installs a global tracer provider exporting to
// settings.Endpoint. attrs are added to the resource next to the service
// name, e.g. the leaderboard storage kind a process was started with.
//
// When tracing is inactive it returns a no-op shutdown and leaves the global
// provider untouched. The returned shutdown flushes pending spans.
func SetupWithSettings(ctx context.Context, serviceName string, settings Settings, attrs ...attribute.KeyValue) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !settings.active() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(strings.TrimSpace(settings.Endpoint)),
	)
	if err != nil {
		return noop, fmt.Errorf("otlp exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(ResourceAttributes(serviceName, attrs...)...))
	if err != nil {
		return noop, fmt.Errorf("otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(settings.SampleRatio)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// ResourceAttributes returns the resource attributes for serviceName.
func ResourceAttributes(serviceName string, attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs)+2)
	out = append(out, semconv.ServiceName(serviceName), semconv.ServiceNamespace(serviceNamespace))
	return append(out, attrs...)
}

func sampler(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	if ratio <= 0 {
		return sdktrace.ParentBased(sdktrace.NeverSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// Tracer returns a tracer for the named component from the global provider.
func Tracer(component string) trace.Tracer {
	return otel.Tracer(instrumentationName + "/" + component)
}
