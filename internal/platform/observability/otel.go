package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Trace exporters selectable through OTEL_TRACES_EXPORTER.
const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

// Instruments bundles the runtime-wide observability dependencies.
type Instruments struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Settings describes how a process reports logs, spans and metrics.
type Settings struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	LogLevel       slog.Level
	TraceExporter  string
	OTLPEndpoint   string
	OTLPInsecure   bool
	// SampleRatio applies to root spans; children follow their parent.
	SampleRatio float64
}

// SettingsFromEnv reads LOG_LEVEL, SERVICE_VERSION, ENVIRONMENT and the OTEL_* variables.
func SettingsFromEnv(serviceName string) Settings {
	settings := Settings{
		ServiceName:    serviceName,
		ServiceVersion: envOrDefault("SERVICE_VERSION", "dev"),
		Environment:    envOrDefault("ENVIRONMENT", "local"),
		LogLevel:       parseLevel(os.Getenv("LOG_LEVEL")),
		TraceExporter:  strings.ToLower(envOrDefault("OTEL_TRACES_EXPORTER", ExporterOTLP)),
		OTLPEndpoint:   strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTLPInsecure:   os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") != "0",
		SampleRatio:    1,
	}
	if ratio, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv("OTEL_TRACES_SAMPLER_ARG")), 64); err == nil && ratio >= 0 && ratio <= 1 {
		settings.SampleRatio = ratio
	}
	return settings
}

// Init configures the process from the environment. See Setup.
func Init(ctx context.Context, serviceName string) (*Instruments, func(context.Context) error, error) {
	return Setup(ctx, SettingsFromEnv(serviceName))
}

// Setup installs the slog default logger and the global tracer and meter
// providers. The returned shutdown flushes pending spans and metrics.
func Setup(ctx context.Context, settings Settings) (*Instruments, func(context.Context) error, error) {
	logger := newLogger(settings)

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			attribute.String("service.name", settings.ServiceName),
			attribute.String("service.version", settings.ServiceVersion),
			attribute.String("deployment.environment", settings.Environment),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("observability resource: %w", err)
	}

	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(settings.SampleRatio))),
	}
	exporter, err := newSpanExporter(ctx, settings, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("observability span exporter: %w", err)
	}
	if exporter != nil {
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	}
	tracerProvider := sdktrace.NewTracerProvider(providerOpts...)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	// Payment outcome counters are read in-process; nothing is pushed.
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewManualReader()),
	)
	otel.SetMeterProvider(meterProvider)

	shutdown := func(ctx context.Context) error {
		return errors.Join(meterProvider.Shutdown(ctx), tracerProvider.Shutdown(ctx))
	}
	return &Instruments{Logger: logger, TracerProvider: tracerProvider, MeterProvider: meterProvider}, shutdown, nil
}

// Log returns the configured logger, or slog's default when none was set up.
func (i *Instruments) Log() *slog.Logger {
	if i == nil || i.Logger == nil {
		return slog.Default()
	}
	return i.Logger
}

// Tracer returns a named tracer from the configured provider.
func (i *Instruments) Tracer(name string) trace.Tracer {
	if i == nil || i.TracerProvider == nil {
		return otel.Tracer(name)
	}
	return i.TracerProvider.Tracer(name)
}

// Meter returns a named meter from the configured provider.
func (i *Instruments) Meter(name string) metric.Meter {
	if i == nil || i.MeterProvider == nil {
		return metricnoop.NewMeterProvider().Meter(name)
	}
	return i.MeterProvider.Meter(name)
}

func newLogger(settings Settings) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: settings.LogLevel, AddSource: true})
	logger := slog.New(handler).With(
		slog.String("service", settings.ServiceName),
		slog.String("version", settings.ServiceVersion),
	)
	slog.SetDefault(logger)
	return logger
}

// parseLevel maps LOG_LEVEL values onto slog levels, defaulting to info.
func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newSpanExporter returns nil for ExporterNone. An OTLP exporter that cannot be
// built degrades to stdout so spans are not silently lost.
func newSpanExporter(ctx context.Context, settings Settings, logger *slog.Logger) (sdktrace.SpanExporter, error) {
	switch settings.TraceExporter {
	case ExporterNone:
		return nil, nil
	case ExporterStdout:
		return stdouttrace.New()
	}
	var opts []otlptracehttp.Option
	if settings.OTLPEndpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(settings.OTLPEndpoint))
	}
	if settings.OTLPInsecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err == nil {
		return exporter, nil
	}
	logger.Warn("otlp trace exporter unavailable, using stdout", slog.String("error", err.Error()))
	return stdouttrace.New()
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
