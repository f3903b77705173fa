package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config は可観測性の初期化に必要な設定値です。
// メトリクスは常に有効で、トレースは TracingEnabled の場合のみ OTLP/HTTP で送信します。
type Config struct {
	ServiceName     string
	TracingEnabled  bool
	TracingEndpoint string
	TracingInsecure bool
}

// Provider はOpenTelemetryのメータ・トレーサプロバイダを保持します。
type Provider struct {
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	promExporter   *otelprom.Exporter
	registry       *prometheus.Registry
}

// Setup はOpenTelemetryのメータおよびトレーサを初期化し、グローバルプロバイダとして登録します。
func Setup(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.ServiceName == "" {
		return nil, fmt.Errorf("service name must not be empty")
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithProcess(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	registry := prometheus.NewRegistry()

	promExporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(promExporter),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(meterProvider)

	var traceProvider *sdktrace.TracerProvider
	if cfg.TracingEnabled {
		traceExporter, err := newTraceExporter(ctx, cfg)
		if err != nil {
			_ = meterProvider.Shutdown(ctx)
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}

		traceProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(traceProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	return &Provider{
		meterProvider:  meterProvider,
		tracerProvider: traceProvider,
		promExporter:   promExporter,
		registry:       registry,
	}, nil
}

// Meter は name の計装スコープを持つメータを返します。
func (p *Provider) Meter(name string) metric.Meter {
	if p == nil || p.meterProvider == nil {
		return noop.NewMeterProvider().Meter(name)
	}
	return p.meterProvider.Meter(name)
}

// TracingEnabled reports whether spans are exported.
func (p *Provider) TracingEnabled() bool {
	return p != nil && p.tracerProvider != nil
}

// MetricsHandler はPrometheus形式でメトリクスを公開するHTTPハンドラを返します。
func (p *Provider) MetricsHandler() http.Handler {
	if p == nil {
		return http.NotFoundHandler()
	}
	if p.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown はメータープロバイダおよびトレーサープロバイダを停止します。
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}

	var errList []error
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errList = append(errList, err)
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errList = append(errList, err)
		}
	}

	return errors.Join(errList...)
}

// exporterTarget は OTLP/HTTP エクスポータの送信先です。
type exporterTarget struct {
	endpoint string
	urlPath  string
	insecure bool
}

// parseTracingEndpoint は "host:port" と "scheme://host:port/path" の両形式を受け付けます。
func parseTracingEndpoint(cfg Config) (exporterTarget, error) {
	target := exporterTarget{
		endpoint: strings.TrimSpace(cfg.TracingEndpoint),
		insecure: cfg.TracingInsecure,
	}
	if target.endpoint == "" {
		target.endpoint = "localhost:4318"
	}

	if strings.Contains(target.endpoint, "://") {
		parsed, err := url.Parse(target.endpoint)
		if err != nil {
			return exporterTarget{}, fmt.Errorf("invalid tracing endpoint %q: %w", target.endpoint, err)
		}
		if host := parsed.Host; host != "" {
			target.endpoint = host
		}
		if path := strings.TrimSpace(parsed.Path); path != "" && path != "/" {
			target.urlPath = path
		}
		if parsed.Scheme == "http" {
			target.insecure = true
		}
	}
	return target, nil
}

func newTraceExporter(ctx context.Context, cfg Config) (*otlptrace.Exporter, error) {
	target, err := parseTracingEndpoint(cfg)
	if err != nil {
		return nil, err
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(target.endpoint)}
	if target.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if target.urlPath != "" {
		opts = append(opts, otlptracehttp.WithURLPath(target.urlPath))
	}

	return otlptracehttp.New(ctx, opts...)
}
