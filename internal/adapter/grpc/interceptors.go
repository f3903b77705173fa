package grpc

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	rpcSystemGRPC = "grpc"
)

// NewUnaryMetricsInterceptor は gRPC リクエストのメトリクスを収集する UnaryInterceptor を生成します。
func NewUnaryMetricsInterceptor(meter metric.Meter) (grpc.UnaryServerInterceptor, error) {
	requestLatency, err := meter.Float64Histogram(
		"rpc.server.duration",
		metric.WithDescription("Latency of gRPC requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestCounter, err := meter.Int64Counter(
		"rpc.server.requests",
		metric.WithDescription("Number of gRPC requests processed"),
	)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(start).Seconds()

		attrs := methodAttributes(info.FullMethod)
		requestLatency.Record(ctx, elapsed, metric.WithAttributes(attrs...))

		code := status.Code(err)
		attrs = append(attrs,
			attribute.String("rpc.grpc.status_code", code.String()),
			attribute.String("outcome", outcomeFromCode(code)),
		)
		requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

		return resp, err
	}, nil
}

// NewUnaryLoggingInterceptor は失敗した RPC を警告として、それ以外をデバッグとして記録します。
func NewUnaryLoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)),
		}
		if err != nil {
			logger.Warn("grpc request failed", append(fields, zap.Error(err))...)
		} else {
			logger.Debug("grpc request completed", fields...)
		}
		return resp, err
	}
}

func methodAttributes(fullMethod string) []attribute.KeyValue {
	service, method := splitFullMethod(fullMethod)
	return []attribute.KeyValue{
		attribute.String("rpc.system", rpcSystemGRPC),
		attribute.String("rpc.service", service),
		attribute.String("rpc.method", method),
	}
}

func splitFullMethod(fullMethod string) (service string, method string) {
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	if fullMethod == "" {
		return "unknown", "unknown"
	}

	service, method, ok := strings.Cut(fullMethod, "/")
	if !ok || strings.Contains(method, "/") {
		return fullMethod, "unknown"
	}
	return service, method
}

func outcomeFromCode(code codes.Code) string {
	if code == codes.OK {
		return "success"
	}
	return "failure"
}
