package grpc

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// SearchIndexService は検索インデックスの接続状態を表すヘルスチェック上のサービス名です。
const SearchIndexService = "career-hub.search-index"

// Server は grpc.health.v1 を公開する gRPC サーバーです。
type Server struct {
	*grpc.Server
	health *health.Server
	logger *zap.Logger
}

// NewServer は新しい Server インスタンスを生成します。
// 全体のステータスは SERVING、検索インデックスは indexConnected に応じて SERVING / NOT_SERVING になります。
// meter が nil の場合、メトリクスインターセプタは登録しません。
func NewServer(indexConnected bool, meter metric.Meter, logger *zap.Logger) (*Server, error) {
	interceptors := []grpc.UnaryServerInterceptor{NewUnaryLoggingInterceptor(logger)}
	if meter != nil {
		metricsInterceptor, err := NewUnaryMetricsInterceptor(meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics interceptor: %w", err)
		}
		interceptors = append(interceptors, metricsInterceptor)
	}

	s := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	indexStatus := healthpb.HealthCheckResponse_NOT_SERVING
	if indexConnected {
		indexStatus = healthpb.HealthCheckResponse_SERVING
	}
	hs.SetServingStatus(SearchIndexService, indexStatus)

	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	logger.Info("grpc health registered",
		zap.String("service", SearchIndexService),
		zap.String("status", indexStatus.String()),
	)
	return &Server{Server: s, health: hs, logger: logger}, nil
}

// Shutdown は全サービスを NOT_SERVING にしてから GracefulStop します。
func (s *Server) Shutdown() {
	s.health.Shutdown()
	s.GracefulStop()
	s.logger.Info("grpc server stopped")
}
