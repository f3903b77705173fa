// Package rest は検索サービスの REST API を提供します。
package rest

import (
	"fmt"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// Options は REST サーバーの依存関係と設定です。
type Options struct {
	Retrieval     port.RetrievalService
	Catalog       port.CatalogService
	Authenticator *Authenticator
	Logger        *zap.Logger

	DefaultLimit   int
	RateLimit      rate.Limit
	RateLimitBurst int
	// TrustedProxies は X-Forwarded-For を付与してよいプロキシの CIDR です。
	// 空の場合はヘッダを無視し、接続元アドレスをクライアント IP とします。
	TrustedProxies []string

	// Meter が nil の場合、リクエストメトリクスは記録しません。
	Meter metric.Meter
	// MetricsHandler は /metrics で公開されます。nil の場合はルートを登録しません。
	MetricsHandler http.Handler
	// TracingService が空でない場合、otelecho によるトレースを有効にします。
	TracingService string
}

// NewServer はミドルウェアとルートを登録した echo インスタンスを生成します。
func NewServer(opts Options) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = NewErrorHandler(opts.Logger)

	extractor, err := newIPExtractor(opts.TrustedProxies)
	if err != nil {
		return nil, err
	}
	e.IPExtractor = extractor

	if opts.TracingService != "" {
		e.Use(otelecho.Middleware(opts.TracingService))
	}
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/health" || path == "/metrics"
		},
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			opts.Logger.Info("http request completed", fields...)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if opts.Meter != nil {
		metricsMW, err := NewMetricsMiddleware(opts.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
		}
		e.Use(metricsMW)
	}

	e.GET("/health", healthHandler(opts.Retrieval.Mode()))
	if opts.MetricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(opts.MetricsHandler))
	}

	api := e.Group("/api/v1")
	if opts.RateLimit > 0 {
		api.Use(NewRateLimiter(opts.RateLimit, opts.RateLimitBurst).Middleware())
	}
	registerRoutes(api, opts)

	return e, nil
}

// newIPExtractor は信頼するプロキシ経由の場合に限り X-Forwarded-For からクライアント IP を取り出します。
func newIPExtractor(trustedProxies []string) (echo.IPExtractor, error) {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect(), nil
	}

	// ループバックやプライベートアドレスも明示された CIDR 以外は信頼しない
	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", cidr, err)
		}
		options = append(options, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(options...), nil
}

func registerRoutes(api *echo.Group, opts Options) {
	auth := opts.Authenticator.Require()
	employers := RequireRoles(port.RoleEmployer, port.RoleAdmin)

	search := NewSearchHandler(opts.Retrieval, opts.DefaultLimit)
	api.GET("/search/jobs", search.SearchJobs)
	api.GET("/search/applicants", search.SearchApplicants, auth, employers)
	api.GET("/search/recommendations/jobs", search.JobRecommendations, auth)
	api.GET("/search/jobs/recommendations", search.JobRecommendations, auth)
	api.GET("/search/recommendations/candidates/:jobId", search.CandidateRecommendations, auth, employers)

	if opts.Catalog == nil {
		return
	}
	catalog := NewCatalogHandler(opts.Catalog)
	api.POST("/jobs", catalog.CreateJob, auth, employers)
	api.PUT("/jobs/:id", catalog.UpdateJob, auth, employers)
	api.DELETE("/jobs/:id", catalog.DeleteJob, auth, employers)
	api.PUT("/applicants/me", catalog.PutOwnApplicant, auth)
	api.DELETE("/applicants/me", catalog.DeleteOwnApplicant, auth)
	api.PUT("/companies/:id", catalog.PutCompany, auth, employers)
}
