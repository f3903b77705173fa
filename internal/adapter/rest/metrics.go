package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// NewMetricsMiddleware は HTTP リクエストの処理時間と件数を記録するミドルウェアを生成します。
func NewMetricsMiddleware(meter metric.Meter) (echo.MiddlewareFunc, error) {
	requestLatency, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Latency of HTTP requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestCounter, err := meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Number of HTTP requests processed"),
	)
	if err != nil {
		return nil, err
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			elapsed := time.Since(start).Seconds()

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			baseAttrs := []attribute.KeyValue{
				attribute.String("http.request.method", c.Request().Method),
				attribute.String("http.route", route),
			}

			ctx := c.Request().Context()
			requestLatency.Record(ctx, elapsed, metric.WithAttributes(baseAttrs...))

			code := responseStatus(c, err)
			counterAttrs := append(baseAttrs,
				attribute.String("http.response.status_code", strconv.Itoa(code)),
				attribute.String("outcome", outcomeFromStatus(code)),
			)
			requestCounter.Add(ctx, 1, metric.WithAttributes(counterAttrs...))

			return err
		}
	}, nil
}

// responseStatus は、エラーハンドラがまだ書き込んでいない場合にエラーから最終ステータスを推定します。
func responseStatus(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	code, _ := statusFor(err)
	return code
}

func outcomeFromStatus(code int) string {
	if code < http.StatusBadRequest {
		return "success"
	}
	return "failure"
}
