package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: メトリクスが Prometheus 形式で公開される", func(t *testing.T) {
		p, err := Setup(ctx, Config{ServiceName: "career-hub-search-test"})
		require.NoError(t, err)
		t.Cleanup(func() { _ = p.Shutdown(ctx) })

		assert.False(t, p.TracingEnabled())

		counter, err := p.Meter("test").Int64Counter("search.requests")
		require.NoError(t, err)
		counter.Add(ctx, 3)

		rec := httptest.NewRecorder()
		p.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		body, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "search_requests")
	})

	t.Run("エラー系: サービス名が空", func(t *testing.T) {
		_, err := Setup(ctx, Config{})
		assert.Error(t, err)
	})

	t.Run("正常系: nil の Provider は安全に扱える", func(t *testing.T) {
		var p *Provider
		assert.NoError(t, p.Shutdown(ctx))
		assert.NotNil(t, p.Meter("x"))
		assert.False(t, p.TracingEnabled())

		rec := httptest.NewRecorder()
		p.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestParseTracingEndpoint(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want exporterTarget
	}{
		{"既定値", Config{}, exporterTarget{endpoint: "localhost:4318"}},
		{"host:port", Config{TracingEndpoint: "otel:4318", TracingInsecure: true}, exporterTarget{endpoint: "otel:4318", insecure: true}},
		{"http URL", Config{TracingEndpoint: "http://collector:4318/custom/v1/traces"}, exporterTarget{endpoint: "collector:4318", urlPath: "/custom/v1/traces", insecure: true}},
		{"https URL", Config{TracingEndpoint: "https://collector.example"}, exporterTarget{endpoint: "collector.example"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseTracingEndpoint(tc.cfg)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
