//go:build integration

package repository

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

func setupElasticsearch(t *testing.T, ctx context.Context) *elasticsearch.TypedClient {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "docker.elastic.co/elasticsearch/elasticsearch:9.1.0",
		ExposedPorts: []string{"9200/tcp"},
		Env: map[string]string{
			"discovery.type":         "single-node",
			"xpack.security.enabled": "false",
			"ES_JAVA_OPTS":           "-Xms512m -Xmx512m",
		},
		WaitingFor: wait.ForHTTP("/").WithPort("9200").WithStatusCodeMatcher(func(status int) bool { return status == http.StatusOK }).WithStartupTimeout(120 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err, "failed to start elasticsearch container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate elasticsearch container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "http")
	require.NoError(t, err)

	client, err := elasticsearch.NewTypedClient(elasticsearch.Config{Addresses: []string{endpoint}})
	require.NoError(t, err)
	return client
}

func setupPostgres(t *testing.T, ctx context.Context) string {
	t.Helper()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("career_hub_test"),
		tcpostgres.WithUsername("test_user"),
		tcpostgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func jobIDs(hits []port.JobHit) []string {
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}
	sort.Strings(ids)
	return ids
}

// 両バックエンドで同じフィルタが同じ集合を返すことを確認します。
func TestBackendsAgreeOnFilters(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	dsn := setupPostgres(t, ctx)
	require.NoError(t, MigrateUp(dsn))
	// 2回目は変更なしで成功すること
	require.NoError(t, MigrateUp(dsn))

	pool, err := NewPostgresPool(ctx, PostgresConfig{DSN: dsn, MaxConns: 4})
	require.NoError(t, err)
	defer pool.Close()

	esClient := setupElasticsearch(t, ctx)
	names := NewIndexNames("it-")
	index := NewIndexManager(esClient, names, logger)
	require.True(t, index.Connect(ctx))
	require.NoError(t, index.EnsureIndices(ctx))

	store := NewPostgresStore(pool)
	jobs := []port.JobDocument{
		{ID: "job-remote", Title: "Go Developer", Description: "Build APIs in Go", JobType: "full-time", Location: port.Location{Remote: true, Type: "remote"}},
		{ID: "job-onsite", Title: "Senior Go Engineer", Description: "Go services", JobType: "full-time", Location: port.Location{City: "Austin", Type: "onsite"}},
		{ID: "job-java", Title: "Java Developer", Description: "Spring services", JobType: "contract", Location: port.Location{City: "Berlin", Type: "onsite"}},
	}
	for _, job := range jobs {
		saved, err := store.UpsertJob(ctx, job)
		require.NoError(t, err)
		require.NoError(t, index.IndexJob(ctx, *saved))
	}
	_, err = esClient.Indices.Refresh().Index(names.Jobs).Do(ctx)
	require.NoError(t, err)

	backends := []port.SearchBackend{
		NewElasticsearchBackend(esClient, names, logger),
		NewPostgresBackend(pool, TextSearchFullText, logger),
	}

	cases := []struct {
		name    string
		query   port.SearchQuery
		filters port.JobFilters
		want    []string
	}{
		{"text", port.SearchQuery{Text: "go", Page: 1, PageSize: 10}, port.JobFilters{}, []string{"job-onsite", "job-remote"}},
		{"text+remote=false", port.SearchQuery{Text: "go", Page: 1, PageSize: 10}, port.JobFilters{Remote: boolPtr(false)}, []string{"job-onsite"}},
		{"jobType", port.SearchQuery{Page: 1, PageSize: 10}, port.JobFilters{JobType: "contract"}, []string{"job-java"}},
		{"location", port.SearchQuery{Page: 1, PageSize: 10}, port.JobFilters{Location: "austin"}, []string{"job-onsite"}},
		{"multi-word", port.SearchQuery{Text: "Java Engineer", Page: 1, PageSize: 10}, port.JobFilters{}, []string{"job-java", "job-onsite"}},
		{"no match", port.SearchQuery{Text: "cobol", Page: 1, PageSize: 10}, port.JobFilters{}, []string{}},
	}

	for _, backend := range backends {
		for _, tc := range cases {
			t.Run(fmt.Sprintf("%s/%s", backend.Mode(), tc.name), func(t *testing.T) {
				page, err := backend.SearchJobs(ctx, tc.query, tc.filters)
				require.NoError(t, err)
				assert.Equal(t, tc.want, jobIDs(page.Hits))
				assert.EqualValues(t, len(tc.want), page.Total)
			})
		}
	}
}
