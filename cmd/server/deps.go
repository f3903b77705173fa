package main

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
	"github.com/ajaykrishnavemula/Career-Hub-API/internal/repository"
)

func newElasticsearchClient() (*elasticsearch.TypedClient, error) {
	client, err := elasticsearch.NewTypedClient(elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return client, nil
}

// connectIndex は検索インデックスへの接続を一度だけ試み、成功した場合はインデックスを用意します。
func connectIndex(ctx context.Context, es *elasticsearch.TypedClient) (port.SearchIndex, repository.IndexNames) {
	names := repository.NewIndexNames(cfg.Elasticsearch.IndexPrefix)
	index := repository.NewIndexManager(es, names, logger)
	if index.Connect(ctx) {
		if err := index.EnsureIndices(ctx); err != nil {
			logger.Warn("failed to ensure search indices", zap.Error(err))
		}
	}
	return index, names
}

func newPostgresPool(ctx context.Context) (*pgxpool.Pool, error) {
	return repository.NewPostgresPool(ctx, repository.PostgresConfig{
		DSN:      cfg.Postgres.DSN,
		MaxConns: cfg.Postgres.MaxConns,
	})
}
