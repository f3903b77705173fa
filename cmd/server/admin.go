package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/repository"
	"github.com/ajaykrishnavemula/Career-Hub-API/internal/service"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply PostgreSQL schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := repository.MigrateUp(cfg.Postgres.DSN); err != nil {
			return err
		}
		logger.Info("migrations applied")
		return nil
	},
}

var ensureIndicesCmd = &cobra.Command{
	Use:   "ensure-indices",
	Short: "Create the Elasticsearch indices when missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		es, err := newElasticsearchClient()
		if err != nil {
			return err
		}
		index := repository.NewIndexManager(es, repository.NewIndexNames(cfg.Elasticsearch.IndexPrefix), logger)
		if !index.Connect(cmd.Context()) {
			return service.ErrIndexUnavailable
		}
		return index.EnsureIndices(cmd.Context())
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Copy every stored record into the search indices",
	Long: `reindex はストアの求人・応募者・企業をすべて検索インデックスに書き込みます。
インデックス書き込みの失敗は件数として集計され、コマンドは失敗しません。`,
	RunE: runReindex,
}

func init() {
	reindexCmd.Flags().Int("batch-size", 0, "records per page (default: reindex.batchSize)")
}

func runReindex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	batchSize, _ := cmd.Flags().GetInt("batch-size")
	if batchSize <= 0 {
		batchSize = cfg.Reindex.BatchSize
	}

	es, err := newElasticsearchClient()
	if err != nil {
		return err
	}
	index, _ := connectIndex(ctx, es)

	pool, err := newPostgresPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	stats, err := service.NewReindexer(repository.NewPostgresStore(pool), index, batchSize, logger).Run(ctx)
	if err != nil {
		if errors.Is(err, service.ErrIndexUnavailable) {
			logger.Error("search index is not reachable", zap.Strings("addresses", cfg.Elasticsearch.Addresses))
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "jobs=%d applicants=%d companies=%d removed=%d failed=%d duration=%s\n",
		stats.Jobs, stats.Applicants, stats.Companies, stats.Removed, stats.Failed, stats.Duration)
	return nil
}
