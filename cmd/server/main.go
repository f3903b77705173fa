package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/config"
	"github.com/ajaykrishnavemula/Career-Hub-API/internal/logging"
)

var (
	configDir string
	cfg       *config.Config
	logger    *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "search-service",
	Short: "Career Hub search and recommendation service",
	Long: `search-service は求人・応募者の検索とレコメンドを提供します。

Example usage:
  search-service serve             # REST / gRPC サーバーを起動
  search-service migrate           # PostgreSQL のマイグレーションを適用
  search-service ensure-indices    # Elasticsearch のインデックスを作成
  search-service reindex           # ストアの全レコードを再インデックス`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger, err = logging.New(cfg.Logger.Level)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		syncLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "./config", "directory containing config.yaml")
	rootCmd.AddCommand(serveCmd, migrateCmd, ensureIndicesCmd, reindexCmd)
}

func syncLogger() {
	if logger == nil {
		return
	}
	if err := logger.Sync(); err != nil {
		log.Printf("failed to sync logger: %v", err)
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
			syncLogger()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
