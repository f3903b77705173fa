package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	grpc_adapter "github.com/ajaykrishnavemula/Career-Hub-API/internal/adapter/grpc"
	"github.com/ajaykrishnavemula/Career-Hub-API/internal/adapter/message"
	"github.com/ajaykrishnavemula/Career-Hub-API/internal/adapter/rest"
	"github.com/ajaykrishnavemula/Career-Hub-API/internal/cache"
	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
	"github.com/ajaykrishnavemula/Career-Hub-API/internal/repository"
	"github.com/ajaykrishnavemula/Career-Hub-API/internal/service"
	"github.com/ajaykrishnavemula/Career-Hub-API/pkg/observability"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST and gRPC servers",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting search-service...")

	provider, err := observability.Setup(ctx, observability.Config{
		ServiceName:     cfg.Observability.ServiceName,
		TracingEnabled:  cfg.Observability.Enabled,
		TracingEndpoint: cfg.Observability.TracingEndpoint,
		TracingInsecure: cfg.Observability.TracingInsecure,
	})
	if err != nil {
		return fmt.Errorf("failed to set up observability: %w", err)
	}

	es, err := newElasticsearchClient()
	if err != nil {
		return err
	}
	index, names := connectIndex(ctx, es)

	pool, err := newPostgresPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	textSearch, err := repository.ParseTextSearchMode(cfg.Postgres.TextSearch)
	if err != nil {
		return err
	}
	store := repository.NewPostgresStore(pool)
	selector := service.NewBackendSelector(
		index.Connected(),
		repository.NewElasticsearchBackend(es, names, logger),
		repository.NewPostgresBackend(pool, textSearch, logger),
	)
	logger.Info("search backend selected", zap.String("mode", string(selector.Mode())))

	var recCache port.RecommendationCache
	if cfg.Redis.Address != "" {
		client, err := cache.NewRedisClient(ctx, cache.RedisOptions{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			// キャッシュなしでも検索は提供できる
			logger.Warn("recommendation cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			recCache = cache.NewRecommendationCache(client, cfg.Redis.TTL, logger)
		}
	}

	retrieval := service.NewRetrievalService(selector, store, store, recCache, cfg.Search.RecommendationLimit, logger)
	mirror := service.NewMirror(index, logger)
	catalog := service.NewCatalogService(store, mirror, recCache, logger)

	meter := provider.Meter("github.com/ajaykrishnavemula/Career-Hub-API")
	tracingService := ""
	if provider.TracingEnabled() {
		tracingService = cfg.Observability.ServiceName
	}

	e, err := rest.NewServer(rest.Options{
		Retrieval:      retrieval,
		Catalog:        catalog,
		Authenticator:  rest.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, logger),
		Logger:         logger,
		DefaultLimit:   cfg.Search.ResultsPerPage,
		RateLimit:      rate.Limit(cfg.HTTP.RateLimit),
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Meter:          meter,
		MetricsHandler: provider.MetricsHandler(),
		TracingService: tracingService,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      e,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	grpcServer, err := grpc_adapter.NewServer(index.Connected(), meter, logger)
	if err != nil {
		return fmt.Errorf("failed to create grpc server: %w", err)
	}
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port %d: %w", cfg.GRPC.Port, err)
	}

	var consumer *message.Consumer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaConsumer, kafkaProducer, err := message.NewKafkaClients(message.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.GroupID,
		})
		if err != nil {
			return err
		}
		consumer = message.NewConsumer(kafkaConsumer, kafkaProducer, catalog, logger, cfg.Kafka.Topic,
			message.WithDeadLetterTopic(cfg.Kafka.DeadLetterTopic),
			message.WithRetryConfig(message.RetryConfig{MaxRetries: cfg.Kafka.MaxRetries}),
		)
	}

	var reindexer *service.Reindexer
	if cfg.Reindex.Schedule != "" {
		reindexer = service.NewReindexer(store, index, cfg.Reindex.BatchSize, logger)
		if err := reindexer.Start(ctx, cfg.Reindex.Schedule); err != nil {
			return fmt.Errorf("failed to schedule reindex: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("address", httpServer.Addr), zap.String("searchMode", string(retrieval.Mode())))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("gRPC server listening", zap.String("address", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	if consumer != nil {
		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("catalog consumer: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		grpcServer.Shutdown()
		if reindexer != nil {
			reindexer.Stop()
		}
		if err := mirror.Wait(shutdownCtx); err != nil {
			logger.Warn("pending index mirrors abandoned", zap.Error(err))
		}
		if err := provider.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("observability shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server gracefully stopped")
	return nil
}
