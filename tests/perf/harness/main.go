package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/adapter/rest"
	"github.com/ajaykrishnavemula/Career-Hub-API/internal/service"
	"github.com/ajaykrishnavemula/Career-Hub-API/tests/support/inmemory"
)

// perf harness は外部依存なしで REST API を起動し、負荷試験の対象にします。
func main() {
	port := os.Getenv("PERF_HTTP_PORT")
	if port == "" {
		port = "5071"
	}
	secret := os.Getenv("PERF_JWT_SECRET")
	if secret == "" {
		secret = "perf-secret"
	}

	catalogStore := inmemory.NewCatalog()
	if err := inmemory.SeedSampleData(catalogStore); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}

	logger := zap.NewNop()
	selector := service.NewBackendSelector(false, nil, catalogStore)
	retrieval := service.NewRetrievalService(selector, catalogStore, catalogStore, nil, 0, logger)
	catalog := service.NewCatalogService(catalogStore, service.NewMirror(nil, logger), nil, logger)

	e, err := rest.NewServer(rest.Options{
		Retrieval:     retrieval,
		Catalog:       catalog,
		Authenticator: rest.NewAuthenticator(secret, "", logger),
		Logger:        logger,
		DefaultLimit:  10,
		// RateLimit を指定しないため、レート制限は無効
	})
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	srv := &http.Server{Addr: ":" + port, Handler: e}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("perf harness HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server terminated: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("failed to shut down cleanly: %v", err)
	}
	log.Println("perf harness HTTP server stopped")
}
