package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vanshika/bunqdash/internal/auth"
	"github.com/vanshika/bunqdash/internal/bunq"
	"github.com/vanshika/bunqdash/internal/config"
	"github.com/vanshika/bunqdash/internal/graph"
	"github.com/vanshika/bunqdash/internal/logging"
	"github.com/vanshika/bunqdash/internal/metrics"
	"github.com/vanshika/bunqdash/internal/repository"
	"github.com/vanshika/bunqdash/internal/server"
	"github.com/vanshika/bunqdash/internal/tokenstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)
	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := tokenstore.Open(cfg.TokenStore)
	if err != nil {
		return fmt.Errorf("open token store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing token store failed", "error", err)
		}
	}()

	source, err := bunq.NewSource(cfg.Bunq, store)
	if err != nil {
		return fmt.Errorf("build data source: %w", err)
	}
	m := metrics.New()
	client := bunq.NewClient(source, store, logger, m)
	logger.Info("data source ready", "mode", cfg.Bunq.Mode, "tokenStore", cfg.TokenStore.Path)

	session := auth.NewSession(client, logger)
	session.Restore(ctx)

	graphClient, err := buildGraphClient(ctx, logger, cfg.Graph)
	if err != nil {
		return err
	}
	var mirror server.CounterpartyReader
	if graphClient != nil {
		defer func() {
			if err := graphClient.Close(context.Background()); err != nil {
				logger.Warn("closing graph client failed", "error", err)
			}
		}()
		mirror = repository.New(graphClient)
	}

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.GraphHealthService{Client: graphClient},
		API:              server.NewAPIHandlers(logger, client, session, mirror),
		Metrics:          m,
		ExposeMetrics:    cfg.HTTP.MetricsEnabled,
		AllowedOrigins:   server.ParseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	return server.New(logger, cfg.HTTP, router).Run(ctx)
}

// buildGraphClient returns nil without error when no graph is configured.
func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.GraphConfig) (graph.Client, error) {
	client, err := graph.NewNeo4jClient(ctx, cfg)
	if errors.Is(err, graph.ErrMissingURI) {
		logger.Info("graph mirror disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("connect graph: %w", err)
	}
	return client, nil
}
