package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vanshika/bunqdash/internal/bunq"
	"github.com/vanshika/bunqdash/internal/config"
	"github.com/vanshika/bunqdash/internal/graph"
	"github.com/vanshika/bunqdash/internal/logging"
	"github.com/vanshika/bunqdash/internal/mirror"
	"github.com/vanshika/bunqdash/internal/repository"
	"github.com/vanshika/bunqdash/internal/tokenstore"
)

func main() {
	var (
		workers = flag.Int("workers", 4, "number of accounts mirrored concurrently")
		timeout = flag.Duration("timeout", 5*time.Minute, "overall deadline for the run")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "sync")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	store, err := tokenstore.Open(cfg.TokenStore)
	if err != nil {
		logger.Error("failed to open token store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	source, err := bunq.NewSource(cfg.Bunq, store)
	if err != nil {
		logger.Error("failed to build data source", "error", err)
		os.Exit(1)
	}
	client := bunq.NewClient(source, store, logger, nil)
	if !client.HasSession() {
		if res := client.Authenticate(ctx); !res.Success {
			logger.Error("authentication failed", "error", res.Err)
			os.Exit(1)
		}
	}

	graphClient, err := graph.NewNeo4jClient(ctx, cfg.Graph)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	stats, err := mirror.New(client, repository.New(graphClient), *workers, logger).Run(ctx)
	if err != nil {
		logger.Error("mirror incomplete", "error", err, "accounts", stats.Accounts, "failed", stats.Failed)
		os.Exit(1)
	}
	logger.Info("sync complete", "accounts", stats.Accounts, "transactions", stats.Transactions, "duration", stats.Duration.String())
}
