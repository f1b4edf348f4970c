// The mledger sync worker: consumes statement sync messages and mirrors the
// archived statements to Google Sheets.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"mledger/internal/amqp"
	"mledger/internal/config"
	"mledger/internal/sheets/google"
	"mledger/internal/storage"
	"mledger/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment")
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		slog.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		slog.Error("Failed to open SQLite repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	exporter, err := google.NewFromEnv(ctx)
	if err != nil {
		slog.Error("Failed to create sheets exporter", "error", err)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		slog.Error("Failed to connect to AMQP broker", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	w := worker.NewSyncWorker(repo, exporter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeStatementSync(gctx, w.HandleSyncMessage)
	})
	g.Go(func() error {
		return w.RunPendingScan(gctx, client, cfg.SyncScanInterval, cfg.SyncBatchSize)
	})

	slog.Info("Sync worker running", "queue", cfg.AMQPQueue, "scan_interval", cfg.SyncScanInterval)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Sync worker stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("Sync worker stopped")
}
