// The mledger server: statement uploads, the transaction table, reports and
// the conversational /chat endpoint.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mledger/internal/amqp"
	"mledger/internal/assistant"
	"mledger/internal/config"
	mhttp "mledger/internal/http"
	"mledger/internal/ledger"
	"mledger/internal/ledger/memory"
	"mledger/internal/services"
	"mledger/internal/storage"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store ledger.Store
	switch cfg.DataBackend {
	case config.BackendSQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			slog.Error("Failed to open SQLite repository", "error", err)
			os.Exit(1)
		}
		defer repo.Close()
		store = repo
	case config.BackendMemory:
		store = memory.NewStore()
		slog.Warn("Using in-memory store, uploads are lost on restart")
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Error("Failed to connect to AMQP broker, sheet mirror disabled", "error", err)
		} else {
			amqpClient = client
			defer amqpClient.Close()
		}
	}

	service := services.NewStatementService(store, amqpClient)
	responder := &assistant.Responder{
		MinDelay: cfg.ResponseDelayMin,
		MaxDelay: cfg.ResponseDelayMax,
	}

	server, err := mhttp.NewServer(":"+cfg.Port, store, service, responder, mhttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ReportCacheSize:    cfg.ReportCacheSize,
		ReportCacheTTL:     cfg.ReportCacheTTL,
	})
	if err != nil {
		slog.Error("Failed to build server", "error", err)
		os.Exit(1)
	}

	if err := server.RefreshSnapshot(ctx); err != nil {
		slog.Error("Failed to load initial snapshot", "error", err)
	}

	go func() {
		slog.Info("Server listening", "addr", server.Addr, "backend", cfg.DataBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
	slog.Info("Server stopped")
}
