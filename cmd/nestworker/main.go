package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jewisonj/nestworker/internal/config"
	"github.com/jewisonj/nestworker/internal/infrastructure/logger"
	"github.com/jewisonj/nestworker/internal/infrastructure/storage"
	"github.com/jewisonj/nestworker/internal/objectstore"
	"github.com/jewisonj/nestworker/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.Logging)
	log.Info("starting nestworker", "poll_interval", cfg.Worker.PollInterval, "temp_dir", cfg.Worker.TempDir)

	db, err := storage.NewDB(&storage.Config{
		DSN:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MinConnections,
		ConnMaxLifetime: cfg.Database.MaxConnLifetime,
		ConnMaxIdleTime: cfg.Database.MaxIdleTime,
		Debug:           cfg.Database.Debug,
	})
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer storage.Close(db)

	store, err := objectstore.NewLocalProvider(cfg.Storage.LocalRoot)
	if err != nil {
		log.Error("failed to initialize object storage", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.Worker.TempDir, 0o755); err != nil {
		log.Error("failed to create scratch directory", "error", err)
		os.Exit(1)
	}

	loop := &worker.Loop{
		Queue:        storage.NewWorkQueueRepository(db),
		Jobs:         storage.NewNestJobRepository(db),
		Items:        storage.NewNestJobItemRepository(db),
		Results:      storage.NewNestResultRepository(db),
		Store:        store,
		Log:          log,
		TempDir:      cfg.Worker.TempDir,
		PollInterval: cfg.Worker.PollInterval,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("worker loop exited", "error", err)
		os.Exit(1)
	}

	log.Info("nestworker shut down cleanly")
}
