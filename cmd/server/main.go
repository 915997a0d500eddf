package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yangwenmai/solvesync/internal/api"
	"github.com/yangwenmai/solvesync/internal/config"
	"github.com/yangwenmai/solvesync/internal/engine"
	"github.com/yangwenmai/solvesync/internal/extract"
	"github.com/yangwenmai/solvesync/internal/github"
	"github.com/yangwenmai/solvesync/internal/notify"
	"github.com/yangwenmai/solvesync/internal/store"
	"github.com/yangwenmai/solvesync/internal/worker"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	// Open SQLite.
	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("open db", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize store.
	s, err := store.New(db)
	if err != nil {
		slog.Error("init store", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	settings, err := s.SeedSettings(ctx, cfg.SeedSettings())
	if err != nil {
		slog.Warn("seed settings from environment", "error", err)
	} else if missing := settings.Missing(); len(missing) > 0 {
		slog.Warn("GitHub settings incomplete, syncs will fail until configured", "missing", missing)
	}

	// Reset stale PROCESSING submissions from previous run.
	if n, err := s.ResetStaleProcessing(ctx); err != nil {
		slog.Warn("reset stale processing", "error", err)
	} else if n > 0 {
		slog.Info("reset stale PROCESSING submissions to CAPTURED", "count", n)
	}

	// Build pipeline dependencies.
	var syncer engine.Syncer
	if cfg.DryRun {
		slog.Info("DRY_RUN set, GitHub writes are logged only")
		syncer = &engine.DryRunSyncer{Logger: logger}
	} else {
		syncer = github.NewClient(
			github.WithBaseURL(cfg.GitHubAPIURL),
			github.WithTimeout(cfg.HTTPTimeout),
			github.WithLogger(logger),
		)
	}

	pipeline := engine.NewPipeline(s,
		&engine.ExtractStep{Extractor: extract.New(), Artifacts: s},
		&engine.NormalizeStep{Artifacts: s},
		&engine.SyncStep{Syncer: syncer, Artifacts: s, Results: s},
	)

	hub := notify.NewHub(cfg.CORSOrigin)
	notifier := notify.Multi{notify.Log{Logger: logger}, hub}

	// Start worker in background.
	w := worker.New(s, pipeline, notifier, cfg.WorkerInterval)
	go w.Start(ctx)

	// Start API server.
	srv := api.New(s,
		api.WithCORSOrigin(cfg.CORSOrigin),
		api.WithMaxBody(int64(cfg.MaxSnapshotBytes)),
		api.WithDedupeWindow(cfg.TriggerDedupeWindow),
		api.WithSettleDelays(cfg.NavSettleDelay, cfg.RenderSettleDelay),
		api.WithSnapshotTTL(cfg.SnapshotTTL),
		api.WithNotificationHub(hub),
	)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		slog.Info("shutting down")
		cancel()
		srv.Close()
		hub.Close()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		httpServer.Shutdown(shutdownCtx)
	}()

	fmt.Printf("solvesync server listening on http://localhost:%s\n", cfg.Port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
