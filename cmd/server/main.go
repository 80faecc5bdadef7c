package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/probflow/bayesnet/internal/api"
	"github.com/probflow/bayesnet/internal/bn"
	"github.com/probflow/bayesnet/internal/config"
	"github.com/probflow/bayesnet/internal/dataset"
	"github.com/probflow/bayesnet/internal/engine"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "Path to service YAML config")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "err", err)
		os.Exit(1)
	}

	// ── Load dataset ─────────────────────────────────────────────────────────
	loader, err := dataset.NewLoader(cfg.Dataset.Path)
	if err != nil {
		slog.Error("failed to load dataset", "err", err)
		os.Exit(1)
	}
	ds := loader.Data()
	slog.Info("dataset loaded",
		"path", cfg.Dataset.Path,
		"attributes", ds.Attributes().Len(),
		"instances", ds.Len(),
	)

	// ── Network service ──────────────────────────────────────────────────────
	svc := engine.New(loader, cfg.Network, bn.SlogObserver{Logger: logger})

	// ── Dataset hot reload ───────────────────────────────────────────────────
	loader.OnChange(func(ds *dataset.DataSet) {
		refreshed, err := svc.RefreshCPDs()
		if err != nil {
			slog.Warn("cpd refresh after reload failed", "err", err)
			return
		}
		slog.Info("dataset hot-reloaded", "instances", ds.Len(), "cpds_refreshed", refreshed)
	})
	if cfg.Dataset.Watch {
		stopWatch, err := loader.Watch()
		if err != nil {
			slog.Warn("dataset watcher unavailable (hot-reload disabled)", "err", err)
		} else {
			defer stopWatch()
		}
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	handler := api.New(svc, loader)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutMs) * time.Millisecond,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutMs) * time.Millisecond,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	slog.Info("goodbye")
}
