// Draftlens daemon - watches the screen for a draft, decodes it, and serves
// the live state over HTTP and WebSocket.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/draftlens/draftlens/internal/bank"
	"github.com/draftlens/draftlens/internal/capture"
	"github.com/draftlens/draftlens/internal/config"
	"github.com/draftlens/draftlens/internal/draft"
	"github.com/draftlens/draftlens/internal/extract"
	"github.com/draftlens/draftlens/internal/gamedata"
	"github.com/draftlens/draftlens/internal/layout"
	"github.com/draftlens/draftlens/internal/ocr"
	"github.com/draftlens/draftlens/internal/sched"
	"github.com/draftlens/draftlens/internal/server"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	cfg := config.Load()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		slog.Error("failed to create data directory", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	tpl := layout.Default()
	if cfg.LayoutPath != "" {
		loaded, err := layout.Load(cfg.LayoutPath)
		if err != nil {
			slog.Error("failed to load layout template", "path", cfg.LayoutPath, "error", err)
			os.Exit(1)
		}
		tpl = loaded
	}

	roster := gamedata.Default()
	correctionsPath := filepath.Join(cfg.DataDir, "corrections.json")
	if err := roster.AttachCorrectionsFile(correctionsPath); err != nil {
		slog.Error("failed to load corrections", "path", correctionsPath, "error", err)
		os.Exit(1)
	}

	learnedDir := filepath.Join(cfg.DataDir, "learned")
	if err := os.MkdirAll(learnedDir, 0o755); err != nil {
		slog.Error("failed to create learned-reference directory", "dir", learnedDir, "error", err)
		os.Exit(1)
	}
	refs := bank.New(tpl.BanSize.X, tpl.BanSize.Y, &bank.FilePersister{Dir: learnedDir})

	cluster, err := ocr.New(cfg.OCRWorkers, cfg.OCRTimeout, func() (ocr.Engine, error) {
		return ocr.NewTesseract()
	})
	if err != nil {
		slog.Error("failed to start ocr cluster", "workers", cfg.OCRWorkers, "error", err)
		os.Exit(1)
	}
	defer cluster.Close()

	var debug extract.DebugSink
	if cfg.DebugDumps {
		if err := os.MkdirAll(cfg.DebugDir, 0o755); err != nil {
			slog.Error("failed to create debug directory", "dir", cfg.DebugDir, "error", err)
			os.Exit(1)
		}
		debug = &extract.FileSink{Dir: cfg.DebugDir}
		slog.Info("debug dumps enabled", "dir", cfg.DebugDir)
	}

	detector := draft.New(draft.Options{
		Template:    tpl,
		Roster:      roster,
		Bank:        refs,
		Cluster:     cluster,
		Debug:       debug,
		Language:    cfg.OCRLanguage,
		MapCooldown: cfg.MapCooldown,
		BankDirs:    []string{cfg.BaselineDir, learnedDir},
	})

	provider, err := capture.NewDisplay(cfg.Display)
	if err != nil {
		slog.Error("failed to open display", "display", cfg.Display, "error", err)
		os.Exit(1)
	}

	runner := sched.New(provider, detector, cfg.ActiveDelay, cfg.IdleDelay)
	srv := server.New(detector)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := runner.Run(ctx); err != nil && err != context.Canceled {
			slog.Error("runner error", "error", err)
		}
	}()

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("draftlens starting", "http", cfg.HTTPAddr, "display", cfg.Display)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
