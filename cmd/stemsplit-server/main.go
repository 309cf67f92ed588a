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

	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	httpadapter "stemsplit/internal/adapters/http"
	"stemsplit/internal/config"
	"stemsplit/internal/core/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger.Info("starting stemsplit server")

	if err := run(logger); err != nil {
		logger.Error("server startup failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		cancel()
	}()

	cfg := config.Load()
	logger.Info("configuration loaded",
		"model", cfg.Model,
		"max_upload_bytes", cfg.MaxUploadBytes,
		"timeout", cfg.SeparationTimeout,
		"temp_root", cfg.TempRoot)

	workspaces := services.NewWorkspaceManager(logger, cfg.TempRoot)
	runner := services.NewJobRunner(logger, cfg.Interpreter, cfg.MP3Bitrate)
	locator := services.NewArtifactLocator(logger)
	pipeline := services.NewPipeline(logger, cfg.Model, cfg.SeparationTimeout,
		cfg.MaxConcurrentJobs, workspaces, runner, locator)

	apiServer := httpadapter.New(logger, cfg, pipeline)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: c.Handler(apiServer.Routes()),
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting api server", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
