package main

import (
	"RandomWalkService/api"
	"RandomWalkService/internal/config"
	"RandomWalkService/internal/core"
	"RandomWalkService/internal/data"
	"RandomWalkService/internal/mock"
	"RandomWalkService/internal/render"
	"RandomWalkService/internal/scheduler"
	"RandomWalkService/internal/service"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to an optional YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("random walk service failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	logger := config.NewLogger(os.Stdout, cfg.App)
	slog.SetDefault(logger)

	// Cancelled on SIGINT/SIGTERM, which stops the server and the scheduler
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Session storage holds the per-browser state between interactions
	sessions := data.NewInMemorySessionStorageWithConfig(cfg.StorageConfig())

	// 2. Data provider: default walk generator and upload ingestion
	generator := mock.NewRandomWalkGeneratorWithConfig(cfg.GeneratorConfig())
	ingestion := core.NewSeriesIngestionService(cfg.Upload.MaxBytes, logger)

	// 3. Walk service implements the interactions over explicit session state
	walkService := service.NewWalkService(generator, ingestion, logger)

	renderer, err := render.NewRenderer(render.DefaultsView{
		Length:     cfg.Walk.Length,
		StartPrice: cfg.Walk.StartPrice,
	})
	if err != nil {
		return err
	}

	// 4. Periodic sweep of idle sessions
	sched := scheduler.NewScheduler(sessions, logger)
	if err := sched.RegisterSweep(cfg.Session.SweepInterval); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	apiHandler := api.NewAPIHandler(walkService, sessions, renderer, api.HandlerConfig{
		MaxUploadBytes: cfg.Upload.MaxBytes,
		SessionTTL:     cfg.Session.TTL,
	}, logger)

	logger.Info("random walk service starting",
		"port", cfg.App.Port,
		"endpoints", []string{"GET /", "GET /api/v1/series", "GET /api/v1/stats", "GET /health"})

	if err := apiHandler.StartServer(ctx, cfg.App.Port); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("random walk service stopped")
	return nil
}
