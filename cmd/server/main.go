package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/docrelay/docrelay/internal/api"
	"github.com/docrelay/docrelay/internal/config"
	"github.com/docrelay/docrelay/internal/infrastructure"
	"github.com/docrelay/docrelay/pkg/lifecycle"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(*configPath, logger); err != nil {
		logger.Error("service failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	coordinator := lifecycle.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := infrastructure.New(ctx, coordinator, cfg, logger)
	if err != nil {
		return err
	}

	domain := api.NewDomain(infra, cfg, logger)
	service := api.New(domain, cfg, logger)

	api.StartPurge(coordinator, domain.Shares, cfg.API.PurgeIntervalDuration(), logger.With("system", "purge"))

	server := newServer(cfg, coordinator, infra, service, logger)
	server.Start()

	coordinator.WaitForStartup()
	logger.Info("service ready", "addr", cfg.Server.Addr())

	<-ctx.Done()
	logger.Info("shutdown signal received")

	_, _, _, shutdownTimeout := cfg.Server.Durations()
	return coordinator.Shutdown(shutdownTimeout)
}
