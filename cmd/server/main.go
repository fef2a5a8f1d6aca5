// Command server exposes the read-only HTTP API over the
// materialized datasets: records, regions, validation reports, health
// and Prometheus metrics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"trrebwatch/internal/config"
	"trrebwatch/internal/era"
	"trrebwatch/internal/infrastructure"
	"trrebwatch/internal/services"
	"trrebwatch/internal/store"
	transport "trrebwatch/internal/transport/http"
	"trrebwatch/internal/validation"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer infrastructure.CloseLogFile()

	if err := era.VerifyRegistry(); err != nil {
		return fmt.Errorf("field registry corrupt: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := infrastructure.InitializeTracing(ctx, "trrebwatch-server")
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	paths := config.NewPaths(cfg.Paths)
	artifacts := store.NewCSVStore(paths, logger)
	data := services.NewDataService(artifacts, validation.NewEngine(logger), logger)
	health := services.NewHealthService(artifacts)

	srv := transport.NewServer(cfg.Server, data, health, logger)
	return srv.ListenAndServe(ctx)
}
