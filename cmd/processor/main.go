// Command processor runs the batch: every downloaded bulletin through
// extraction, normalization and schema reconciliation into per-month
// artifacts, then aggregation into combined datasets, validation
// reports and exports. Optionally persists the typed records to
// postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"trrebwatch/internal/config"
	"trrebwatch/internal/era"
	"trrebwatch/internal/exporter"
	"trrebwatch/internal/extract"
	"trrebwatch/internal/fetch"
	"trrebwatch/internal/infrastructure"
	"trrebwatch/internal/llm"
	"trrebwatch/internal/normalize"
	"trrebwatch/internal/pipeline"
	"trrebwatch/internal/store"
	"trrebwatch/internal/validation"
	"trrebwatch/pkg/contracts/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "processor: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	godotenv.Load()

	var (
		fromFlag  = flag.String("from", "", "first month to process (YYYY-MM, default config start year)")
		toFlag    = flag.String("to", "", "last month to process (YYYY-MM, default current month)")
		overwrite = flag.Bool("overwrite", false, "re-extract even when an artifact already exists")
	)
	flag.Parse()

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

	shutdownTracing, err := infrastructure.InitializeTracing(ctx, "trrebwatch-processor")
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	paths := config.NewPaths(cfg.Paths)
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	from := time.Date(cfg.Download.StartYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	if *fromFlag != "" {
		if from, err = time.Parse("2006-01", *fromFlag); err != nil {
			return fmt.Errorf("invalid -from: %w", err)
		}
	}
	to := time.Now().UTC()
	if *toFlag != "" {
		if to, err = time.Parse("2006-01", *toFlag); err != nil {
			return fmt.Errorf("invalid -to: %w", err)
		}
	}

	artifacts := store.NewCSVStore(paths, logger)
	dispatcher := extract.NewDispatcher(llm.NewClient(cfg.LLM), artifacts,
		*overwrite || cfg.Batch.Overwrite, logger)
	runner := pipeline.NewRunner(dispatcher, artifacts, validation.NewEngine(logger),
		exporter.New(logger), paths, cfg.Batch.Workers, logger)

	summary, err := runner.Run(ctx, from, to)
	if err != nil {
		return err
	}

	logger.Info("batch complete",
		slog.Int("processed", summary.Processed),
		slog.Int("failed", summary.Failed))
	for pt, report := range summary.Reports {
		logger.Info("validation report",
			slog.String("property_type", string(pt)),
			slog.Int("records", report.RecordCount),
			slog.Int("issues", len(report.Issues)),
			slog.Bool("valid", report.Valid()))
	}

	if cfg.Database.DSN != "" {
		if err := persist(ctx, cfg.Database.DSN, fetch.MonthsBetween(from, to), artifacts, logger); err != nil {
			return err
		}
	}
	return nil
}

// persist types every artifact in range and upserts the records.
func persist(ctx context.Context, dsn string, months []time.Time, artifacts *store.CSVStore, logger *slog.Logger) error {
	sink, err := store.NewPostgresSink(ctx, dsn, logger)
	if err != nil {
		return err
	}
	defer sink.Close()

	if err := sink.EnsureSchema(ctx); err != nil {
		return err
	}

	for _, pt := range domain.PropertyTypes {
		records, err := loadRecords(pt, months, artifacts)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			continue
		}
		if err := sink.UpsertRecords(ctx, records); err != nil {
			return err
		}
	}
	return nil
}

func loadRecords(pt domain.PropertyType, months []time.Time, artifacts *store.CSVStore) ([]domain.MarketRecord, error) {
	var records []domain.MarketRecord
	for _, m := range months {
		if !artifacts.Exists(pt, m) {
			continue
		}
		table, err := artifacts.ReadTable(pt, m)
		if err != nil {
			return nil, err
		}
		recs, err := normalize.BuildRecords(table, pt, m)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}
