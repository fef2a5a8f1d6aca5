// Command downloader fetches the monthly bulletin PDFs into the data
// directory. By default it walks every month from the configured
// start year to the current month; with -discover it first renders
// the publisher's archive page to learn which months actually exist.
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
	"trrebwatch/internal/fetch"
	"trrebwatch/internal/infrastructure"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "downloader: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	godotenv.Load()

	var (
		fromFlag = flag.String("from", "", "first month to fetch (YYYY-MM, default config start year)")
		toFlag   = flag.String("to", "", "last month to fetch (YYYY-MM, default current month)")
		discover = flag.Bool("discover", false, "render the archive page to discover available bulletins")
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

	paths := config.NewPaths(cfg.Paths)
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	downloader := fetch.NewDownloader(cfg.Download, paths, logger)

	if *discover {
		return runDiscovered(ctx, cfg, downloader, logger)
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

	results, err := downloader.FetchRange(ctx, from, to)
	if err != nil {
		return err
	}
	report(results, logger)
	return nil
}

func runDiscovered(ctx context.Context, cfg *config.Config, downloader *fetch.Downloader, logger *slog.Logger) error {
	months, err := fetch.NewDiscovery(cfg.Download.ArchiveURL, cfg.Download.Headless, logger).Available(ctx)
	if err != nil {
		return err
	}
	if len(months) == 0 {
		logger.Warn("archive page listed no bulletins")
		return nil
	}

	var results []fetch.Result
	for _, m := range months {
		path, err := downloader.Fetch(ctx, m.Year(), int(m.Month()))
		results = append(results, fetch.Result{Date: m, Path: path, Err: err})
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	report(results, logger)
	return nil
}

func report(results []fetch.Result, logger *slog.Logger) {
	fetched := 0
	for _, r := range results {
		if r.Err == nil {
			fetched++
		} else {
			logger.Warn("bulletin unavailable",
				slog.String("month", r.Date.Format("2006-01")),
				slog.String("error", r.Err.Error()))
		}
	}
	logger.Info("download run complete",
		slog.Int("months", len(results)),
		slog.Int("available", fetched))
}
