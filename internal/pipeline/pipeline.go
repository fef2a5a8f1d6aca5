// Package pipeline drives the batch: every (bulletin, category) pair
// in a date range through extraction, then aggregation of the
// materialized artifacts into combined datasets, validation reports
// and exports. Document failures are recorded and isolated; one bad
// bulletin never stops the rest of the batch.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"trrebwatch/internal/config"
	"trrebwatch/internal/exporter"
	"trrebwatch/internal/extract"
	"trrebwatch/internal/fetch"
	"trrebwatch/internal/infrastructure"
	"trrebwatch/internal/normalize"
	"trrebwatch/internal/store"
	"trrebwatch/internal/validation"
	"trrebwatch/pkg/contracts/domain"
)

// DocumentProcessor is the slice of the dispatcher the runner
// drives; the batch driver needs nothing else from it.
type DocumentProcessor interface {
	Process(ctx context.Context, pdfPath string, pt domain.PropertyType, date time.Time) (bool, extract.Shape, error)
}

// Failure records one document that did not make it through.
type Failure struct {
	PropertyType domain.PropertyType
	Date         time.Time
	Err          error
}

// Summary is the outcome of one batch run.
type Summary struct {
	Processed int
	Failed    int
	Failures  []Failure
	Reports   map[domain.PropertyType]*domain.ValidationReport
}

// Runner orchestrates the batch.
type Runner struct {
	processor DocumentProcessor
	artifacts *store.CSVStore
	validator *validation.Engine
	exporter  *exporter.Exporter
	paths     *config.Paths
	workers   int
	logger    *slog.Logger
}

// NewRunner builds a batch runner.
func NewRunner(processor DocumentProcessor, artifacts *store.CSVStore, validator *validation.Engine,
	exp *exporter.Exporter, paths *config.Paths, workers int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		processor: processor,
		artifacts: artifacts,
		validator: validator,
		exporter:  exp,
		paths:     paths,
		workers:   workers,
		logger:    logger,
	}
}

// Run processes every bulletin in [from, to] for every category, then
// aggregates, validates and exports. The returned error covers only
// infrastructure failures; per-document failures land in the summary.
func (r *Runner) Run(ctx context.Context, from, to time.Time) (*Summary, error) {
	summary := r.processRange(ctx, from, to)
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	if err := r.aggregate(ctx, summary); err != nil {
		return summary, err
	}
	return summary, nil
}

func (r *Runner) processRange(ctx context.Context, from, to time.Time) *Summary {
	summary := &Summary{Reports: make(map[domain.PropertyType]*domain.ValidationReport)}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, month := range fetch.MonthsBetween(from, to) {
		for _, pt := range domain.PropertyTypes {
			g.Go(func() error {
				pdfPath := r.paths.PDFPath(month.Year(), int(month.Month()))
				if _, err := os.Stat(pdfPath); err != nil {
					mu.Lock()
					summary.Failed++
					summary.Failures = append(summary.Failures, Failure{
						PropertyType: pt, Date: month,
						Err: fmt.Errorf("bulletin not on disk: %w", err),
					})
					mu.Unlock()
					return nil
				}

				ok, _, err := r.processor.Process(ctx, pdfPath, pt, month)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					summary.Failed++
					summary.Failures = append(summary.Failures, Failure{PropertyType: pt, Date: month, Err: err})
					r.logger.Error("document failed",
						slog.String("property_type", string(pt)),
						slog.String("date", month.Format("2006-01")),
						slog.String("error", err.Error()))
					return nil
				}
				if ok {
					summary.Processed++
				}
				return nil
			})
		}
	}
	g.Wait()

	r.logger.Info("batch extraction complete",
		slog.Int("processed", summary.Processed),
		slog.Int("failed", summary.Failed))
	return summary
}

// aggregate loads every materialized artifact per category, types the
// rows into records, validates the combined dataset and writes the
// exports.
func (r *Runner) aggregate(ctx context.Context, summary *Summary) error {
	datasets := make(map[domain.PropertyType][]domain.MarketRecord)
	var reports []*domain.ValidationReport

	for _, pt := range domain.PropertyTypes {
		records, err := r.loadDataset(pt)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			continue
		}
		datasets[pt] = records

		report := r.validator.Run(records, pt)
		summary.Reports[pt] = report
		reports = append(reports, report)
		counts := make(map[domain.IssueSeverity]int)
		for _, issue := range report.Issues {
			counts[issue.Severity]++
		}
		for _, sev := range []domain.IssueSeverity{domain.SeverityWarning, domain.SeverityError} {
			infrastructure.ValidationIssues.WithLabelValues(string(pt), string(sev)).Set(float64(counts[sev]))
		}

		combined := filepath.Join(r.paths.ProcessedDir(pt), "market_watch.csv")
		if err := r.exporter.WriteCombinedCSV(combined, records); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if len(datasets) == 0 {
		r.logger.Warn("no artifacts to aggregate")
		return nil
	}

	workbook := filepath.Join(r.paths.ReportsDir(), "market_watch.xlsx")
	return r.exporter.WriteWorkbook(workbook, datasets, reports)
}

func (r *Runner) loadDatasetTables(pt domain.PropertyType) ([]time.Time, []*domain.RawTable, error) {
	dates, err := r.artifacts.List(pt)
	if err != nil {
		return nil, nil, err
	}
	tables := make([]*domain.RawTable, 0, len(dates))
	for _, date := range dates {
		table, err := r.artifacts.ReadTable(pt, date)
		if err != nil {
			return nil, nil, err
		}
		tables = append(tables, table)
	}
	return dates, tables, nil
}

func (r *Runner) loadDataset(pt domain.PropertyType) ([]domain.MarketRecord, error) {
	dates, tables, err := r.loadDatasetTables(pt)
	if err != nil {
		return nil, err
	}
	var records []domain.MarketRecord
	for i, table := range tables {
		recs, err := normalize.BuildRecords(table, pt, dates[i])
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}
