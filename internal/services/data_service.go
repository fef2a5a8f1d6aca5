// Package services holds the read-side services behind the HTTP
// surface: dataset access over the materialized artifacts and the
// health service.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"trrebwatch/internal/normalize"
	"trrebwatch/internal/store"
	"trrebwatch/internal/validation"
	"trrebwatch/pkg/contracts/domain"
)

// DataService serves the combined datasets and validation reports.
// Datasets are rebuilt from the artifacts on demand and cached with a
// short TTL; the artifacts only change when a batch runs.
type DataService struct {
	artifacts *store.CSVStore
	validator *validation.Engine
	logger    *slog.Logger

	mu       sync.Mutex
	cache    map[domain.PropertyType]*cachedDataset
	cacheTTL time.Duration
}

type cachedDataset struct {
	records []domain.MarketRecord
	report  *domain.ValidationReport
	loaded  time.Time
}

// NewDataService builds a data service over the artifact store.
func NewDataService(artifacts *store.CSVStore, validator *validation.Engine, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		artifacts: artifacts,
		validator: validator,
		logger:    logger.With(slog.String("service", "data")),
		cache:     make(map[domain.PropertyType]*cachedDataset),
		cacheTTL:  time.Minute,
	}
}

// Dataset returns every record of one category, oldest bulletin
// first.
func (s *DataService) Dataset(ctx context.Context, pt domain.PropertyType) ([]domain.MarketRecord, error) {
	ds, err := s.load(ctx, pt)
	if err != nil {
		return nil, err
	}
	return ds.records, nil
}

// Report returns the validation report for one category's current
// dataset.
func (s *DataService) Report(ctx context.Context, pt domain.PropertyType) (*domain.ValidationReport, error) {
	ds, err := s.load(ctx, pt)
	if err != nil {
		return nil, err
	}
	return ds.report, nil
}

// Regions returns the distinct regions present in one category's
// dataset, in first-seen order.
func (s *DataService) Regions(ctx context.Context, pt domain.PropertyType) ([]string, error) {
	ds, err := s.load(ctx, pt)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var regions []string
	for _, rec := range ds.records {
		if !seen[rec.Region] {
			seen[rec.Region] = true
			regions = append(regions, rec.Region)
		}
	}
	return regions, nil
}

func (s *DataService) load(ctx context.Context, pt domain.PropertyType) (*cachedDataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.cache[pt]; ok && time.Since(cached.loaded) < s.cacheTTL {
		return cached, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dates, err := s.artifacts.List(pt)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	var records []domain.MarketRecord
	for _, date := range dates {
		table, err := s.artifacts.ReadTable(pt, date)
		if err != nil {
			return nil, err
		}
		recs, err := normalize.BuildRecords(table, pt, date)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}

	ds := &cachedDataset{
		records: records,
		report:  s.validator.Run(records, pt),
		loaded:  time.Now(),
	}
	s.cache[pt] = ds
	s.logger.Debug("dataset loaded",
		slog.String("property_type", string(pt)),
		slog.Int("bulletins", len(dates)),
		slog.Int("records", len(records)))
	return ds, nil
}

// Invalidate drops the cached datasets, forcing a reload on the next
// read. Called after a batch run completes.
func (s *DataService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[domain.PropertyType]*cachedDataset)
}
