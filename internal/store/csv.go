// Package store materializes pipeline artifacts: one reconciled CSV
// per (bulletin, category) on disk, plus an optional relational sink
// for the typed records. The CSV artifacts double as the extraction
// cache; their presence is what lets a re-run skip the costly
// assisted extraction.
package store

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"trrebwatch/internal/config"
	"trrebwatch/pkg/contracts/domain"
)

// CSVStore reads and writes per-bulletin table artifacts under the
// extracted/ tree.
type CSVStore struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVStore builds a store over the configured data directory.
func NewCSVStore(paths *config.Paths, logger *slog.Logger) *CSVStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVStore{paths: paths, logger: logger}
}

// Exists reports whether the artifact for one bulletin is already
// materialized.
func (s *CSVStore) Exists(pt domain.PropertyType, date time.Time) bool {
	_, err := os.Stat(s.paths.ExtractedPath(pt, date.Year(), int(date.Month())))
	return err == nil
}

// WriteTable materializes one reconciled table. The write goes
// through a temp file and a rename so a crashed run never leaves a
// half-written artifact for the cache check to trust.
func (s *CSVStore) WriteTable(pt domain.PropertyType, date time.Time, table *domain.RawTable) error {
	target := s.paths.ExtractedPath(pt, date.Year(), int(date.Month()))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(table.Columns); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write artifact header: %w", err)
	}
	if err := w.WriteAll(table.Rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write artifact rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to finalize artifact: %w", err)
	}

	s.logger.Debug("artifact written", slog.String("path", target))
	return nil
}

// ReadTable loads one materialized table. Rows may be ragged; the
// reader tolerates that the same way extraction does.
func (s *CSVStore) ReadTable(pt domain.PropertyType, date time.Time) (*domain.RawTable, error) {
	path := s.paths.ExtractedPath(pt, date.Year(), int(date.Month()))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	if len(all) == 0 {
		return &domain.RawTable{}, nil
	}
	return &domain.RawTable{Columns: all[0], Rows: all[1:]}, nil
}

// List returns the bulletin dates with a materialized artifact for
// one category, in chronological order.
func (s *CSVStore) List(pt domain.PropertyType) ([]time.Time, error) {
	entries, err := os.ReadDir(s.paths.ExtractedDir(pt))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	var dates []time.Time
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".csv" {
			continue
		}
		d, err := time.Parse("2006-01", name[:len(name)-len(".csv")])
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}
