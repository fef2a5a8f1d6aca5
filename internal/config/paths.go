package config

import (
	"fmt"
	"os"
	"path/filepath"

	"trrebwatch/pkg/contracts/domain"
)

// Paths resolves every file the pipeline reads or writes under the
// configured data directory:
//
//	data/
//	  pdfs/                    downloaded bulletins (mw1601.pdf, ...)
//	  extracted/<category>/    per-bulletin reconciled CSVs (2016-01.csv, ...)
//	  processed/<category>/    combined per-category datasets
//	  reports/                 validation reports, XLSX exports
//	  logs/
type Paths struct {
	DataDir string
}

// NewPaths builds a Paths rooted at the configured data directory.
func NewPaths(cfg PathsConfig) *Paths {
	return &Paths{DataDir: cfg.DataDir}
}

// PDFDir is where downloaded bulletins land.
func (p *Paths) PDFDir() string { return filepath.Join(p.DataDir, "pdfs") }

// ExtractedDir holds one reconciled CSV per (bulletin, category).
func (p *Paths) ExtractedDir(pt domain.PropertyType) string {
	return filepath.Join(p.DataDir, "extracted", string(pt))
}

// ProcessedDir holds the combined per-category datasets.
func (p *Paths) ProcessedDir(pt domain.PropertyType) string {
	return filepath.Join(p.DataDir, "processed", string(pt))
}

// ReportsDir holds validation reports and workbook exports.
func (p *Paths) ReportsDir() string { return filepath.Join(p.DataDir, "reports") }

// LogsDir holds log files.
func (p *Paths) LogsDir() string { return filepath.Join(p.DataDir, "logs") }

// PDFPath names the bulletin file for a year and month, matching the
// publisher's own naming (two-digit year, two-digit month).
func (p *Paths) PDFPath(year, month int) string {
	return filepath.Join(p.PDFDir(), fmt.Sprintf("mw%02d%02d.pdf", year%100, month))
}

// ExtractedPath names the reconciled CSV artifact for one bulletin.
func (p *Paths) ExtractedPath(pt domain.PropertyType, year, month int) string {
	return filepath.Join(p.ExtractedDir(pt), fmt.Sprintf("%04d-%02d.csv", year, month))
}

// EnsureDirectories creates the full directory tree.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.PDFDir(), p.ReportsDir(), p.LogsDir()}
	for _, pt := range domain.PropertyTypes {
		dirs = append(dirs, p.ExtractedDir(pt), p.ProcessedDir(pt))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
