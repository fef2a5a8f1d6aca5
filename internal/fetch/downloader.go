// Package fetch acquires the monthly bulletins: a direct downloader
// that walks the publisher's predictable file naming, and a
// browser-driven discovery pass for the archive page when the naming
// alone is not enough.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"trrebwatch/internal/config"
	apperrors "trrebwatch/internal/errors"
	"trrebwatch/internal/infrastructure"
)

// Downloader fetches bulletin PDFs into the data directory. Files
// already on disk are never re-fetched; the publisher's archive is
// immutable.
type Downloader struct {
	client  *http.Client
	baseURL string
	paths   *config.Paths
	limiter *rate.Limiter
	workers int
	logger  *slog.Logger
}

// NewDownloader builds a downloader from the download configuration.
func NewDownloader(cfg config.DownloadConfig, paths *config.Paths, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Downloader{
		client:  &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		paths:   paths,
		limiter: rate.NewLimiter(limit, 1),
		workers: workers,
		logger:  logger,
	}
}

// URL returns the publisher's address for one bulletin.
func (d *Downloader) URL(year, month int) string {
	return fmt.Sprintf("%s/mw%02d%02d.pdf", d.baseURL, year%100, month)
}

// Fetch downloads one bulletin and returns its local path. A 404 from
// the publisher is a DocumentUnavailable condition, normal for months
// not yet published.
func (d *Downloader) Fetch(ctx context.Context, year, month int) (string, error) {
	target := d.paths.PDFPath(year, month)
	if _, err := os.Stat(target); err == nil {
		d.logger.Debug("bulletin already on disk", slog.String("path", target))
		return target, nil
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return "", err
	}

	url := d.URL(year, month)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrDocumentUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s returned 404", apperrors.ErrDocumentUnavailable, url)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s returned %d", apperrors.ErrDocumentUnavailable, url, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write bulletin: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close bulletin file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("failed to finalize bulletin: %w", err)
	}

	d.logger.Info("bulletin downloaded", slog.String("url", url), slog.String("path", target))
	infrastructure.BulletinsDownloaded.Inc()
	return target, nil
}

// Result is the outcome of one bulletin fetch.
type Result struct {
	Date time.Time
	Path string
	Err  error
}

// FetchRange downloads every month in [from, to] with a bounded
// worker pool. Unavailable months come back as per-month results, not
// an error; only context cancellation aborts the range.
func (d *Downloader) FetchRange(ctx context.Context, from, to time.Time) ([]Result, error) {
	months := MonthsBetween(from, to)
	results := make([]Result, len(months))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, m := range months {
		g.Go(func() error {
			path, err := d.Fetch(ctx, m.Year(), int(m.Month()))
			results[i] = Result{Date: m, Path: path, Err: err}
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	available := 0
	for _, r := range results {
		if r.Err == nil {
			available++
		}
	}
	d.logger.Info("range fetch complete",
		slog.Int("months", len(months)),
		slog.Int("available", available))
	return results, nil
}

// MonthsBetween lists the first-of-month dates from from to to,
// inclusive.
func MonthsBetween(from, to time.Time) []time.Time {
	var months []time.Time
	cur := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(end) {
		months = append(months, cur)
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}
