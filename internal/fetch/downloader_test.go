package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trrebwatch/internal/config"
	apperrors "trrebwatch/internal/errors"
)

func newTestDownloader(t *testing.T, handler http.Handler) (*Downloader, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	d := NewDownloader(
		config.DownloadConfig{BaseURL: srv.URL, Workers: 3},
		&config.Paths{DataDir: t.TempDir()},
		nil,
	)
	return d, srv
}

func TestFetchDownloadsBulletin(t *testing.T) {
	d, _ := newTestDownloader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mw2310.pdf", r.URL.Path)
		w.Write([]byte("%PDF-1.7 fake"))
	}))

	path, err := d.Fetch(context.Background(), 2023, 10)

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 fake", string(data))
}

func TestFetchSkipsExistingFile(t *testing.T) {
	var hits atomic.Int32
	d, _ := newTestDownloader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("pdf"))
	}))

	_, err := d.Fetch(context.Background(), 2023, 10)
	require.NoError(t, err)
	_, err = d.Fetch(context.Background(), 2023, 10)
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchNotFound(t *testing.T) {
	d, _ := newTestDownloader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := d.Fetch(context.Background(), 2026, 12)

	require.Error(t, err)
	assert.True(t, apperrors.IsDocumentUnavailable(err))
}

func TestFetchRangeIsolatesFailures(t *testing.T) {
	d, _ := newTestDownloader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/mw2402.pdf" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("pdf"))
	}))

	results, err := d.FetchRange(context.Background(),
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.True(t, apperrors.IsDocumentUnavailable(results[1].Err))
	assert.NoError(t, results[2].Err)
}

func TestMonthsBetween(t *testing.T) {
	months := MonthsBetween(
		time.Date(2019, time.November, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2020, time.February, 3, 0, 0, 0, 0, time.UTC))

	require.Len(t, months, 4)
	assert.Equal(t, "2019-11", months[0].Format("2006-01"))
	assert.Equal(t, "2020-02", months[3].Format("2006-01"))
}

func TestMonthsBetweenSingleMonth(t *testing.T) {
	d := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	months := MonthsBetween(d, d)
	require.Len(t, months, 1)
	assert.Equal(t, d, months[0])
}

func TestParseBulletinLinks(t *testing.T) {
	months := ParseBulletinLinks([]string{
		"https://trreb.ca/wp-content/files/market-stats/market-watch/mw2406.pdf",
		"https://trreb.ca/wp-content/files/market-stats/market-watch/mw1601.pdf",
		"https://trreb.ca/wp-content/files/market-stats/market-watch/mw2406.pdf",
		"https://trreb.ca/about",
		"https://trreb.ca/files/mw9913.pdf",
	})

	require.Len(t, months, 2)
	assert.Equal(t, "2016-01", months[0].Format("2006-01"))
	assert.Equal(t, "2024-06", months[1].Format("2006-01"))
}

func TestDiscoveryHeadlessOption(t *testing.T) {
	d := NewDiscovery("https://trreb.ca/market-data/market-watch/", false, nil)
	assert.False(t, d.headless)

	base := allocatorOptions(true)
	visible := allocatorOptions(false)
	assert.Len(t, base, len(chromedp.DefaultExecAllocatorOptions))
	assert.Len(t, visible, len(base)+1)
}

func TestURL(t *testing.T) {
	d := NewDownloader(config.DownloadConfig{BaseURL: "https://example.com/mw", Workers: 1}, &config.Paths{DataDir: "/tmp"}, nil)
	assert.Equal(t, "https://example.com/mw/mw1601.pdf", d.URL(2016, 1))
	assert.Equal(t, "https://example.com/mw/mw2412.pdf", d.URL(2024, 12))
}
