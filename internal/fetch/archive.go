package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"
)

// bulletinLink matches the publisher's bulletin file naming inside an
// href, two-digit year then two-digit month.
var bulletinLink = regexp.MustCompile(`mw(\d{2})(\d{2})\.pdf`)

// Discovery lists the bulletins the publisher's archive page actually
// links. The page is script-rendered, so a plain GET sees none of the
// links; a headless browser does.
type Discovery struct {
	pageURL  string
	headless bool
	timeout  time.Duration
	logger   *slog.Logger
}

// NewDiscovery builds an archive discovery pass for the given page.
// A visible browser helps when debugging the rendered page locally.
func NewDiscovery(pageURL string, headless bool, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{pageURL: pageURL, headless: headless, timeout: 90 * time.Second, logger: logger}
}

// Available renders the archive page and returns the bulletin months
// it links, oldest first.
func (d *Discovery) Available(ctx context.Context) ([]time.Time, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions(d.headless)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, d.timeout)
	defer cancelRun()

	var hrefs []string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(d.pageURL),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(`Array.from(document.querySelectorAll('a[href]')).map(a => a.href)`, &hrefs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render archive page %s: %w", d.pageURL, err)
	}

	months := ParseBulletinLinks(hrefs)
	d.logger.Info("archive discovery complete",
		slog.String("page", d.pageURL),
		slog.Int("links", len(hrefs)),
		slog.Int("bulletins", len(months)))
	return months, nil
}

// allocatorOptions starts from chromedp's defaults, which already run
// the browser headless, and switches to a visible window when asked.
func allocatorOptions(headless bool) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	return opts
}

// ParseBulletinLinks extracts the bulletin months from a list of
// hrefs, deduplicated and sorted oldest first. Two-digit years pivot
// at the century the publication history spans.
func ParseBulletinLinks(hrefs []string) []time.Time {
	seen := make(map[time.Time]bool)
	for _, href := range hrefs {
		m := bulletinLink.FindStringSubmatch(href)
		if m == nil {
			continue
		}
		yy, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if mm < 1 || mm > 12 {
			continue
		}
		year := 2000 + yy
		if yy >= 90 {
			year = 1900 + yy
		}
		seen[time.Date(year, time.Month(mm), 1, 0, 0, 0, 0, time.UTC)] = true
	}

	months := make([]time.Time, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	return months
}
