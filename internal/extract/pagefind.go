package extract

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "trrebwatch/internal/errors"
	"trrebwatch/internal/pdfsource"
	"trrebwatch/pkg/contracts/domain"
)

// maxScanPages bounds the section search; the summary pages have
// always appeared within the first 30 pages of every generation.
const maxScanPages = 30

// Section title patterns across the format generations. A match only
// counts on the board-wide summary page, i.e. alongside an "ALL TRREB
// AREAS" (or pre-rename "ALL TREB AREAS") marker.
var (
	allHomePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(ALL HOME TYPES,|SUMMARY OF EXISTING HOME TRANSACTIONS All Home Types)`),
		regexp.MustCompile(`(?i)SUMMARY OF EXISTING HOME TRANSACTIONS ALL TRREB AREAS`),
		regexp.MustCompile(`(?i)SUMMARY OF EXISTING HOME TRANSACTIONS ALL TREB AREAS`),
	}
	detachedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(DETACHED,|SUMMARY OF EXISTING HOME TRANSACTIONS Detached)`),
		regexp.MustCompile(`(?i)SUMMARY OF EXISTING HOME TRANSACTIONS DETACHED`),
		regexp.MustCompile(`(?i)DETACHED, [A-Z]+ \d{4}`),
		regexp.MustCompile(`(?i)SUMMARY OF SALES AND AVERAGE PRICE BY MAJOR HOME TYPE, DETACHED`),
	}
)

func boardWide(text string) bool {
	return strings.Contains(text, "ALL TRREB AREAS") || strings.Contains(text, "ALL TREB AREAS")
}

// FindSectionPage locates the summary page for a property type and
// returns its page data. Not finding the section is a
// DocumentUnavailable condition for that (bulletin, property type)
// pair.
func FindSectionPage(doc *pdfsource.Document, pt domain.PropertyType) (*pdfsource.PageData, error) {
	patterns := allHomePatterns
	if pt == domain.PropertyDetached {
		patterns = detachedPatterns
	}

	limit := doc.NumPages()
	if limit > maxScanPages {
		limit = maxScanPages
	}

	pages := make([]*pdfsource.PageData, 0, limit)
	for number := 1; number <= limit; number++ {
		page, err := doc.Page(number)
		if err != nil {
			// A single unreadable page does not end the search.
			continue
		}
		pages = append(pages, page)

		for _, pattern := range patterns {
			if pattern.MatchString(page.Text) && boardWide(page.Text) {
				return page, nil
			}
		}
	}

	// Older layouts title the detached summary differently; fall back
	// to content-based identification.
	if pt == domain.PropertyDetached {
		if page := detachedFallback(pages); page != nil {
			return page, nil
		}
	}

	return nil, fmt.Errorf("%w: no %s summary page in %s", apperrors.ErrDocumentUnavailable, pt, doc.Path())
}

func detachedFallback(pages []*pdfsource.PageData) *pdfsource.PageData {
	for _, page := range pages {
		upper := strings.ToUpper(page.Text)
		if strings.Contains(upper, "DETACHED") &&
			strings.Contains(upper, "SALES") &&
			strings.Contains(upper, "AVERAGE PRICE") &&
			boardWide(page.Text) {
			return page
		}
		if strings.Contains(upper, "SUMMARY OF EXISTING HOME TRANSACTIONS") &&
			strings.Contains(upper, "DETACHED") {
			return page
		}
	}
	return nil
}
