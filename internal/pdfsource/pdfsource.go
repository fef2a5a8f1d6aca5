// Package pdfsource adapts bulletin PDFs into the plain-text and
// positioned-word views the extraction stage consumes. It is the only
// package that touches a PDF library; everything downstream works on
// PageData values, which tests can construct directly.
package pdfsource

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	apperrors "trrebwatch/internal/errors"
)

// Word is one text run on a page with its position. X grows rightward
// and Y grows upward, in PDF points.
type Word struct {
	X, Y float64
	// W is the width of the run.
	W float64
	S string
}

// PageData is everything a strategy needs from one page.
type PageData struct {
	Number int
	Text   string
	Words  []Word
}

// Document is an open bulletin PDF.
type Document struct {
	path   string
	file   *os.File
	reader *pdf.Reader
}

// Open opens a bulletin. A missing or unreadable file is a
// DocumentUnavailable condition: the caller skips the bulletin and
// the batch continues.
func Open(path string) (*Document, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrDocumentUnavailable, path, err)
	}
	return &Document{path: path, file: file, reader: reader}, nil
}

// Close releases the underlying file.
func (d *Document) Close() error { return d.file.Close() }

// Path returns the file the document was opened from.
func (d *Document) Path() string { return d.path }

// NumPages returns the page count.
func (d *Document) NumPages() int { return d.reader.NumPage() }

// Page extracts text and positioned words for the 1-indexed page.
func (d *Document) Page(number int) (*PageData, error) {
	if number < 1 || number > d.reader.NumPage() {
		return nil, fmt.Errorf("page %d out of range (1..%d)", number, d.reader.NumPage())
	}
	page := d.reader.Page(number)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d is empty", number)
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from page %d: %w", number, err)
	}

	return &PageData{
		Number: number,
		Text:   text,
		Words:  assembleWords(page.Content().Text),
	}, nil
}

// assembleWords merges raw text runs into words. The PDF library
// returns runs that can be as small as single glyphs; runs on the
// same line separated by less than half the average glyph width
// belong to one word.
func assembleWords(runs []pdf.Text) []Word {
	if len(runs) == 0 {
		return nil
	}

	sorted := append([]pdf.Text(nil), runs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sameLine(sorted[i].Y, sorted[j].Y) {
			return sorted[i].Y > sorted[j].Y // top of page first
		}
		return sorted[i].X < sorted[j].X
	})

	var words []Word
	var current strings.Builder
	var start, end, y float64

	flush := func() {
		if current.Len() > 0 {
			words = append(words, Word{X: start, Y: y, W: end - start, S: current.String()})
			current.Reset()
		}
	}

	for i, run := range sorted {
		s := strings.TrimRight(run.S, "\n")
		if strings.TrimSpace(s) == "" {
			continue
		}
		gap := run.X - end
		if i == 0 || current.Len() == 0 || !sameLine(run.Y, y) || gap > joinGap(run.FontSize) {
			flush()
			start, y = run.X, run.Y
		}
		current.WriteString(s)
		end = run.X + run.W
	}
	flush()
	return words
}

// sameLine tolerates the small Y jitter of superscript footnote
// markers in the older bulletins.
func sameLine(a, b float64) bool {
	d := a - b
	return d < 2.0 && d > -2.0
}

func joinGap(fontSize float64) float64 {
	if fontSize <= 0 {
		return 2.0
	}
	return fontSize * 0.35
}
