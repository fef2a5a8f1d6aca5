// Package errors defines the pipeline error taxonomy and the
// structured error responses of the HTTP surface. Only the two
// document-level conditions (source unavailable, extraction failure)
// propagate at all, and they abort a single document, never the
// batch; everything below them resolves locally to a null value and a
// log entry.
package errors

import (
	"errors"
	"fmt"
)

// Document-level conditions. Both are non-fatal to the batch: the
// driver records them and moves on to the next bulletin.
var (
	// ErrDocumentUnavailable means the source bulletin could not be
	// fetched or opened.
	ErrDocumentUnavailable = errors.New("document unavailable")

	// ErrExtractionFailed means no usable table came out of the
	// document: empty extraction result, a service error from the
	// assisted extractor, or a malformed reply.
	ErrExtractionFailed = errors.New("extraction failed")
)

// DocumentError wraps a document-level condition with the identifying
// context the batch driver logs.
type DocumentError struct {
	PropertyType string
	Date         string
	Err          error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.PropertyType, e.Date, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// NewDocumentError builds a DocumentError for the given bulletin.
func NewDocumentError(propertyType, date string, err error) *DocumentError {
	return &DocumentError{PropertyType: propertyType, Date: date, Err: err}
}

// IsDocumentUnavailable reports whether err is a source fetch failure.
func IsDocumentUnavailable(err error) bool {
	return errors.Is(err, ErrDocumentUnavailable)
}

// IsExtractionFailure reports whether err is an extraction failure.
func IsExtractionFailure(err error) bool {
	return errors.Is(err, ErrExtractionFailed)
}
