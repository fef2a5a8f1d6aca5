package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"trrebwatch/internal/era"
	apperrors "trrebwatch/internal/errors"
	"trrebwatch/internal/infrastructure"
	"trrebwatch/internal/normalize"
	"trrebwatch/internal/pdfsource"
	"trrebwatch/internal/reconcile"
	"trrebwatch/pkg/contracts/domain"
)

// ArtifactStore is the slice of the artifact store the dispatcher
// needs: existence checks for the cache short-circuit and table
// writes.
type ArtifactStore interface {
	Exists(pt domain.PropertyType, date time.Time) bool
	WriteTable(pt domain.PropertyType, date time.Time, table *domain.RawTable) error
}

// Dispatcher selects the extraction strategy for each bulletin and
// runs the per-document pipeline: locate the summary page, extract,
// normalize, reconcile, store. It holds no per-document state; one
// dispatcher serves a whole concurrent batch.
type Dispatcher struct {
	completer Completer
	store     ArtifactStore
	overwrite bool
	logger    *slog.Logger
}

// NewDispatcher builds a dispatcher. completer may be nil when only
// pre-cutover bulletins will be processed.
func NewDispatcher(completer Completer, store ArtifactStore, overwrite bool, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{completer: completer, store: store, overwrite: overwrite, logger: logger}
}

// ForDate returns the strategy for a bulletin date. Pure selection:
// the era alone decides, and the dispatcher never branches on era
// anywhere else. Layout reconstruction handles the pre-2020
// generation; the later generations defeat positional analysis and go
// through the assisted strategy with an era-specific template.
func (d *Dispatcher) ForDate(date time.Time, pt domain.PropertyType) Strategy {
	e := era.Classify(date)
	if e == domain.EraPre2020 {
		return NewLayoutStrategy(d.logger)
	}
	return NewAssistedStrategy(d.completer, pt, e, d.logger)
}

// Process runs one (bulletin, property type) pair end to end and
// reports success with the reconciled table's shape. If the output
// artifact already exists and overwrite is off, it short-circuits
// with success: extraction, and the assisted strategy in particular,
// is costly and must not repeat once a result has been materialized.
// A returned error covers exactly one document; the batch driver
// records it and continues.
func (d *Dispatcher) Process(ctx context.Context, pdfPath string, pt domain.PropertyType, date time.Time) (bool, Shape, error) {
	e := era.Classify(date)
	logger := d.logger.With(
		slog.String("property_type", string(pt)),
		slog.String("date", date.Format("2006-01")),
		slog.String("era", string(e)))

	if !d.overwrite && d.store.Exists(pt, date) {
		logger.Debug("artifact already exists, skipping extraction")
		infrastructure.DocumentsCached.WithLabelValues(string(pt)).Inc()
		return true, Shape{}, nil
	}

	ctx, span := infrastructure.Tracer().Start(ctx, "document.process",
		trace.WithAttributes(
			attribute.String("property_type", string(pt)),
			attribute.String("era", string(e)),
			attribute.String("date", date.Format("2006-01"))))
	defer span.End()

	table, err := d.extract(ctx, pdfPath, pt, date)
	if err != nil {
		infrastructure.DocumentsFailed.WithLabelValues(string(pt), string(e)).Inc()
		return false, Shape{}, apperrors.NewDocumentError(string(pt), date.Format("2006-01"), err)
	}
	if table.Empty() {
		infrastructure.DocumentsFailed.WithLabelValues(string(pt), string(e)).Inc()
		return false, Shape{}, apperrors.NewDocumentError(string(pt), date.Format("2006-01"),
			fmt.Errorf("%w: no usable table found", apperrors.ErrExtractionFailed))
	}

	cleaned := normalize.Table(table, logger)

	expected, err := era.ExpectedFieldNames(pt, e)
	if err != nil {
		// Unreachable after the startup registry check; kept as a
		// guard for programmer error.
		return false, Shape{}, err
	}
	reconciled := reconcile.Reconcile(cleaned, expected, logger)

	if err := d.store.WriteTable(pt, date, reconciled); err != nil {
		return false, Shape{}, fmt.Errorf("failed to store artifact: %w", err)
	}

	rows, cols := reconciled.Shape()
	logger.Info("document processed", slog.Int("rows", rows), slog.Int("cols", cols))
	infrastructure.DocumentsProcessed.WithLabelValues(string(pt), string(e)).Inc()
	return true, Shape{Rows: rows, Cols: cols}, nil
}

func (d *Dispatcher) extract(ctx context.Context, pdfPath string, pt domain.PropertyType, date time.Time) (*domain.RawTable, error) {
	doc, err := pdfsource.Open(pdfPath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	page, err := FindSectionPage(doc, pt)
	if err != nil {
		return nil, err
	}

	return d.ForDate(date, pt).Extract(ctx, page)
}
