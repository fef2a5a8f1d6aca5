package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"trrebwatch/pkg/contracts/domain"
)

// PostgresSink persists typed market records into a relational table
// keyed on (category, date, region), so re-running a batch upserts
// rather than duplicates.
type PostgresSink struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresSink opens the database connection and verifies it.
func NewPostgresSink(ctx context.Context, dsn string, logger *slog.Logger) (*PostgresSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresSink{db: db, logger: logger}, nil
}

// Close releases the connection pool.
func (s *PostgresSink) Close() error { return s.db.Close() }

const schemaDDL = `
CREATE TABLE IF NOT EXISTS market_records (
    property_type    TEXT             NOT NULL,
    date             DATE             NOT NULL,
    region           TEXT             NOT NULL,
    parent_region    TEXT             NOT NULL,
    region_type      TEXT             NOT NULL,
    sales            BIGINT,
    dollar_volume    DOUBLE PRECISION,
    average_price    DOUBLE PRECISION,
    median_price     DOUBLE PRECISION,
    new_listings     BIGINT,
    snlr_trend       DOUBLE PRECISION,
    active_listings  BIGINT,
    months_inventory DOUBLE PRECISION,
    avg_sp_lp        DOUBLE PRECISION,
    avg_dom          DOUBLE PRECISION,
    avg_pdom         DOUBLE PRECISION,
    PRIMARY KEY (property_type, date, region)
)`

// EnsureSchema creates the records table when absent.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

const upsertSQL = `
INSERT INTO market_records (
    property_type, date, region, parent_region, region_type,
    sales, dollar_volume, average_price, median_price, new_listings,
    snlr_trend, active_listings, months_inventory, avg_sp_lp, avg_dom, avg_pdom
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (property_type, date, region) DO UPDATE SET
    parent_region    = EXCLUDED.parent_region,
    region_type      = EXCLUDED.region_type,
    sales            = EXCLUDED.sales,
    dollar_volume    = EXCLUDED.dollar_volume,
    average_price    = EXCLUDED.average_price,
    median_price     = EXCLUDED.median_price,
    new_listings     = EXCLUDED.new_listings,
    snlr_trend       = EXCLUDED.snlr_trend,
    active_listings  = EXCLUDED.active_listings,
    months_inventory = EXCLUDED.months_inventory,
    avg_sp_lp        = EXCLUDED.avg_sp_lp,
    avg_dom          = EXCLUDED.avg_dom,
    avg_pdom         = EXCLUDED.avg_pdom`

// UpsertRecords writes a batch of records in one transaction.
func (s *PostgresSink) UpsertRecords(ctx context.Context, records []domain.MarketRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			string(rec.PropertyType), rec.Date, rec.Region, rec.ParentRegion, string(rec.RegionType),
			nullInt(rec.Sales), nullFloat(rec.DollarVolume), nullFloat(rec.AveragePrice),
			nullFloat(rec.MedianPrice), nullInt(rec.NewListings), nullFloat(rec.SNLRTrend),
			nullInt(rec.ActiveListings), nullFloat(rec.MonthsInventory), nullFloat(rec.AvgSPLP),
			nullFloat(rec.AvgDOM), nullFloat(rec.AvgPDOM))
		if err != nil {
			return fmt.Errorf("failed to upsert record %s %s: %w",
				rec.Region, rec.Date.Format("2006-01"), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	s.logger.Info("records persisted", slog.Int("count", len(records)))
	return nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
