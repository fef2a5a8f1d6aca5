// Package http is the read-only HTTP surface over the materialized
// datasets: per-category records, distinct regions and validation
// reports, plus health and Prometheus metrics.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "trrebwatch/internal/errors"
	"trrebwatch/internal/services"
	"trrebwatch/pkg/contracts/domain"
)

// DataHandler serves dataset reads.
type DataHandler struct {
	service *services.DataService
	logger  *slog.Logger
}

// NewDataHandler creates a data handler.
func NewDataHandler(service *services.DataService, logger *slog.Logger) *DataHandler {
	return &DataHandler{service: service, logger: logger.With(slog.String("handler", "data"))}
}

// category resolves the {category} URL parameter.
func category(r *http.Request) (domain.PropertyType, *apperrors.APIError) {
	raw := chi.URLParam(r, "category")
	for _, pt := range domain.PropertyTypes {
		if raw == string(pt) {
			return pt, nil
		}
	}
	return "", apperrors.UnknownCategory(raw)
}

// Dataset handles GET /api/dataset/{category}. Optional query
// parameters: region (exact canonical name), from and to (YYYY-MM,
// inclusive).
func (h *DataHandler) Dataset(w http.ResponseWriter, r *http.Request) {
	pt, apiErr := category(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}

	records, err := h.service.Dataset(r.Context(), pt)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load dataset",
			slog.String("property_type", string(pt)),
			slog.String("error", err.Error()))
		render.Render(w, r, apperrors.ErrInternalServer)
		return
	}

	filtered, apiErr := filterRecords(records, r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"property_type": pt,
		"count":         len(filtered),
		"records":       filtered,
	})
}

func filterRecords(records []domain.MarketRecord, r *http.Request) ([]domain.MarketRecord, *apperrors.APIError) {
	region := r.URL.Query().Get("region")

	var from, to time.Time
	var err error
	if raw := r.URL.Query().Get("from"); raw != "" {
		if from, err = time.Parse("2006-01", raw); err != nil {
			return nil, apperrors.NewAPIError(http.StatusBadRequest, "INVALID_REQUEST", "from must be YYYY-MM")
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if to, err = time.Parse("2006-01", raw); err != nil {
			return nil, apperrors.NewAPIError(http.StatusBadRequest, "INVALID_REQUEST", "to must be YYYY-MM")
		}
	}

	filtered := make([]domain.MarketRecord, 0, len(records))
	for _, rec := range records {
		if region != "" && rec.Region != region {
			continue
		}
		if !from.IsZero() && rec.Date.Before(from) {
			continue
		}
		if !to.IsZero() && rec.Date.After(to) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered, nil
}

// Regions handles GET /api/dataset/{category}/regions.
func (h *DataHandler) Regions(w http.ResponseWriter, r *http.Request) {
	pt, apiErr := category(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}

	regions, err := h.service.Regions(r.Context(), pt)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list regions",
			slog.String("error", err.Error()))
		render.Render(w, r, apperrors.ErrInternalServer)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"property_type": pt,
		"regions":       regions,
	})
}

// Validation handles GET /api/validation/{category}.
func (h *DataHandler) Validation(w http.ResponseWriter, r *http.Request) {
	pt, apiErr := category(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}

	report, err := h.service.Report(r.Context(), pt)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build validation report",
			slog.String("error", err.Error()))
		render.Render(w, r, apperrors.ErrInternalServer)
		return
	}
	render.JSON(w, r, report)
}
