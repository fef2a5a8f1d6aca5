package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trrebwatch/internal/config"
	"trrebwatch/internal/services"
	"trrebwatch/internal/store"
	"trrebwatch/internal/validation"
	"trrebwatch/pkg/contracts/domain"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	paths := &config.Paths{DataDir: t.TempDir()}
	artifacts := store.NewCSVStore(paths, nil)

	table := &domain.RawTable{
		Columns: []string{"Region", domain.ColSales, domain.ColAveragePrice},
		Rows: [][]string{
			{"TRREB Total", "1,234", "$850,000"},
			{"Halton Region", "321", "$1,100,000"},
		},
	}
	for _, date := range []time.Time{
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
	} {
		require.NoError(t, artifacts.WriteTable(domain.PropertyAllHomeTypes, date, table))
	}

	data := services.NewDataService(artifacts, validation.NewEngine(nil), nil)
	health := services.NewHealthService(artifacts)
	srv := NewServer(config.ServerConfig{Port: 0}, data, health, nil)
	return srv.Handler()
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	rr := get(t, newTestHandler(t), "/healthz")

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestDatasetEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	t.Run("full dataset", func(t *testing.T) {
		rr := get(t, handler, "/api/dataset/all_home_types")

		require.Equal(t, http.StatusOK, rr.Code)
		var body struct {
			Count   int                   `json:"count"`
			Records []domain.MarketRecord `json:"records"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, 4, body.Count)
	})

	t.Run("region filter", func(t *testing.T) {
		rr := get(t, handler, "/api/dataset/all_home_types?region=Halton+Region")

		require.Equal(t, http.StatusOK, rr.Code)
		var body struct {
			Records []domain.MarketRecord `json:"records"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.Len(t, body.Records, 2)
		for _, rec := range body.Records {
			assert.Equal(t, "Halton Region", rec.Region)
		}
	})

	t.Run("date filter", func(t *testing.T) {
		rr := get(t, handler, "/api/dataset/all_home_types?from=2024-02")

		require.Equal(t, http.StatusOK, rr.Code)
		var body struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, 2, body.Count)
	})

	t.Run("bad date", func(t *testing.T) {
		rr := get(t, handler, "/api/dataset/all_home_types?from=notadate")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown category", func(t *testing.T) {
		rr := get(t, handler, "/api/dataset/condos")

		require.Equal(t, http.StatusBadRequest, rr.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "UNKNOWN_CATEGORY", body["error_code"])
	})
}

func TestRegionsEndpoint(t *testing.T) {
	rr := get(t, newTestHandler(t), "/api/dataset/all_home_types/regions")

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Regions []string `json:"regions"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, []string{"TRREB Total", "Halton Region"}, body.Regions)
}

func TestValidationEndpoint(t *testing.T) {
	rr := get(t, newTestHandler(t), "/api/validation/all_home_types")

	require.Equal(t, http.StatusOK, rr.Code)
	var report domain.ValidationReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, domain.PropertyAllHomeTypes, report.PropertyType)
	assert.Equal(t, 4, report.RecordCount)
}

func TestMetricsEndpoint(t *testing.T) {
	rr := get(t, newTestHandler(t), "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}
