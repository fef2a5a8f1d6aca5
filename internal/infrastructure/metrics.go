package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline counters, labelled by property type so per-category runs
// can be told apart on one /metrics endpoint.
var (
	DocumentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trrebwatch_documents_processed_total",
		Help: "Bulletins fully extracted, normalized and reconciled.",
	}, []string{"property_type", "era"})

	DocumentsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trrebwatch_documents_failed_total",
		Help: "Bulletins skipped after an extraction or source failure.",
	}, []string{"property_type", "era"})

	DocumentsCached = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trrebwatch_documents_cached_total",
		Help: "Bulletins short-circuited because the artifact already existed.",
	}, []string{"property_type"})

	BulletinsDownloaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trrebwatch_bulletins_downloaded_total",
		Help: "Bulletin PDFs fetched from the archive.",
	})

	ValidationIssues = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trrebwatch_validation_issues",
		Help: "Issue count of the most recent validation report.",
	}, []string{"property_type", "severity"})
)
