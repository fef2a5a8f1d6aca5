package services

import (
	"context"
	"time"

	"trrebwatch/internal/store"
	"trrebwatch/pkg/contracts/domain"
)

// Version is stamped at build time.
var Version = "dev"

// HealthService reports process and dataset liveness.
type HealthService struct {
	artifacts *store.CSVStore
	started   time.Time
}

// NewHealthService builds a health service.
func NewHealthService(artifacts *store.CSVStore) *HealthService {
	return &HealthService{artifacts: artifacts, started: time.Now()}
}

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status    string         `json:"status"`
	Version   string         `json:"version"`
	UptimeSec int64          `json:"uptime_seconds"`
	Artifacts map[string]int `json:"artifacts"`
}

// Check reports overall health with per-category artifact counts.
func (s *HealthService) Check(_ context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "ok",
		Version:   Version,
		UptimeSec: int64(time.Since(s.started).Seconds()),
		Artifacts: make(map[string]int),
	}
	for _, pt := range domain.PropertyTypes {
		dates, err := s.artifacts.List(pt)
		if err != nil {
			status.Status = "degraded"
			continue
		}
		status.Artifacts[string(pt)] = len(dates)
	}
	return status
}
