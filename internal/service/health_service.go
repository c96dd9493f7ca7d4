package service

import (
	"context"

	"storyloom/internal/repository"
)

// Pinger is satisfied by *database.DB.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

type HealthStatus struct {
	Database string `json:"database"`
	Tables   int    `json:"tables"`
}

type HealthService interface {
	Check(ctx context.Context) (*HealthStatus, error)
}

type healthService struct {
	db         Pinger
	schemaRepo repository.SchemaRepository
}

func NewHealthService(db Pinger, schemaRepo repository.SchemaRepository) HealthService {
	return &healthService{db: db, schemaRepo: schemaRepo}
}

func (h *healthService) Check(ctx context.Context) (*HealthStatus, error) {
	if err := h.db.HealthCheck(ctx); err != nil {
		return &HealthStatus{Database: "disconnected"}, err
	}

	tables, err := h.schemaRepo.CountTables(ctx)
	if err != nil {
		return &HealthStatus{Database: "connected"}, err
	}

	return &HealthStatus{Database: "connected", Tables: tables}, nil
}
