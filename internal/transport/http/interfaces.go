package http

import (
	"context"

	"stockpulse/internal/operations"
	"stockpulse/internal/services"
	"stockpulse/pkg/contracts/domain"
)

// InventoryServiceInterface defines the inventory operations the handlers need
type InventoryServiceInterface interface {
	IngestUpload(ctx context.Context, up services.Upload, params services.IngestParams) (*services.IngestResult, error)
	Compare(ctx context.Context, result *services.IngestResult, sku string) ([]domain.StoreComparison, error)
	Sweep(ctx context.Context, result *services.IngestResult, store string) []domain.ReplenishmentRequest
}

// JobServiceInterface defines the async job operations
type JobServiceInterface interface {
	Enqueue(ctx context.Context, job *operations.Job) error
	GetJob(id string) (*operations.Job, error)
	ListJobs(filter operations.JobFilter) ([]*operations.Job, error)
	RemoveJob(id string) error
	GetQueueStats() operations.QueueStats
}

// HealthServiceInterface defines the health and version checks
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}
