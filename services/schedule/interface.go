package schedule

import (
	"context"
	"time"

	scheduleRepo "tavolo/database/repository/schedule"
	"tavolo/models"
)

// ScheduleManager owns the write side of the scheduler: full-aggregate
// validation, the binding-key invariant, and lifecycle transitions.
type ScheduleManager interface {
	Create(ctx context.Context, req models.ScheduleRequest) (*models.Schedule, error)
	Update(ctx context.Context, id string, patch models.SchedulePatch) (*models.Schedule, error)
	Deactivate(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Schedule, error)
	ListForBinding(ctx context.Context, boundType models.BoundType, entityID string) ([]models.Schedule, error)
}

// ScheduleQueryService is the read façade consumed by the menu/venue
// rendering path. It never errors on a missing schedule; "nothing governs
// this entity" is an answer, not a failure.
type ScheduleQueryService interface {
	// IsEntityOpenNow reports (open, scheduled). When scheduled is false no
	// schedule governs the entity and the caller applies its own default
	// (the venue/menu pages treat that as always open).
	IsEntityOpenNow(ctx context.Context, boundType models.BoundType, entityID string) (open bool, scheduled bool, err error)
	// Status evaluates one schedule at an explicit instant.
	Status(ctx context.Context, scheduleID string, at time.Time) (*models.ScheduleStatus, error)
}

// RefreshEnqueuer hands the status-refresh worker a schedule whose cached
// answer will change at the given instant. Implementations must be safe for
// concurrent use; enqueue failures are logged, never surfaced to admins.
type RefreshEnqueuer interface {
	EnqueueRefresh(ctx context.Context, scheduleID string, at time.Time) error
}

// DefaultScheduleManager is the production implementation.
type DefaultScheduleManager struct {
	Repo      scheduleRepo.ScheduleRepository
	Refresher RefreshEnqueuer // optional
}
