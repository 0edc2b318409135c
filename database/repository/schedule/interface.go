// File: database/repository/schedule/interface.go
package scheduleRepo

import (
	"context"
	"errors"

	"tavolo/database"
	"tavolo/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// Sentinel errors the storage layer reports; the schedule manager translates
// them into its client-facing taxonomy.
var (
	// ErrNotFound: no schedule with the given id.
	ErrNotFound = errors.New("schedule not found")
	// ErrVersionMismatch: optimistic version check lost against a concurrent write.
	ErrVersionMismatch = errors.New("schedule version mismatch")
	// ErrDuplicateActive: the write would leave two active schedules on one
	// binding key (surfaced by the partial unique index).
	ErrDuplicateActive = errors.New("active schedule already exists for binding")
)

type ScheduleRepository interface {
	// Insert persists a new schedule. Fails with ErrDuplicateActive when the
	// schedule is active and the binding key already has an active one.
	Insert(ctx context.Context, s *models.Schedule) error
	// GetByID loads one schedule, ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.Schedule, error)
	// Update replaces the stored document whole iff its version still equals
	// expectedVersion, bumping the version. ErrVersionMismatch on a lost race,
	// ErrDuplicateActive when activation would violate the binding invariant.
	Update(ctx context.Context, s *models.Schedule, expectedVersion int) error
	// ListByBinding returns every schedule (active and not) for a binding key,
	// most recently created first.
	ListByBinding(ctx context.Context, boundType models.BoundType, entityID string) ([]models.Schedule, error)
	// FindActiveByBinding returns the active schedules for a binding key.
	// Zero or one entry once the invariant holds; more only in a degenerate
	// raced state, which callers must tolerate.
	FindActiveByBinding(ctx context.Context, boundType models.BoundType, entityID string) ([]models.Schedule, error)
	// ListActive returns all active schedules across bindings.
	ListActive(ctx context.Context) ([]models.Schedule, error)
	// ReplaceActive deactivates the incumbent and inserts the replacement as
	// one atomic unit; neither write is observable without the other.
	ReplaceActive(ctx context.Context, incumbentID string, replacement *models.Schedule) error
}

type mongoScheduleRepo struct {
	coll *mongo.Collection
}

// NewMongoScheduleRepo constructs the MongoDB-backed ScheduleRepository.
func NewMongoScheduleRepo() ScheduleRepository {
	db := database.MongoClient.Database("tavolo")
	return &mongoScheduleRepo{
		coll: db.Collection("schedules"),
	}
}
