package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tavolo/config"
	scheduleRepo "tavolo/database/repository/schedule"
	"tavolo/models"
	"tavolo/utils"
)

// Create validates the request as a whole, enforces the binding-key
// invariant, and persists the new schedule. Without req.Replace a second
// active schedule for the same (type, entity) fails with ConflictError; with
// it the incumbent is deactivated and the replacement installed in a single
// repository transaction.
func (m *DefaultScheduleManager) Create(ctx context.Context, req models.ScheduleRequest) (*models.Schedule, error) {
	s, err := m.buildSchedule(req)
	if err != nil {
		return nil, err
	}

	existing, err := m.Repo.FindActiveByBinding(ctx, s.BoundType, s.BoundEntityID)
	if err != nil {
		return nil, &RepositoryError{Op: "conflict check", Err: err}
	}

	switch {
	case len(existing) == 0:
		if err := m.Repo.Insert(ctx, s); err != nil {
			return nil, m.translateWrite("create", err, s)
		}
	case req.Replace:
		if err := m.Repo.ReplaceActive(ctx, existing[0].ID, s); err != nil {
			return nil, m.translateWrite("replace", err, s)
		}
	default:
		return nil, &ConflictError{
			BoundType:     string(s.BoundType),
			BoundEntityID: s.BoundEntityID,
			ExistingID:    existing[0].ID,
		}
	}

	m.scheduleRefresh(ctx, s)
	return s, nil
}

// Update loads, merges, and re-validates the whole aggregate before a CAS
// write; the weekly pattern is always checked as a complete pattern, never a
// partially patched one.
func (m *DefaultScheduleManager) Update(ctx context.Context, id string, patch models.SchedulePatch) (*models.Schedule, error) {
	current, err := m.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, m.translate("load", err, id)
	}

	merged := *current
	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.Description != nil {
		merged.Description = *patch.Description
	}
	if windows := patch.Windows(); len(windows) > 0 {
		pattern, err := NewWeeklyPattern(windows)
		if err != nil {
			return nil, err
		}
		merged.WeeklyPattern = pattern
	}
	if patch.Timezone != nil {
		merged.Timezone = *patch.Timezone
	}
	if patch.EffectiveFrom != nil {
		merged.EffectiveFrom = *patch.EffectiveFrom
	}
	if patch.ClearEffectiveTo {
		merged.EffectiveTo = nil
	} else if patch.EffectiveTo != nil {
		merged.EffectiveTo = patch.EffectiveTo
	}
	if patch.IsActive != nil {
		merged.IsActive = *patch.IsActive
	}

	if err := m.validateSchedule(&merged); err != nil {
		return nil, err
	}

	// Re-activation must re-clear the binding invariant.
	if merged.IsActive && !current.IsActive {
		existing, err := m.Repo.FindActiveByBinding(ctx, merged.BoundType, merged.BoundEntityID)
		if err != nil {
			return nil, &RepositoryError{Op: "conflict check", Err: err}
		}
		for _, e := range existing {
			if e.ID != merged.ID {
				return nil, &ConflictError{
					BoundType:     string(merged.BoundType),
					BoundEntityID: merged.BoundEntityID,
					ExistingID:    e.ID,
				}
			}
		}
	}

	merged.UpdatedAt = time.Now().UTC()
	if err := m.Repo.Update(ctx, &merged, current.Version); err != nil {
		return nil, m.translateWrite("update", err, &merged)
	}

	m.scheduleRefresh(ctx, &merged)
	return &merged, nil
}

// Deactivate is idempotent: deactivating an already-inactive schedule is a
// no-op success. Only an unknown id fails, with NotFoundError.
func (m *DefaultScheduleManager) Deactivate(ctx context.Context, id string) error {
	current, err := m.Repo.GetByID(ctx, id)
	if err != nil {
		return m.translate("load", err, id)
	}
	if !current.IsActive {
		return nil
	}

	deactivated := *current
	deactivated.IsActive = false
	deactivated.UpdatedAt = time.Now().UTC()
	if err := m.Repo.Update(ctx, &deactivated, current.Version); err != nil {
		if errors.Is(err, scheduleRepo.ErrVersionMismatch) {
			// Lost a race; re-read to honor idempotence before giving up.
			latest, lerr := m.Repo.GetByID(ctx, id)
			if lerr == nil && !latest.IsActive {
				return nil
			}
		}
		return m.translate("deactivate", err, id)
	}
	return nil
}

func (m *DefaultScheduleManager) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	s, err := m.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, m.translate("load", err, id)
	}
	return s, nil
}

// ListForBinding returns the binding's full history, newest first, for
// administrative UIs; consumers pick the first active entry as authoritative.
func (m *DefaultScheduleManager) ListForBinding(ctx context.Context, boundType models.BoundType, entityID string) ([]models.Schedule, error) {
	schedules, err := m.Repo.ListByBinding(ctx, boundType, entityID)
	if err != nil {
		return nil, &RepositoryError{Op: "list", Err: err}
	}
	return schedules, nil
}

func (m *DefaultScheduleManager) buildSchedule(req models.ScheduleRequest) (*models.Schedule, error) {
	pattern, err := NewWeeklyPattern(req.Windows())
	if err != nil {
		return nil, err
	}

	tz := req.Timezone
	if tz == "" {
		tz = config.AppConfig.DefaultTimezone
	}

	now := time.Now().UTC()
	s := &models.Schedule{
		Name:          req.Name,
		Description:   req.Description,
		BoundType:     req.Type,
		BoundEntityID: req.EntityID(),
		RestaurantID:  req.Restaurant,
		Timezone:      tz,
		WeeklyPattern: pattern,
		EffectiveFrom: req.EffectiveFrom,
		EffectiveTo:   req.EffectiveTo,
		IsActive:      true,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := m.validateSchedule(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *DefaultScheduleManager) validateSchedule(s *models.Schedule) error {
	if !s.BoundType.Valid() {
		return fmt.Errorf("type must be MENU or VENUE, got %q", s.BoundType)
	}
	if s.BoundEntityID == "" {
		return fmt.Errorf("missing %s id for bound type %s", map[models.BoundType]string{
			models.BoundTypeMenu:  "menu",
			models.BoundTypeVenue: "venue",
		}[s.BoundType], s.BoundType)
	}
	if s.RestaurantID == "" {
		return fmt.Errorf("restaurant is required")
	}
	if s.EffectiveFrom.IsZero() {
		return fmt.Errorf("effectiveFrom is required")
	}
	if s.EffectiveTo != nil && s.EffectiveTo.Before(s.EffectiveFrom) {
		return fmt.Errorf("effectiveTo precedes effectiveFrom")
	}
	if _, err := ResolveTimezone(s.Timezone); err != nil {
		return err
	}
	return nil
}

func (m *DefaultScheduleManager) translate(op string, err error, id string) error {
	if errors.Is(err, scheduleRepo.ErrNotFound) {
		return &NotFoundError{ID: id}
	}
	return &RepositoryError{Op: op, Err: err}
}

func (m *DefaultScheduleManager) translateWrite(op string, err error, s *models.Schedule) error {
	switch {
	case errors.Is(err, scheduleRepo.ErrNotFound):
		return &NotFoundError{ID: s.ID}
	case errors.Is(err, scheduleRepo.ErrDuplicateActive), errors.Is(err, scheduleRepo.ErrVersionMismatch):
		return &ConflictError{BoundType: string(s.BoundType), BoundEntityID: s.BoundEntityID}
	default:
		return &RepositoryError{Op: op, Err: err}
	}
}

// scheduleRefresh hands the status worker the schedule's next transition so
// the cached open/closed answer stays warm. Failures only log; cache refresh
// is best-effort and the evaluator remains the source of truth.
func (m *DefaultScheduleManager) scheduleRefresh(ctx context.Context, s *models.Schedule) {
	if m.Refresher == nil {
		return
	}
	at := time.Now().UTC()
	if next := NextTransition(s, at); next != nil {
		at = *next
	}
	if err := m.Refresher.EnqueueRefresh(ctx, s.ID, at); err != nil {
		utils.GetLogger().Warn("failed to enqueue status refresh",
			zap.String("scheduleID", s.ID), zap.Error(err))
	}
}
