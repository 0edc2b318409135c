package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	scheduleRepo "tavolo/database/repository/schedule"
	"tavolo/models"
	"tavolo/utils"
)

// statusCacheTTL keeps a memoized answer alive slightly past its minute
// bucket so bursts straddling a bucket edge still hit.
const statusCacheTTL = 90 * time.Second

// DefaultScheduleQueryService is the production read façade. Cache is
// optional; with no Redis client every call evaluates directly, which is
// cheap (the evaluator is a bounded pure function).
type DefaultScheduleQueryService struct {
	Repo  scheduleRepo.ScheduleRepository
	Cache *redis.Client
}

func (q *DefaultScheduleQueryService) IsEntityOpenNow(ctx context.Context, boundType models.BoundType, entityID string) (bool, bool, error) {
	active, err := q.Repo.FindActiveByBinding(ctx, boundType, entityID)
	if err != nil {
		return false, false, &RepositoryError{Op: "find active", Err: err}
	}
	if len(active) == 0 {
		return false, false, nil
	}

	s := q.authoritative(active)
	return IsOpenAt(s, time.Now()), true, nil
}

func (q *DefaultScheduleQueryService) Status(ctx context.Context, scheduleID string, at time.Time) (*models.ScheduleStatus, error) {
	s, err := q.Repo.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrNotFound) {
			return nil, &NotFoundError{ID: scheduleID}
		}
		return nil, &RepositoryError{Op: "load", Err: err}
	}

	key := statusCacheKey(s, at)
	if cached := q.cacheGet(ctx, key); cached != nil {
		return cached, nil
	}

	status := &models.ScheduleStatus{
		Open:           IsOpenAt(s, at),
		NextTransition: NextTransition(s, at),
	}
	q.cacheSet(ctx, key, status)
	return status, nil
}

// authoritative picks the schedule consumers should trust when the
// degenerate several-actives state is observed after a write race: the most
// recently updated one. Log the anomaly, never fail a render for it.
func (q *DefaultScheduleQueryService) authoritative(active []models.Schedule) *models.Schedule {
	best := &active[0]
	if len(active) > 1 {
		for i := range active[1:] {
			if active[i+1].UpdatedAt.After(best.UpdatedAt) {
				best = &active[i+1]
			}
		}
		utils.GetLogger().Warn("multiple active schedules for one binding",
			zap.String("boundType", string(best.BoundType)),
			zap.String("boundEntityId", best.BoundEntityID),
			zap.Int("count", len(active)))
	}
	return best
}

// statusCacheKey buckets the instant to the minute; pattern times are
// minute-resolution so the answer cannot change inside a bucket, and the
// version segment invalidates the key on every write.
func statusCacheKey(s *models.Schedule, at time.Time) string {
	return fmt.Sprintf("schedule:status:%s:%d:%d", s.ID, s.Version, at.Unix()/60)
}

func (q *DefaultScheduleQueryService) cacheGet(ctx context.Context, key string) *models.ScheduleStatus {
	if q.Cache == nil {
		return nil
	}
	raw, err := q.Cache.Get(ctx, key).Result()
	if err != nil {
		return nil
	}
	var status models.ScheduleStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return nil
	}
	return &status
}

func (q *DefaultScheduleQueryService) cacheSet(ctx context.Context, key string, status *models.ScheduleStatus) {
	if q.Cache == nil {
		return
	}
	raw, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err := q.Cache.Set(ctx, key, raw, statusCacheTTL).Err(); err != nil {
		utils.GetLogger().Debug("status cache write failed", zap.Error(err))
	}
}
