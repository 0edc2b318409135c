package cron

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"tavolo/config"
	scheduleRepo "tavolo/database/repository/schedule"
	schedule "tavolo/services/schedule"
	"tavolo/utils"
)

const TypeStatusRefresh = "schedule:refresh"

// statusRefreshPayload identifies the schedule whose cached answer is due to
// flip.
type statusRefreshPayload struct {
	ScheduleID string `json:"scheduleId"`
}

// StatusRefreshEnqueuer schedules cache-refresh tasks on the status queue.
// It satisfies schedule.RefreshEnqueuer.
type StatusRefreshEnqueuer struct {
	client *asynq.Client
}

// NewStatusRefreshEnqueuer builds an enqueuer on the configured Redis queue.
func NewStatusRefreshEnqueuer() *StatusRefreshEnqueuer {
	return &StatusRefreshEnqueuer{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisStatusQueueDB,
		}),
	}
}

// EnqueueRefresh queues a refresh to run at the given instant.
func (e *StatusRefreshEnqueuer) EnqueueRefresh(ctx context.Context, scheduleID string, at time.Time) error {
	payload, err := json.Marshal(statusRefreshPayload{ScheduleID: scheduleID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeStatusRefresh, payload)
	_, err = e.client.EnqueueContext(ctx, task, asynq.ProcessAt(at))
	return err
}

// InitStatusRefreshWorker runs the async worker in background. Each task
// re-evaluates its schedule, rewrites the cached status, and re-enqueues
// itself for the following transition, keeping the consumer-facing cache
// warm across open/close boundaries.
func InitStatusRefreshWorker(query schedule.ScheduleQueryService, enqueuer *StatusRefreshEnqueuer) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisStatusQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeStatusRefresh, handleStatusRefresh(query, enqueuer))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[StatusRefreshWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[StatusRefreshWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[StatusRefreshWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// WarmStatusCache seeds one refresh task per active schedule so the cache is
// populated and self-sustaining after a restart.
func WarmStatusCache(ctx context.Context, repo scheduleRepo.ScheduleRepository, enqueuer *StatusRefreshEnqueuer) {
	logger := utils.GetLogger()

	active, err := repo.ListActive(ctx)
	if err != nil {
		logger.Warn("[StatusRefresh] could not list active schedules for warm-up", zap.Error(err))
		return
	}
	now := time.Now()
	for i := range active {
		if err := enqueuer.EnqueueRefresh(ctx, active[i].ID, now); err != nil {
			logger.Warn("[StatusRefresh] warm-up enqueue failed",
				zap.String("scheduleID", active[i].ID), zap.Error(err))
		}
	}
	logger.Info("[StatusRefresh] warm-up enqueued", zap.Int("schedules", len(active)))
}

func handleStatusRefresh(query schedule.ScheduleQueryService, enqueuer *StatusRefreshEnqueuer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p statusRefreshPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("[StatusRefresh] invalid payload", zap.Error(err))
			return err
		}

		// Status writes through to the cache for the current minute bucket.
		now := time.Now()
		status, err := query.Status(ctx, p.ScheduleID, now)
		if err != nil {
			var notFound *schedule.NotFoundError
			if errors.As(err, &notFound) {
				// Deactivated-and-forgotten schedules simply stop refreshing.
				return nil
			}
			logger.Warn("[StatusRefresh] evaluation failed", zap.String("scheduleID", p.ScheduleID), zap.Error(err))
			return err
		}

		if status.NextTransition != nil {
			if err := enqueuer.EnqueueRefresh(ctx, p.ScheduleID, *status.NextTransition); err != nil {
				logger.Warn("[StatusRefresh] re-enqueue failed", zap.String("scheduleID", p.ScheduleID), zap.Error(err))
			}
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisStatusQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[StatusRefreshWorker] redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
