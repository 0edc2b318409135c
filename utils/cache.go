// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"tavolo/config"
)

// StatusCacheClient is the Redis client the schedule query service memoizes
// evaluated open/closed answers on.
var StatusCacheClient *redis.Client

// InitStatusCache initializes the Redis client for schedule status caching.
func InitStatusCache() {
	StatusCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := StatusCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Status Cache): %v", err)
	}
}

// GetStatusCacheClient returns the status cache client.
func GetStatusCacheClient() *redis.Client {
	if StatusCacheClient == nil {
		InitStatusCache()
	}
	return StatusCacheClient
}
