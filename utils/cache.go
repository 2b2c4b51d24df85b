// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"qartelbot/config"

	"github.com/go-redis/redis/v8"
)

// SessionCacheClient backs the conversation state store when SESSION_BACKEND=redis.
var SessionCacheClient *redis.Client

// InitSessionCache initializes the Redis client for conversation state.
func InitSessionCache() {
	SessionCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := SessionCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Session): %v", err)
	}
}

// GetSessionCacheClient returns the conversation state client.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		InitSessionCache()
	}
	return SessionCacheClient
}

// NewQueueClient returns a client on the task queue database, used for health pings.
func NewQueueClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
}
