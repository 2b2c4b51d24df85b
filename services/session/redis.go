// File: services/session/redis.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"qartelbot/models"

	"github.com/go-redis/redis/v8"
)

const sessionPrefix = "conv:chat:"

// RedisStore keeps one JSON document per chat so several bot processes can
// share wizard state.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore returns a Redis-backed Store. A zero ttl keeps keys forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(chatID int64) string {
	return sessionPrefix + strconv.FormatInt(chatID, 10)
}

func (s *RedisStore) Get(ctx context.Context, chatID int64) (*models.Session, bool, error) {
	data, err := s.client.Get(ctx, key(chatID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("session: get %d: %w", chatID, err)
	}
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, false, fmt.Errorf("session: decode %d: %w", chatID, err)
	}
	return &sess, true, nil
}

func (s *RedisStore) Set(ctx context.Context, chatID int64, sess *models.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: encode %d: %w", chatID, err)
	}
	if err := s.client.Set(ctx, key(chatID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: set %d: %w", chatID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, chatID int64) error {
	if err := s.client.Del(ctx, key(chatID)).Err(); err != nil {
		return fmt.Errorf("session: delete %d: %w", chatID, err)
	}
	return nil
}
