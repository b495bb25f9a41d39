package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hongminglow/inventory-be/internal/models"
)

// DefaultTTL bounds sessions that carry no expiry of their own.
const DefaultTTL = 24 * time.Hour

// RedisStore keeps sessions as JSON values under "{prefix}:{key}".
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore wraps rdb. An empty prefix defaults to "session".
func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, now: time.Now}
}

func (r *RedisStore) redisKey(key string) string {
	return r.prefix + ":" + key
}

func (r *RedisStore) Save(ctx context.Context, key string, s models.Session) error {
	ttl := DefaultTTL
	if !s.ExpiresAt.IsZero() {
		ttl = s.ExpiresAt.Sub(r.now())
		if ttl <= 0 {
			return r.Delete(ctx, key)
		}
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, r.redisKey(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, key string) (models.Session, bool, error) {
	raw, err := r.rdb.Get(ctx, r.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, fmt.Errorf("load session: %w", err)
	}
	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.Session{}, false, fmt.Errorf("decode session: %w", err)
	}
	if s.Expired(r.now()) {
		return models.Session{}, false, nil
	}
	return s, true, nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
