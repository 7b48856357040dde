package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions in Redis with a TTL, so logins expire on their
// own and survive gateway restarts.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (r *RedisStore) Save(ctx context.Context, s Session, ttl time.Duration) error {
	if s.Token == "" {
		return errors.New("session: token required")
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := r.rdb.Set(ctx, redisKeyPrefix+s.Token, raw, ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, token string) (Session, error) {
	raw, err := r.rdb.Get(ctx, redisKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("session: redis get: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("session: decode: %w", err)
	}
	return s, nil
}

func (r *RedisStore) Delete(ctx context.Context, token string) error {
	if err := r.rdb.Del(ctx, redisKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}
