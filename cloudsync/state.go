package cloudsync

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by State.Get for missing keys.
var ErrNotFound = errors.New("key not found")

// State keeps sync cursors and the files already handled.
type State interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, key string) error
}

// RedisState is a State stored in redis.
type RedisState struct {
	rdb *redis.Client
}

func NewRedisState(rdb *redis.Client) *RedisState {
	return &RedisState{rdb: rdb}
}

func (s *RedisState) Get(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "redis Get failed")
	}
	return val, nil
}

func (s *RedisState) Set(ctx context.Context, key, value string) error {
	return errors.Wrap(s.rdb.Set(ctx, key, value, 0).Err(), "redis Set failed")
}

func (s *RedisState) Del(ctx context.Context, key string) error {
	return errors.Wrap(s.rdb.Del(ctx, key).Err(), "redis Del failed")
}
