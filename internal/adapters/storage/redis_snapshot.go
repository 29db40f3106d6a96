package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Zinaxy/HailAndCottonPrac/internal/ports"
)

const DefaultRedisKey = "warehouse:packages"

// RedisSnapshotStore keeps the snapshot in a single Redis list, one record
// per element. Replace runs DEL and RPUSH inside MULTI/EXEC.
type RedisSnapshotStore struct {
	Client redis.Cmdable
	Key    string
}

func NewRedisSnapshotStore(client redis.Cmdable, key string) *RedisSnapshotStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSnapshotStore{Client: client, Key: key}
}

var _ ports.SnapshotStore = (*RedisSnapshotStore)(nil)

func (s *RedisSnapshotStore) Load(ctx context.Context) ([]string, error) {
	if s.Client == nil {
		return nil, errors.New("redis snapshot: client is nil")
	}

	lines, err := s.Client.LRange(ctx, s.Key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis snapshot: lrange %q: %w", s.Key, err)
	}
	return lines, nil
}

func (s *RedisSnapshotStore) Replace(ctx context.Context, lines []string) error {
	if s.Client == nil {
		return errors.New("redis snapshot: client is nil")
	}

	values := make([]any, len(lines))
	for i, line := range lines {
		values[i] = line
	}

	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.Key)
		if len(values) > 0 {
			pipe.RPush(ctx, s.Key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis snapshot: replace %q: %w", s.Key, err)
	}
	return nil
}
