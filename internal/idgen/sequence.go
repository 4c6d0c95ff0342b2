package idgen

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisSequencer backs daily counters with Redis INCR. Keys carry a 48 hour
// TTL so yesterday's counters expire on their own.
type RedisSequencer struct {
	Client *redis.Client
}

func NewRedisSequencer(client *redis.Client) *RedisSequencer {
	return &RedisSequencer{Client: client}
}

func (s *RedisSequencer) Next(name string) (int64, error) {
	ctx := context.Background()
	n, err := s.Client.Incr(ctx, name).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		_ = s.Client.Expire(ctx, name, 48*time.Hour).Err()
	}
	return n, nil
}

// MemorySequencer is an in-process fallback used when Redis is unavailable
// and in tests.
type MemorySequencer struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewMemorySequencer() *MemorySequencer {
	return &MemorySequencer{counters: make(map[string]int64)}
}

func (s *MemorySequencer) Next(name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name]++
	return s.counters[name], nil
}
