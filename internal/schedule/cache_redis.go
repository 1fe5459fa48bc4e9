package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCacheStore keeps the payload and its metadata in the fields of a single
// redis hash. One HSET replaces all fields at once, which gives the same
// never-half-written guarantee the file store gets from its rename.
// Useful for deployments where several server instances share one cache.
type RedisCacheStore struct {
	rdb *redis.Client
	key string
	mu  sync.Mutex
}

func NewRedisCacheStore(rdb *redis.Client, key string) *RedisCacheStore {
	return &RedisCacheStore{rdb: rdb, key: key}
}

var _ CacheStore = (*RedisCacheStore)(nil)

func (s *RedisCacheStore) Read(ctx context.Context) ([]byte, CacheMeta, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, CacheMeta{}, fmt.Errorf("read cache: %w", err)
	}
	if len(fields) == 0 {
		return nil, CacheMeta{}, ErrCacheAbsent
	}

	payload, ok := fields["payload"]
	if !ok || payload == "" {
		return nil, CacheMeta{}, fmt.Errorf("%w: missing payload field", ErrCacheCorrupt)
	}

	var meta CacheMeta
	if ts, err := time.Parse(time.RFC3339Nano, fields["fetched_at"]); err == nil {
		meta.FetchedAt = ts
	}
	meta.Provenance = fields["provenance"]

	return []byte(payload), meta, nil
}

func (s *RedisCacheStore) Write(ctx context.Context, payload []byte, provenance string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.rdb.HSet(ctx, s.key, map[string]any{
		"payload":    payload,
		"fetched_at": time.Now().UTC().Format(time.RFC3339Nano),
		"provenance": provenance,
	}).Err()
	if err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

func (s *RedisCacheStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}
