package digest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StepStore persists per-run step results so a re-executed run can skip
// steps that already completed, including already-sent emails.
type StepStore interface {
	Get(ctx context.Context, runID, step string, out any) (bool, error)
	Set(ctx context.Context, runID, step string, value any) error
}

type RedisStepStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStepStore(rdb *redis.Client, ttl time.Duration) *RedisStepStore {
	return &RedisStepStore{rdb: rdb, ttl: ttl}
}

func stepKey(runID, step string) string {
	return fmt.Sprintf("stocktracker:digest:%s:%s", runID, step)
}

func (s *RedisStepStore) Get(ctx context.Context, runID, step string, out any) (bool, error) {
	b, err := s.rdb.Get(ctx, stepKey(runID, step)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisStepStore) Set(ctx context.Context, runID, step string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, stepKey(runID, step), b, s.ttl).Err()
}

// MemoryStepStore is a process-local StepStore for tests and single-shot runs.
type MemoryStepStore struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func NewMemoryStepStore() *MemoryStepStore {
	return &MemoryStepStore{entries: make(map[string][]byte)}
}

func (s *MemoryStepStore) Get(_ context.Context, runID, step string, out any) (bool, error) {
	s.mu.Lock()
	b, ok := s.entries[stepKey(runID, step)]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (s *MemoryStepStore) Set(_ context.Context, runID, step string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[stepKey(runID, step)] = b
	s.mu.Unlock()
	return nil
}
