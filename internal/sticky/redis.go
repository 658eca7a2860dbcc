package sticky

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "intent:sticky:"

// RedisStore keeps sticky state in Redis with a key TTL, for deployments
// running more than one router worker. The freshness check still happens
// on the stored timestamp, so logical expiry does not depend on Redis
// deletion timing.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore creates a Redis-backed sticky store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

func redisKey(threadID string) string {
	return redisKeyPrefix + threadID
}

// GetIfFresh implements Store.
func (s *RedisStore) GetIfFresh(ctx context.Context, threadID string) (*State, error) {
	data, err := s.client.Get(ctx, redisKey(threadID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sticky state: %w", err)
	}

	var st State
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sticky state: %w", err)
	}

	if !s.now().Before(st.DecidedAt.Add(s.ttl)) {
		return nil, nil
	}

	return &st, nil
}

// Put implements Store. The read-compare-write is not atomic; concurrent
// turns of one thread are a client-retry edge case and the timestamp
// comparison keeps the newest decision authoritative.
func (s *RedisStore) Put(ctx context.Context, threadID, domain string, at time.Time) error {
	existing, err := s.GetIfFresh(ctx, threadID)
	if err != nil {
		return err
	}
	if existing != nil && existing.DecidedAt.After(at) {
		return nil
	}

	data, err := json.Marshal(State{
		Domain:    domain,
		DecidedAt: at,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sticky state: %w", err)
	}

	if err := s.client.Set(ctx, redisKey(threadID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write sticky state: %w", err)
	}
	return nil
}

// Invalidate implements Store.
func (s *RedisStore) Invalidate(ctx context.Context, threadID string) error {
	if err := s.client.Del(ctx, redisKey(threadID)).Err(); err != nil {
		return fmt.Errorf("failed to delete sticky state: %w", err)
	}
	return nil
}
