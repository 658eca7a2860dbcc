package artifact

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSource reads snapshot documents from Redis. The offline retraining
// job writes "<prefix>:<generation>" JSON documents and promotes one by
// setting "<prefix>:active" to its generation id.
type RedisSource struct {
	client *redis.Client
	prefix string
}

// NewRedisSource creates a snapshot source over a Redis client.
func NewRedisSource(client *redis.Client, prefix string) *RedisSource {
	return &RedisSource{
		client: client,
		prefix: prefix,
	}
}

// ActiveGeneration returns the promoted generation id.
func (s *RedisSource) ActiveGeneration(ctx context.Context) (string, error) {
	gen, err := s.client.Get(ctx, s.prefix+":active").Result()
	if err != nil {
		if err == redis.Nil {
			return "", fmt.Errorf("no active snapshot generation at %s:active", s.prefix)
		}
		return "", fmt.Errorf("failed to read active generation: %w", err)
	}
	return gen, nil
}

// Load fetches and decodes the snapshot document for a generation.
func (s *RedisSource) Load(ctx context.Context, generation string) (*Snapshot, error) {
	key := s.prefix + ":" + generation

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("snapshot %s not found", generation)
		}
		return nil, fmt.Errorf("failed to load snapshot %s: %w", generation, err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot %s: %w", generation, err)
	}

	return &snap, nil
}
