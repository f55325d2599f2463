package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// genreSeedsKey holds the catalog's genre seed vocabulary, mirrored across
// processes so a fresh replica does not have to hit the upstream.
const genreSeedsKey = "sono:genre_seeds"

// GetGenreSeeds returns the mirrored genre seed list, or nil when Redis is
// unavailable or holds no entry.
func GetGenreSeeds(ctx context.Context) ([]string, error) {
	if RedisClient == nil {
		return nil, nil
	}

	raw, err := RedisClient.Get(ctx, genreSeedsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get genre seeds from Redis: %w", err)
	}

	var seeds []string
	if err := json.Unmarshal([]byte(raw), &seeds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mirrored genre seeds: %w", err)
	}
	return seeds, nil
}

// SetGenreSeeds mirrors a fetched genre seed list with the given freshness
// window. A nil client is a no-op.
func SetGenreSeeds(ctx context.Context, seeds []string, ttl time.Duration) error {
	if RedisClient == nil || len(seeds) == 0 {
		return nil
	}

	raw, err := json.Marshal(seeds)
	if err != nil {
		return fmt.Errorf("failed to marshal genre seeds: %w", err)
	}

	if err := RedisClient.Set(ctx, genreSeedsKey, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to mirror genre seeds to Redis: %w", err)
	}
	return nil
}
