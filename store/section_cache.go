package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SectionCache stores rendered section payloads in Redis, keyed by the load that
// produced them, so a reload naturally bypasses old entries. A nil *SectionCache
// is valid and caches nothing.
type SectionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSectionCache(client *redis.Client, ttl time.Duration) *SectionCache {
	return &SectionCache{client: client, ttl: ttl}
}

func sectionKey(loadID uuid.UUID, slug string) string {
	return fmt.Sprintf("funnelboard:section:%s:%s", loadID, slug)
}

// Get returns the cached payload and whether it was found.
func (c *SectionCache) Get(ctx context.Context, loadID uuid.UUID, slug string) ([]byte, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, sectionKey(loadID, slug)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("section cache get: %w", err)
	}
	return data, true, nil
}

// Set stores payload for ttl.
func (c *SectionCache) Set(ctx context.Context, loadID uuid.UUID, slug string, payload []byte) error {
	if c == nil {
		return nil
	}
	if err := c.client.Set(ctx, sectionKey(loadID, slug), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("section cache set: %w", err)
	}
	return nil
}
