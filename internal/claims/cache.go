package claims

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Cache holds materialized claims documents keyed by identity. Entries carry
// no TTL: the mutation task deletes them after every successful write and the
// gate repopulates lazily on the next read.
type Cache interface {
	Get(ctx context.Context, userID int64) (Document, bool, error)
	Set(ctx context.Context, userID int64, doc Document) error
	Delete(ctx context.Context, userID int64) error
}

// RedisCache implements Cache on a shared redis client.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache constructs a RedisCache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func cacheKey(userID int64) string {
	return "claims:" + strconv.FormatInt(userID, 10)
}

// Get returns the cached document for a user, reporting a miss when the key
// is absent. A payload that no longer decodes is deleted and reported as a
// miss so the caller falls back to the store.
func (c *RedisCache) Get(ctx context.Context, userID int64) (Document, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Document{}, false, nil
		}
		return Document{}, false, fmt.Errorf("claims: cache get: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		_ = c.client.Del(ctx, cacheKey(userID)).Err()
		return Document{}, false, nil
	}
	return doc, true, nil
}

// Set stores a snapshot of the document with no expiry.
func (c *RedisCache) Set(ctx context.Context, userID int64, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("claims: cache encode: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("claims: cache set: %w", err)
	}
	return nil
}

// Delete removes the cached entry for a user.
func (c *RedisCache) Delete(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("claims: cache delete: %w", err)
	}
	return nil
}

var _ Cache = (*RedisCache)(nil)
