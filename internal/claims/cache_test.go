package claims

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestRedisCacheMissOnAbsentKey(t *testing.T) {
	cache, _ := setupCache(t)

	_, hit, err := cache.Get(context.Background(), 10)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCacheSetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t)

	doc := Document{Role: "manager", Modules: map[string]Grants{
		"sales": {ActionView: {1}, ActionCreate: {}, ActionUpdate: {}, ActionDelete: {}},
	}}
	require.NoError(t, cache.Set(ctx, 10, doc))

	got, hit, err := cache.Get(ctx, 10)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, doc, got)

	// Entries never expire on their own; mutation deletes them.
	assert.Equal(t, int64(0), int64(mr.TTL("claims:10")))
}

func TestRedisCacheCorruptPayloadReadsAsMiss(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t)

	require.NoError(t, mr.Set("claims:10", "{not json"))

	_, hit, err := cache.Get(ctx, 10)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, mr.Exists("claims:10"), "corrupt entry is dropped")
}

func TestRedisCacheDelete(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t)

	require.NoError(t, cache.Set(ctx, 10, Document{}))
	require.NoError(t, cache.Delete(ctx, 10))
	assert.False(t, mr.Exists("claims:10"))

	// Deleting an absent entry is not an error.
	require.NoError(t, cache.Delete(ctx, 10))
}
