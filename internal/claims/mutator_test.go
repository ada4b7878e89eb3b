package claims

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	docs     map[int64]Document
	getErr   error
	setErr   error
	setCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[int64]Document)}
}

func (s *fakeStore) GetClaims(_ context.Context, userID int64) (Document, error) {
	if s.getErr != nil {
		return Document{}, s.getErr
	}
	doc, ok := s.docs[userID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc.Clone(), nil
}

func (s *fakeStore) SetClaims(_ context.Context, userID int64, doc Document) error {
	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	s.docs[userID] = doc.Clone()
	return nil
}

func adminDoc(companyID int64) Document {
	return Document{Modules: map[string]Grants{
		"users": {ActionUpdate: {companyID}},
	}}
}

func setupMutator(t *testing.T) (*Mutator, *fakeStore, *RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	store := newFakeStore()
	return NewMutator(store, cache, nil), store, cache
}

func TestApplyDeltaSuccess(t *testing.T) {
	ctx := context.Background()
	mutator, store, cache := setupMutator(t)

	store.docs[1] = adminDoc(4)
	store.docs[2] = Document{}
	require.NoError(t, cache.Set(ctx, 2, Document{}))

	res := mutator.ApplyDelta(ctx, 1, 2, 4, Delta{"sales": {View: true}}, ModeAdditive)

	require.True(t, res.Success, res.Message)
	assert.True(t, store.docs[2].Allows("sales", ActionView, 4))

	// Cache entry is invalidated, not rewritten.
	_, hit, err := cache.Get(ctx, 2)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestApplyDeltaSelfService(t *testing.T) {
	ctx := context.Background()
	mutator, store, _ := setupMutator(t)

	store.docs[1] = adminDoc(4)

	res := mutator.ApplyDelta(ctx, 1, 1, 4, Delta{"sales": {View: true}}, ModeAdditive)

	require.True(t, res.Success, res.Message)
	assert.True(t, store.docs[1].Allows("sales", ActionView, 4))
	assert.True(t, store.docs[1].Allows("users", ActionUpdate, 4), "existing grants survive")
}

func TestApplyDeltaActorLacksAdminGrant(t *testing.T) {
	ctx := context.Background()
	mutator, store, _ := setupMutator(t)

	store.docs[1] = Document{Modules: map[string]Grants{
		"users": {ActionView: {4}},
	}}
	store.docs[2] = Document{}

	res := mutator.ApplyDelta(ctx, 1, 2, 4, Delta{"sales": {View: true}}, ModeAdditive)

	assert.False(t, res.Success)
	assert.False(t, res.Retryable, "a denial must not be retried")
	assert.Zero(t, store.setCalls, "no write may happen after a denial")
}

func TestApplyDeltaActorWrongCompany(t *testing.T) {
	ctx := context.Background()
	mutator, store, _ := setupMutator(t)

	store.docs[1] = adminDoc(4)
	store.docs[2] = Document{}

	res := mutator.ApplyDelta(ctx, 1, 2, 9, Delta{"sales": {View: true}}, ModeAdditive)

	assert.False(t, res.Success)
	assert.False(t, res.Retryable)
}

func TestApplyDeltaUnknownActor(t *testing.T) {
	ctx := context.Background()
	mutator, _, _ := setupMutator(t)

	res := mutator.ApplyDelta(ctx, 42, 2, 4, Delta{"sales": {View: true}}, ModeAdditive)

	assert.False(t, res.Success)
	assert.False(t, res.Retryable, "a missing actor row will not appear on retry")
}

func TestApplyDeltaStoreDownIsRetryable(t *testing.T) {
	ctx := context.Background()
	mutator, store, _ := setupMutator(t)

	store.getErr = errors.New("connection refused")

	res := mutator.ApplyDelta(ctx, 1, 2, 4, Delta{"sales": {View: true}}, ModeAdditive)

	assert.False(t, res.Success)
	assert.True(t, res.Retryable)
}

func TestApplyDeltaPersistFailureIsRetryable(t *testing.T) {
	ctx := context.Background()
	mutator, store, _ := setupMutator(t)

	store.docs[1] = adminDoc(4)
	store.docs[2] = Document{}
	store.setErr = errors.New("connection reset")

	res := mutator.ApplyDelta(ctx, 1, 2, 4, Delta{"sales": {View: true}}, ModeAdditive)

	assert.False(t, res.Success)
	assert.True(t, res.Retryable)
}

func TestApplyDeltaRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	mutator, store, _ := setupMutator(t)
	store.docs[1] = adminDoc(4)

	res := mutator.ApplyDelta(ctx, 1, 2, 4, Delta{"sales": {View: true}}, Mode("merge"))
	assert.False(t, res.Success)
	assert.False(t, res.Retryable)

	res = mutator.ApplyDelta(ctx, 1, 2, 4, Delta{}, ModeAdditive)
	assert.False(t, res.Success)
	assert.False(t, res.Retryable)
}

func TestApplyDeltaRetrySafe(t *testing.T) {
	ctx := context.Background()
	mutator, store, _ := setupMutator(t)

	store.docs[1] = adminDoc(4)
	store.docs[2] = Document{}

	delta := Delta{"quality": {View: true, Update: true}}
	first := mutator.ApplyDelta(ctx, 1, 2, 4, delta, ModeReplace)
	require.True(t, first.Success)
	snapshot := store.docs[2].Clone()

	second := mutator.ApplyDelta(ctx, 1, 2, 4, delta, ModeReplace)
	require.True(t, second.Success)
	assert.Equal(t, snapshot, store.docs[2])
}
