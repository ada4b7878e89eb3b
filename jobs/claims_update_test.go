package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeline/forgeline/internal/claims"
)

type memClaimsStore struct {
	docs   map[int64]claims.Document
	getErr error
}

func (s *memClaimsStore) GetClaims(_ context.Context, userID int64) (claims.Document, error) {
	if s.getErr != nil {
		return claims.Document{}, s.getErr
	}
	doc, ok := s.docs[userID]
	if !ok {
		return claims.Document{}, claims.ErrNotFound
	}
	return doc.Clone(), nil
}

func (s *memClaimsStore) SetClaims(_ context.Context, userID int64, doc claims.Document) error {
	s.docs[userID] = doc.Clone()
	return nil
}

func setupHandler(t *testing.T, store *memClaimsStore) asynq.HandlerFunc {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := claims.NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	mutator := claims.NewMutator(store, cache, nil)
	return NewClaimsUpdateHandler(mutator, nil, nil)
}

func adminStore() *memClaimsStore {
	return &memClaimsStore{docs: map[int64]claims.Document{
		1: {Modules: map[string]claims.Grants{
			"users": {claims.ActionUpdate: {4}},
		}},
		2: {},
	}}
}

func mustTask(t *testing.T, payload ClaimsUpdatePayload) *asynq.Task {
	t.Helper()
	task, err := NewClaimsUpdateTask(payload)
	require.NoError(t, err)
	return task
}

func TestClaimsUpdateHandlerSuccess(t *testing.T) {
	store := adminStore()
	handler := setupHandler(t, store)

	task := mustTask(t, ClaimsUpdatePayload{
		ActorID:   1,
		UserID:    2,
		CompanyID: 4,
		Grants:    claims.Delta{"sales": {View: true}},
		Mode:      claims.ModeAdditive,
	})

	require.NoError(t, handler(context.Background(), task))
	assert.True(t, store.docs[2].Allows("sales", claims.ActionView, 4))
}

func TestClaimsUpdateHandlerBadPayloadSkipsRetry(t *testing.T) {
	handler := setupHandler(t, adminStore())

	task := asynq.NewTask(TaskClaimsUpdate, []byte("{broken"))
	err := handler(context.Background(), task)

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestClaimsUpdateHandlerDenialSkipsRetry(t *testing.T) {
	store := adminStore()
	handler := setupHandler(t, store)

	// Actor 2 holds no users grant.
	task := mustTask(t, ClaimsUpdatePayload{
		ActorID:   2,
		UserID:    1,
		CompanyID: 4,
		Grants:    claims.Delta{"sales": {View: true}},
		Mode:      claims.ModeAdditive,
	})

	err := handler(context.Background(), task)
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestClaimsUpdateHandlerTransientFailureRetries(t *testing.T) {
	store := adminStore()
	store.getErr = errors.New("connection refused")
	handler := setupHandler(t, store)

	task := mustTask(t, ClaimsUpdatePayload{
		ActorID:   1,
		UserID:    2,
		CompanyID: 4,
		Grants:    claims.Delta{"sales": {View: true}},
		Mode:      claims.ModeAdditive,
	})

	err := handler(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestClaimsUpdateHandlerIdempotentRedelivery(t *testing.T) {
	store := adminStore()
	handler := setupHandler(t, store)

	task := mustTask(t, ClaimsUpdatePayload{
		ActorID:   1,
		UserID:    2,
		CompanyID: 4,
		Grants:    claims.Delta{"quality": {View: true, Update: true}},
		Mode:      claims.ModeReplace,
	})

	require.NoError(t, handler(context.Background(), task))
	snapshot := store.docs[2].Clone()
	require.NoError(t, handler(context.Background(), task))
	assert.Equal(t, snapshot, store.docs[2])
}
