package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	removed    int64
	err        error
	calls      int
	lastBefore time.Time
}

func (p *fakePurger) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	p.calls++
	p.lastBefore = before
	if p.err != nil {
		return 0, p.err
	}
	return p.removed, nil
}

func TestSessionsPurgeHandlerSuccess(t *testing.T) {
	purger := &fakePurger{removed: 3}
	handler := NewSessionsPurgeHandler(purger, nil, nil)

	task, err := NewSessionsPurgeTask(24)
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	assert.Equal(t, 1, purger.calls)

	// Cutoff sits roughly a day in the past.
	want := time.Now().UTC().Add(-24 * time.Hour)
	assert.WithinDuration(t, want, purger.lastBefore, time.Minute)
}

func TestSessionsPurgeHandlerZeroGracePurgesUpToNow(t *testing.T) {
	purger := &fakePurger{}
	handler := NewSessionsPurgeHandler(purger, nil, nil)

	task, err := NewSessionsPurgeTask(0)
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	assert.WithinDuration(t, time.Now().UTC(), purger.lastBefore, time.Minute)
}

func TestSessionsPurgeHandlerBadPayloadSkipsRetry(t *testing.T) {
	purger := &fakePurger{}
	handler := NewSessionsPurgeHandler(purger, nil, nil)

	task := asynq.NewTask(TaskSessionsPurge, []byte("{broken"))
	err := handler(context.Background(), task)

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, purger.calls)
}

func TestSessionsPurgeHandlerFailureRetries(t *testing.T) {
	purger := &fakePurger{err: errors.New("connection refused")}
	handler := NewSessionsPurgeHandler(purger, nil, nil)

	task, err := NewSessionsPurgeTask(24)
	require.NoError(t, err)

	err = handler(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}
