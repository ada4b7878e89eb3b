package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// SessionPurger deletes session audit rows that expired before the cutoff and
// reports how many were removed.
type SessionPurger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// NewSessionsPurgeHandler builds the asynq handler for TaskSessionsPurge.
// Malformed payloads skip retry; a failed delete is transient and retries.
func NewSessionsPurgeHandler(purger SessionPurger, metrics *Metrics, logger *slog.Logger) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SessionsPurgePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Error("sessions purge payload", slog.Any("error", err))
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
		if payload.GraceHours < 0 {
			payload.GraceHours = 0
		}

		cutoff := time.Now().UTC().Add(-time.Duration(payload.GraceHours) * time.Hour)

		done := metrics.Start(TaskSessionsPurge)
		removed, err := purger.PurgeExpired(ctx, cutoff)
		done(err == nil)
		if err != nil {
			return fmt.Errorf("purge sessions: %w", err)
		}

		logger.Info("sessions purged",
			slog.Int64("removed", removed),
			slog.Time("cutoff", cutoff),
		)
		return nil
	}
}
