package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/forgeline/forgeline/internal/claims"
)

// NewClaimsUpdateHandler builds the asynq handler for TaskClaimsUpdate.
//
// The handler never returns a plain failure for outcomes that a retry cannot
// fix: malformed payloads and rejected admin preconditions are wrapped with
// asynq.SkipRetry. Transient store or cache failures return a retryable
// error; the mutation is idempotent, so at-least-once delivery is safe.
func NewClaimsUpdateHandler(mutator *claims.Mutator, metrics *Metrics, logger *slog.Logger) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ClaimsUpdatePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Error("claims update payload", slog.Any("error", err))
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}

		done := metrics.Start(TaskClaimsUpdate)
		res := mutator.ApplyDelta(ctx, payload.ActorID, payload.UserID, payload.CompanyID, payload.Grants, payload.Mode)
		done(res.Success)

		if res.Success {
			logger.Info("claims updated",
				slog.Int64("user_id", payload.UserID),
				slog.Int64("company_id", payload.CompanyID),
				slog.String("mode", string(payload.Mode)),
				slog.String("message", res.Message),
			)
			return nil
		}
		if res.Retryable {
			return errors.New(res.Message)
		}
		return fmt.Errorf("%s: %w", res.Message, asynq.SkipRetry)
	}
}
