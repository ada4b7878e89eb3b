package claims

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// AdminRequirement is the capability a caller must hold to change another
// user's permissions: update on the users module for the company in scope.
func AdminRequirement() Requirement {
	return Requirement{Update: []string{"users"}}
}

// Result reports the outcome of a permission mutation. It is returned as a
// value, never raised across the task boundary, so the queue's retry policy
// can inspect it: Retryable marks transient store failures, while a failed
// admin precondition or bad input should not be retried.
type Result struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Retryable bool   `json:"-"`
}

func failure(message string, retryable bool) Result {
	return Result{Success: false, Message: message, Retryable: retryable}
}

// Mutator applies permission deltas to claims documents: verify the actor,
// load the target document, merge via Apply, persist once, invalidate cache.
type Mutator struct {
	store  Store
	cache  Cache
	logger *slog.Logger
}

// NewMutator constructs a Mutator with explicit collaborators.
func NewMutator(store Store, cache Cache, logger *slog.Logger) *Mutator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mutator{store: store, cache: cache, logger: logger}
}

// ApplyDelta merges delta into the target user's claims for companyID using
// the given mode. The actor must hold AdminRequirement for companyID against
// their own claims; the check runs even from trusted background workers.
//
// The whole updated document is written in a single store call, and the
// target's cache entry is deleted only after that write succeeds. Deleting
// rather than updating the cache avoids racing a concurrent gate read that
// could re-store a stale snapshot over a fresher one. Every step is
// idempotent, so the task queue may safely retry on transient failure.
func (m *Mutator) ApplyDelta(ctx context.Context, actorID, targetID, companyID int64, delta Delta, mode Mode) Result {
	if !mode.Valid() {
		return failure(fmt.Sprintf("unknown mutation mode %q", mode), false)
	}
	if len(delta) == 0 {
		return failure("no permission changes requested", false)
	}

	actorDoc, err := m.store.GetClaims(ctx, actorID)
	if err != nil {
		m.logger.Error("load actor claims", slog.Int64("actor_id", actorID), slog.Any("error", err))
		return failure("could not verify caller permissions", !errors.Is(err, ErrNotFound))
	}
	if !Evaluate(AdminRequirement(), actorDoc, companyID) {
		m.logger.Warn("permission mutation denied",
			slog.Int64("actor_id", actorID),
			slog.Int64("target_id", targetID),
			slog.Int64("company_id", companyID),
		)
		return failure("caller is not authorized to manage permissions", false)
	}

	doc, err := m.store.GetClaims(ctx, targetID)
	if err != nil {
		m.logger.Error("load target claims", slog.Int64("target_id", targetID), slog.Any("error", err))
		return failure("could not load target user claims", !errors.Is(err, ErrNotFound))
	}

	updated := Apply(doc, delta, companyID, mode)

	if err := m.store.SetClaims(ctx, targetID, updated); err != nil {
		m.logger.Error("persist claims", slog.Int64("target_id", targetID), slog.Any("error", err))
		return failure("could not persist updated claims", !errors.Is(err, ErrNotFound))
	}

	if err := m.cache.Delete(ctx, targetID); err != nil {
		// The document is persisted but a stale cache entry may survive.
		// Report a retryable failure; rerunning the mutation is harmless.
		m.logger.Error("invalidate claims cache", slog.Int64("target_id", targetID), slog.Any("error", err))
		return failure("claims saved but cache invalidation failed", true)
	}

	return Result{
		Success: true,
		Message: fmt.Sprintf("permissions updated for user %d (%s mode, %d modules)", targetID, mode, len(delta)),
	}
}
