// Package authz is the per-request authorization gate. It resolves the
// session, loads the caller's claims through the cache, and runs the claims
// evaluator, yielding either an authorized context or a typed rejection.
package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/forgeline/forgeline/internal/claims"
)

// ErrUnauthenticated marks a session token that could not be resolved to an
// identity. It is an authentication failure, distinct from a denial: the
// remedy is signing in again, not requesting access.
var ErrUnauthenticated = errors.New("authz: unauthenticated")

// DeniedError carries the context of a failed authorization check for audit
// logging. Handlers must not leak the requirement to the end user.
type DeniedError struct {
	UserID      int64
	CompanyID   int64
	Requirement claims.Requirement
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("authz: access denied for user %d company %d", e.UserID, e.CompanyID)
}

// SessionResolver turns a session token into an identity. Implemented by the
// redis session manager; faked in tests.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (userID, companyID int64, email string, err error)
}

// Authorization is the successful outcome of a gate check: who the caller
// is, which company the request is scoped to, and the claims the decision
// was made against. Downstream row filtering remains the repository's job;
// the gate only certifies that the caller may proceed.
type Authorization struct {
	UserID    int64
	CompanyID int64
	Email     string
	Claims    claims.Document
}

// Gate performs the per-request authorization check.
type Gate struct {
	sessions SessionResolver
	store    claims.Store
	cache    claims.Cache
	logger   *slog.Logger
}

// NewGate constructs a Gate with explicit collaborators.
func NewGate(sessions SessionResolver, store claims.Store, cache claims.Cache, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{sessions: sessions, store: store, cache: cache, logger: logger}
}

// Authorize resolves the session behind token and checks req against the
// caller's claims for their active company.
//
// An empty or bypassing requirement succeeds right after session resolution
// without touching the claims cache or store. Otherwise claims come from the
// cache, falling back to the store and repopulating the cache on a miss. Any
// store failure denies: the gate never fails open.
func (g *Gate) Authorize(ctx context.Context, token string, req claims.Requirement) (*Authorization, error) {
	userID, companyID, email, err := g.sessions.ResolveSession(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	auth := &Authorization{UserID: userID, CompanyID: companyID, Email: email}
	if req.Bypass || req.IsEmpty() {
		return auth, nil
	}

	doc, hit, err := g.cache.Get(ctx, userID)
	if err != nil {
		g.logger.Warn("claims cache read", slog.Int64("user_id", userID), slog.Any("error", err))
		hit = false
	}
	if !hit {
		doc, err = g.store.GetClaims(ctx, userID)
		if err != nil {
			// Fail closed: an unreachable or inconsistent store denies.
			g.logger.Error("claims store read", slog.Int64("user_id", userID), slog.Any("error", err))
			return nil, &DeniedError{UserID: userID, CompanyID: companyID, Requirement: req}
		}
		if err := g.cache.Set(ctx, userID, doc); err != nil {
			g.logger.Warn("claims cache populate", slog.Int64("user_id", userID), slog.Any("error", err))
		}
	}
	auth.Claims = doc

	if !claims.Evaluate(req, doc, companyID) {
		return nil, &DeniedError{UserID: userID, CompanyID: companyID, Requirement: req}
	}
	return auth, nil
}
