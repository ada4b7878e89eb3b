package claims

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the identity has no row in the backing store. A user
// that exists but has never been granted anything reads as an empty document,
// not as ErrNotFound.
var ErrNotFound = errors.New("claims: user not found")

// Store is the source of truth for claims documents, one per identity.
type Store interface {
	GetClaims(ctx context.Context, userID int64) (Document, error)
	SetClaims(ctx context.Context, userID int64, doc Document) error
}

// PGStore persists claims in the users.claims jsonb column. The whole
// document is read and written as a single statement, which gives the
// per-identity atomic read-modify-write the mutation task relies on.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a Store backed by the provided pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// GetClaims fetches the claims document for a user. A NULL column yields an
// empty document; a missing row yields ErrNotFound.
func (s *PGStore) GetClaims(ctx context.Context, userID int64) (Document, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT claims FROM users WHERE id = $1`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("claims: get: %w", err)
	}
	if len(raw) == 0 {
		return Document{}, nil
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("claims: decode: %w", err)
	}
	return doc, nil
}

// SetClaims replaces the claims document for a user in one write.
func (s *PGStore) SetClaims(ctx context.Context, userID int64, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("claims: encode: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `UPDATE users SET claims = $2, updated_at = now() WHERE id = $1`, userID, raw)
	if err != nil {
		return fmt.Errorf("claims: set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*PGStore)(nil)
