package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerline/idemgate/internal/domain/grant"
	"github.com/ledgerline/idemgate/internal/idempotency"
)

// GrantStore persists access grant rows keyed by deterministic identifier.
type GrantStore struct{}

// NewGrantStore creates a GrantStore.
func NewGrantStore() *GrantStore {
	return &GrantStore{}
}

// Probe reads the grant at the deterministic id inside the transaction.
// Returns (nil, nil) when no row exists.
func (s *GrantStore) Probe(ctx context.Context, tx *sql.Tx, id string) (*idempotency.Existing, error) {
	const query = `
		SELECT id, tenant_id, idempotency_key, grantee_id, resource, role,
		       granted_by, created_at
		FROM access_grants WHERE id = ?
	`

	var g grant.Grant
	var key string
	err := tx.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.TenantID, &key, &g.GranteeID, &g.Resource, &g.Role,
		&g.GrantedBy, &g.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("probe grant %s: %w", id, err)
	}

	return &idempotency.Existing{Entity: &g, IdempotencyKey: key}, nil
}

// Insert writes the grant row inside the transaction.
func (s *GrantStore) Insert(ctx context.Context, tx *sql.Tx, g *grant.Grant, idempotencyKey string) error {
	const query = `
		INSERT INTO access_grants (id, tenant_id, idempotency_key, grantee_id,
		                           resource, role, granted_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	_, err := tx.ExecContext(ctx, query,
		g.ID, g.TenantID, idempotencyKey, g.GranteeID,
		g.Resource, g.Role, g.GrantedBy, g.CreatedAt,
	)
	return err
}
