package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerline/idemgate/internal/domain/payment"
	"github.com/ledgerline/idemgate/internal/idempotency"
)

// PaymentStore persists payment rows keyed by deterministic identifier.
type PaymentStore struct{}

// NewPaymentStore creates a PaymentStore. Probe and Insert operate on the
// transaction supplied by the executor, so the store itself holds no pool.
func NewPaymentStore() *PaymentStore {
	return &PaymentStore{}
}

// Probe reads the payment at the deterministic id inside the transaction.
// Returns (nil, nil) when no row exists.
func (s *PaymentStore) Probe(ctx context.Context, tx *sql.Tx, id string) (*idempotency.Existing, error) {
	const query = `
		SELECT id, tenant_id, idempotency_key, counterparty_id, amount_cents,
		       currency, reference, status, created_at
		FROM payments WHERE id = ?
	`

	var p payment.Payment
	var key string
	err := tx.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.TenantID, &key, &p.CounterpartyID, &p.AmountCents,
		&p.Currency, &p.Reference, &p.Status, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("probe payment %s: %w", id, err)
	}

	return &idempotency.Existing{Entity: &p, IdempotencyKey: key}, nil
}

// Insert writes the payment row inside the transaction, using the entity's
// ID as primary key. A duplicate id surfaces as a constraint violation that
// the executor classifies.
func (s *PaymentStore) Insert(ctx context.Context, tx *sql.Tx, p *payment.Payment, idempotencyKey string) error {
	const query = `
		INSERT INTO payments (id, tenant_id, idempotency_key, counterparty_id,
		                      amount_cents, currency, reference, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := tx.ExecContext(ctx, query,
		p.ID, p.TenantID, idempotencyKey, p.CounterpartyID,
		p.AmountCents, p.Currency, p.Reference, p.Status, p.CreatedAt,
	)
	return err
}
