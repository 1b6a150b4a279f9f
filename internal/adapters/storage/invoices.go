package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerline/idemgate/internal/domain/invoice"
	"github.com/ledgerline/idemgate/internal/idempotency"
)

// InvoiceStore persists invoice rows keyed by deterministic identifier.
type InvoiceStore struct{}

// NewInvoiceStore creates an InvoiceStore.
func NewInvoiceStore() *InvoiceStore {
	return &InvoiceStore{}
}

// Probe reads the invoice at the deterministic id inside the transaction.
// Returns (nil, nil) when no row exists.
func (s *InvoiceStore) Probe(ctx context.Context, tx *sql.Tx, id string) (*idempotency.Existing, error) {
	const query = `
		SELECT id, tenant_id, idempotency_key, customer_id, total_cents,
		       currency, line_count, due_date, status, created_at
		FROM invoices WHERE id = ?
	`

	var inv invoice.Invoice
	var key string
	err := tx.QueryRowContext(ctx, query, id).Scan(
		&inv.ID, &inv.TenantID, &key, &inv.CustomerID, &inv.TotalCents,
		&inv.Currency, &inv.LineCount, &inv.DueDate, &inv.Status, &inv.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("probe invoice %s: %w", id, err)
	}

	return &idempotency.Existing{Entity: &inv, IdempotencyKey: key}, nil
}

// Insert writes the invoice row inside the transaction.
func (s *InvoiceStore) Insert(ctx context.Context, tx *sql.Tx, inv *invoice.Invoice, idempotencyKey string) error {
	const query = `
		INSERT INTO invoices (id, tenant_id, idempotency_key, customer_id,
		                      total_cents, currency, line_count, due_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}

	_, err := tx.ExecContext(ctx, query,
		inv.ID, inv.TenantID, idempotencyKey, inv.CustomerID,
		inv.TotalCents, inv.Currency, inv.LineCount, inv.DueDate, inv.Status, inv.CreatedAt,
	)
	return err
}
