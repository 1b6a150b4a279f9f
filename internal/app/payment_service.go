// Package app provides application services that orchestrate the protected
// operations: they validate domain input, build the probe/write closures for
// the idempotent write executor, and stage workflow side effects.
package app

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/ledgerline/idemgate/internal/domain"
	"github.com/ledgerline/idemgate/internal/domain/payment"
	"github.com/ledgerline/idemgate/internal/idempotency"
	"github.com/ledgerline/idemgate/internal/ports"
)

// Compile-time check that PaymentService implements ports.PaymentService.
var _ ports.PaymentService = (*PaymentService)(nil)

// PaymentService implements ports.PaymentService. It owns the storage entry
// point for the createPayment operation and runs it through the executor.
type PaymentService struct {
	executor *idempotency.Executor
	store    PaymentStore
	notifier ports.WorkflowNotifier
	logger   *slog.Logger
}

// PaymentStore is the storage surface CreatePayment needs.
type PaymentStore interface {
	Probe(ctx context.Context, tx *sql.Tx, id string) (*idempotency.Existing, error)
	Insert(ctx context.Context, tx *sql.Tx, p *payment.Payment, idempotencyKey string) error
}

// NewPaymentService creates a PaymentService. A nil logger discards logs.
func NewPaymentService(executor *idempotency.Executor, store PaymentStore, notifier ports.WorkflowNotifier, logger *slog.Logger) *PaymentService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PaymentService{
		executor: executor,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// CreatePayment posts a payment at most once per (tenant, idempotency key).
// On replay the original payment is returned and no workflow fires.
func (s *PaymentService) CreatePayment(ctx context.Context, idempotencyKey string, p *payment.Payment) (*payment.Payment, bool, error) {
	ident, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return nil, false, &domain.ValidationError{
			Fields: map[string]string{"tenant_id": "is required"},
		}
	}

	if err := p.Validate(); err != nil {
		return nil, false, err
	}

	effects := idempotency.NewSideEffectSet(s.notifier)

	res, err := s.executor.Execute(ctx, idempotency.Request{
		Operation:      idempotency.OpCreatePayment,
		Identity:       ident,
		IdempotencyKey: idempotencyKey,
		Probe:          s.store.Probe,
		Write: func(ctx context.Context, tx *sql.Tx, id string) (any, error) {
			row := *p
			row.ID = id
			row.TenantID = ident.TenantID
			row.Status = payment.StatusPosted
			row.CreatedAt = time.Now().UTC()

			if err := s.store.Insert(ctx, tx, &row, idempotencyKey); err != nil {
				return nil, err
			}

			effects.Stage(idempotency.Trigger{
				Workflow: "payment.posted",
				EntityID: id,
				TenantID: ident.TenantID,
				Payload: map[string]any{
					"counterparty_id": row.CounterpartyID,
					"amount_cents":    row.AmountCents,
					"currency":        row.Currency,
				},
			})
			return &row, nil
		},
		SideEffects: effects,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create payment",
			slog.String("operation", "CreatePayment"),
			slog.String("tenant_id", ident.TenantID),
			slog.Any("error", err),
		)
		return nil, false, err
	}

	created, _ := res.Entity.(*payment.Payment)
	return created, res.Replayed, nil
}
