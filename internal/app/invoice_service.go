package app

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/ledgerline/idemgate/internal/domain"
	"github.com/ledgerline/idemgate/internal/domain/invoice"
	"github.com/ledgerline/idemgate/internal/idempotency"
	"github.com/ledgerline/idemgate/internal/ports"
)

// Compile-time check that InvoiceService implements ports.InvoiceService.
var _ ports.InvoiceService = (*InvoiceService)(nil)

// InvoiceService implements ports.InvoiceService for the createInvoice
// operation.
type InvoiceService struct {
	executor *idempotency.Executor
	store    InvoiceStore
	notifier ports.WorkflowNotifier
	logger   *slog.Logger
}

// InvoiceStore is the storage surface CreateInvoice needs.
type InvoiceStore interface {
	Probe(ctx context.Context, tx *sql.Tx, id string) (*idempotency.Existing, error)
	Insert(ctx context.Context, tx *sql.Tx, inv *invoice.Invoice, idempotencyKey string) error
}

// NewInvoiceService creates an InvoiceService. A nil logger discards logs.
func NewInvoiceService(executor *idempotency.Executor, store InvoiceStore, notifier ports.WorkflowNotifier, logger *slog.Logger) *InvoiceService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &InvoiceService{
		executor: executor,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateInvoice creates an invoice at most once per (tenant, idempotency key).
func (s *InvoiceService) CreateInvoice(ctx context.Context, idempotencyKey string, inv *invoice.Invoice) (*invoice.Invoice, bool, error) {
	ident, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return nil, false, &domain.ValidationError{
			Fields: map[string]string{"tenant_id": "is required"},
		}
	}

	if err := inv.Validate(); err != nil {
		return nil, false, err
	}

	effects := idempotency.NewSideEffectSet(s.notifier)

	res, err := s.executor.Execute(ctx, idempotency.Request{
		Operation:      idempotency.OpCreateInvoice,
		Identity:       ident,
		IdempotencyKey: idempotencyKey,
		Probe:          s.store.Probe,
		Write: func(ctx context.Context, tx *sql.Tx, id string) (any, error) {
			row := *inv
			row.ID = id
			row.TenantID = ident.TenantID
			row.Status = invoice.StatusOpen
			row.CreatedAt = time.Now().UTC()

			if err := s.store.Insert(ctx, tx, &row, idempotencyKey); err != nil {
				return nil, err
			}

			effects.Stage(idempotency.Trigger{
				Workflow: "invoice.created",
				EntityID: id,
				TenantID: ident.TenantID,
				Payload: map[string]any{
					"customer_id": row.CustomerID,
					"total_cents": row.TotalCents,
					"currency":    row.Currency,
				},
			})
			return &row, nil
		},
		SideEffects: effects,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create invoice",
			slog.String("operation", "CreateInvoice"),
			slog.String("tenant_id", ident.TenantID),
			slog.Any("error", err),
		)
		return nil, false, err
	}

	created, _ := res.Entity.(*invoice.Invoice)
	return created, res.Replayed, nil
}
