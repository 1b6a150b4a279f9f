package ports

import (
	"context"

	"github.com/ledgerline/idemgate/internal/domain/audit"
	"github.com/ledgerline/idemgate/internal/domain/grant"
	"github.com/ledgerline/idemgate/internal/domain/invoice"
	"github.com/ledgerline/idemgate/internal/domain/payment"
)

// Each create method runs through the idempotent write executor: the caller
// identity comes from the request context, the idempotency key from the
// request header. The boolean result is true when the call replayed an
// earlier success, in which case the returned entity is the original one and
// no side effects fired.

// PaymentService defines the service port for the createPayment operation.
type PaymentService interface {
	// CreatePayment posts a payment at most once per (tenant, key).
	// Returns domain.ErrValidation for bad input, domain.ErrKeyCollision
	// when the derived id is occupied by a different key, and
	// domain.ErrUnavailable for transient storage failures.
	CreatePayment(ctx context.Context, idempotencyKey string, p *payment.Payment) (*payment.Payment, bool, error)
}

// InvoiceService defines the service port for the createInvoice operation.
type InvoiceService interface {
	// CreateInvoice creates an invoice at most once per (tenant, key).
	// Error contract matches PaymentService.CreatePayment.
	CreateInvoice(ctx context.Context, idempotencyKey string, inv *invoice.Invoice) (*invoice.Invoice, bool, error)
}

// GrantService defines the service port for the grantAccess operation.
type GrantService interface {
	// GrantAccess records an access grant at most once per (tenant, key).
	// Error contract matches PaymentService.CreatePayment.
	GrantAccess(ctx context.Context, idempotencyKey string, g *grant.Grant) (*grant.Grant, bool, error)
}

// AuditService defines the read-side port over the audit log.
type AuditService interface {
	// Query returns audit entries for the filter's tenant, newest first.
	// Returns domain.ErrValidation when the filter has no tenant.
	Query(ctx context.Context, f audit.Filter) ([]audit.Entry, error)
}
