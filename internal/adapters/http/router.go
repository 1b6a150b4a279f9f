// Package http provides the inbound HTTP adapter including routing, the
// route gate for protected operations, and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/idemgate/internal/adapters/http/handlers"
	"github.com/ledgerline/idemgate/internal/adapters/http/middleware"
	"github.com/ledgerline/idemgate/internal/idempotency"
)

// NewRouter creates an HTTP handler with all application routes registered.
// Protected write routes are mounted exclusively through the route gate and
// the binding contract is verified before the handler is returned; a catalog
// mismatch is a startup error, never a request-time one.
// Middleware is applied globally in the order given.
func NewRouter(
	catalog *idempotency.Catalog,
	paymentHandler *handlers.PaymentHandler,
	invoiceHandler *handlers.InvoiceHandler,
	grantHandler *handlers.GrantHandler,
	auditHandler *handlers.AuditHandler,
	healthHandler *handlers.HealthHandler,
	middlewares ...func(http.Handler) http.Handler,
) (http.Handler, error) {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	// Health endpoints (outside /api/v1 prefix, no tenant required).
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	gate := NewRouteGate(catalog)

	var bindErr error
	r.Group(func(r chi.Router) {
		r.Use(middleware.Tenant())

		// Protected write operations, bound through the gate only.
		for _, b := range []struct {
			op      idempotency.Name
			handler http.HandlerFunc
		}{
			{idempotency.OpCreatePayment, paymentHandler.CreatePayment},
			{idempotency.OpCreateInvoice, invoiceHandler.CreateInvoice},
			{idempotency.OpGrantAccess, grantHandler.GrantAccess},
		} {
			if err := gate.Bind(r, b.op, b.handler); err != nil && bindErr == nil {
				bindErr = err
			}
		}

		// Audit query API (tenant-scoped read).
		r.Get("/api/v1/audit", auditHandler.QueryAudit)
	})
	if bindErr != nil {
		return nil, bindErr
	}

	if err := gate.Verify(); err != nil {
		return nil, err
	}

	return r, nil
}
