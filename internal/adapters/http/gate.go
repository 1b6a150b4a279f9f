package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/idemgate/internal/adapters/http/middleware"
	"github.com/ledgerline/idemgate/internal/idempotency"
)

// RouteGate is the only way protected operations reach the router. Binding a
// handler through the gate mounts it on the route registered in the catalog,
// wraps it with the Idempotency-Key requirement, and records the binding so
// Verify can cross-check the full catalog before the server accepts traffic.
type RouteGate struct {
	catalog *idempotency.Catalog
	bound   map[idempotency.RouteBinding]idempotency.Name
}

// NewRouteGate creates a gate over the given catalog.
func NewRouteGate(catalog *idempotency.Catalog) *RouteGate {
	return &RouteGate{
		catalog: catalog,
		bound:   make(map[idempotency.RouteBinding]idempotency.Name),
	}
}

// Bind mounts the handler for the named operation on the router, on the
// method and path the catalog registered for it. The handler is wrapped so a
// request without an Idempotency-Key header is rejected before it runs.
// Binding an unregistered operation or binding one twice is a contract
// violation.
func (g *RouteGate) Bind(r chi.Router, op idempotency.Name, handler http.HandlerFunc) error {
	d, ok := g.catalog.Lookup(op)
	if !ok {
		return fmt.Errorf("%w: cannot bind unregistered operation %q",
			idempotency.ErrContractViolation, op)
	}
	if existing, taken := g.bound[d.Route]; taken {
		return fmt.Errorf("%w: route %s already bound for %q",
			idempotency.ErrContractViolation, d.Route, existing)
	}

	wrapped := middleware.RequireIdempotencyKey()(handler)
	r.Method(d.Route.Method, d.Route.Path, wrapped)
	g.bound[d.Route] = op
	return nil
}

// Verify asserts the catalog's binding contract: every registered operation
// has exactly one bound handler and nothing was bound outside the catalog.
// Call after all Bind calls and before serving.
func (g *RouteGate) Verify() error {
	return g.catalog.VerifyContract(g.bound)
}
