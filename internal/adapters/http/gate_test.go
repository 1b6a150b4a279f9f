package http_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	adapthttp "github.com/ledgerline/idemgate/internal/adapters/http"
	"github.com/ledgerline/idemgate/internal/idempotency"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusCreated)
}

func TestRouteGate_BindMountsCatalogRoute(t *testing.T) {
	t.Parallel()

	catalog, err := idempotency.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error: %v", err)
	}
	gate := adapthttp.NewRouteGate(catalog)
	r := chi.NewRouter()

	if err := gate.Bind(r, idempotency.OpCreatePayment, okHandler); err != nil {
		t.Fatalf("Bind() error: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", nil)
	req.Header.Set("Idempotency-Key", "key-1")
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201 through bound route", rec.Code)
	}
}

func TestRouteGate_BoundRouteRequiresIdempotencyKey(t *testing.T) {
	t.Parallel()

	catalog, err := idempotency.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error: %v", err)
	}
	gate := adapthttp.NewRouteGate(catalog)
	r := chi.NewRouter()

	if err := gate.Bind(r, idempotency.OpCreatePayment, okHandler); err != nil {
		t.Fatalf("Bind() error: %v", err)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/payments", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without Idempotency-Key", rec.Code)
	}
}

func TestRouteGate_RejectsUnregisteredOperation(t *testing.T) {
	t.Parallel()

	catalog, err := idempotency.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error: %v", err)
	}
	gate := adapthttp.NewRouteGate(catalog)

	err = gate.Bind(chi.NewRouter(), "mintTokens", okHandler)
	if !errors.Is(err, idempotency.ErrContractViolation) {
		t.Errorf("Bind(unregistered) error = %v, want ErrContractViolation", err)
	}
}

func TestRouteGate_RejectsDoubleBind(t *testing.T) {
	t.Parallel()

	catalog, err := idempotency.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error: %v", err)
	}
	gate := adapthttp.NewRouteGate(catalog)
	r := chi.NewRouter()

	if err := gate.Bind(r, idempotency.OpCreatePayment, okHandler); err != nil {
		t.Fatalf("first Bind() error: %v", err)
	}
	err = gate.Bind(r, idempotency.OpCreatePayment, okHandler)
	if !errors.Is(err, idempotency.ErrContractViolation) {
		t.Errorf("second Bind() error = %v, want ErrContractViolation", err)
	}
}

func TestRouteGate_VerifyFailsOnPartialBinding(t *testing.T) {
	t.Parallel()

	catalog, err := idempotency.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error: %v", err)
	}
	gate := adapthttp.NewRouteGate(catalog)
	r := chi.NewRouter()

	if err := gate.Bind(r, idempotency.OpCreatePayment, okHandler); err != nil {
		t.Fatalf("Bind() error: %v", err)
	}

	if err := gate.Verify(); !errors.Is(err, idempotency.ErrContractViolation) {
		t.Errorf("Verify(partial) error = %v, want ErrContractViolation", err)
	}
}

func TestRouteGate_VerifyPassesWhenComplete(t *testing.T) {
	t.Parallel()

	catalog, err := idempotency.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error: %v", err)
	}
	gate := adapthttp.NewRouteGate(catalog)
	r := chi.NewRouter()

	for _, op := range []idempotency.Name{
		idempotency.OpCreatePayment,
		idempotency.OpCreateInvoice,
		idempotency.OpGrantAccess,
	} {
		if err := gate.Bind(r, op, okHandler); err != nil {
			t.Fatalf("Bind(%q) error: %v", op, err)
		}
	}

	if err := gate.Verify(); err != nil {
		t.Errorf("Verify() error: %v", err)
	}
}
