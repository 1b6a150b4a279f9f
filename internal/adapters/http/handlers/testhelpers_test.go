package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ledgerline/idemgate/internal/adapters/http/middleware"
	"github.com/ledgerline/idemgate/internal/domain"
	"github.com/ledgerline/idemgate/internal/domain/audit"
	"github.com/ledgerline/idemgate/internal/domain/grant"
	"github.com/ledgerline/idemgate/internal/domain/invoice"
	"github.com/ledgerline/idemgate/internal/domain/payment"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// withWriteContext attaches the identity and idempotency key the middleware
// chain would have resolved for a protected write.
func withWriteContext(r *http.Request, tenant, user, key string) *http.Request {
	ctx := domain.WithIdentity(r.Context(), domain.Identity{TenantID: tenant, UserID: user})
	ctx = middleware.WithIdempotencyKey(ctx, key)
	return r.WithContext(ctx)
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("failed to encode JSON body: %v", err)
	}
	return buf
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var result T
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	return result
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}

// fakePaymentService is a hand-rolled ports.PaymentService.
type fakePaymentService struct {
	created  *payment.Payment
	replayed bool
	err      error
	gotKey   string
}

func (f *fakePaymentService) CreatePayment(_ context.Context, key string, _ *payment.Payment) (*payment.Payment, bool, error) {
	f.gotKey = key
	return f.created, f.replayed, f.err
}

type fakeInvoiceService struct {
	created  *invoice.Invoice
	replayed bool
	err      error
}

func (f *fakeInvoiceService) CreateInvoice(context.Context, string, *invoice.Invoice) (*invoice.Invoice, bool, error) {
	return f.created, f.replayed, f.err
}

type fakeGrantService struct {
	created  *grant.Grant
	replayed bool
	err      error
}

func (f *fakeGrantService) GrantAccess(context.Context, string, *grant.Grant) (*grant.Grant, bool, error) {
	return f.created, f.replayed, f.err
}

type fakeAuditService struct {
	entries []audit.Entry
	err     error
	gotF    audit.Filter
}

func (f *fakeAuditService) Query(_ context.Context, filter audit.Filter) ([]audit.Entry, error) {
	f.gotF = filter
	return f.entries, f.err
}

func storedPayment() *payment.Payment {
	return &payment.Payment{
		ID:             "det-id-1",
		TenantID:       "tenant-1",
		CounterpartyID: "acct-9",
		AmountCents:    2500,
		Currency:       "EUR",
		Status:         payment.StatusPosted,
		CreatedAt:      testTime,
	}
}

func storedInvoice() *invoice.Invoice {
	return &invoice.Invoice{
		ID:         "det-id-2",
		TenantID:   "tenant-1",
		CustomerID: "cust-4",
		TotalCents: 18000,
		Currency:   "USD",
		LineCount:  3,
		DueDate:    testTime.AddDate(0, 1, 0),
		Status:     invoice.StatusOpen,
		CreatedAt:  testTime,
	}
}

func storedGrant() *grant.Grant {
	return &grant.Grant{
		ID:        "det-id-3",
		TenantID:  "tenant-1",
		GranteeID: "user-7",
		Resource:  "reports/quarterly",
		Role:      grant.RoleEditor,
		GrantedBy: "admin-1",
		CreatedAt: testTime,
	}
}
