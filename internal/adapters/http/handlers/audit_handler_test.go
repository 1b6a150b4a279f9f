package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ledgerline/idemgate/internal/adapters/http/dto"
	"github.com/ledgerline/idemgate/internal/adapters/http/handlers"
	"github.com/ledgerline/idemgate/internal/domain"
	"github.com/ledgerline/idemgate/internal/domain/audit"
)

func getAudit(t *testing.T, h *handlers.AuditHandler, target string, withIdentity bool) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if withIdentity {
		ctx := domain.WithIdentity(req.Context(), domain.Identity{TenantID: "tenant-1", UserID: "user-1"})
		req = req.WithContext(ctx)
	}
	h.QueryAudit(rec, req)
	return rec
}

func TestQueryAudit_ReturnsEntries(t *testing.T) {
	t.Parallel()
	svc := &fakeAuditService{entries: []audit.Entry{
		{ID: 2, OperationName: "createInvoice", TenantID: "tenant-1", Status: "replayed", CreatedAt: testTime},
		{ID: 1, OperationName: "createPayment", TenantID: "tenant-1", Status: "new", CreatedAt: testTime},
	}}
	h := handlers.NewAuditHandler(svc)

	rec := getAudit(t, h, "/api/v1/audit", true)

	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[dto.AuditListResponse](t, rec)
	if resp.Count != 2 {
		t.Errorf("Count = %d, want 2", resp.Count)
	}
	if resp.Entries[0].Operation != "createInvoice" {
		t.Errorf("Entries[0].Operation = %q, want createInvoice", resp.Entries[0].Operation)
	}
	if svc.gotF.TenantID != "tenant-1" {
		t.Errorf("filter tenant = %q, want tenant-1", svc.gotF.TenantID)
	}
}

func TestQueryAudit_PassesFilters(t *testing.T) {
	t.Parallel()
	svc := &fakeAuditService{}
	h := handlers.NewAuditHandler(svc)

	rec := getAudit(t, h, "/api/v1/audit?operation=createPayment&status=failed&limit=25", true)

	requireStatus(t, rec, http.StatusOK)
	if svc.gotF.Operation != "createPayment" || svc.gotF.Status != "failed" || svc.gotF.Limit != 25 {
		t.Errorf("filter = %+v, want operation/status/limit populated", svc.gotF)
	}
}

func TestQueryAudit_InvalidLimit(t *testing.T) {
	t.Parallel()
	h := handlers.NewAuditHandler(&fakeAuditService{})

	for _, target := range []string{"/api/v1/audit?limit=abc", "/api/v1/audit?limit=0", "/api/v1/audit?limit=-3"} {
		rec := getAudit(t, h, target, true)
		requireStatus(t, rec, http.StatusBadRequest)
	}
}

func TestQueryAudit_MissingIdentity(t *testing.T) {
	t.Parallel()
	h := handlers.NewAuditHandler(&fakeAuditService{})

	rec := getAudit(t, h, "/api/v1/audit", false)

	requireStatus(t, rec, http.StatusBadRequest)
	resp := decodeJSON[dto.ErrorResponse](t, rec)
	if resp.Code != dto.CodeTenantMissing {
		t.Errorf("code = %q, want %q", resp.Code, dto.CodeTenantMissing)
	}
}

func TestQueryAudit_ServiceError(t *testing.T) {
	t.Parallel()
	h := handlers.NewAuditHandler(&fakeAuditService{err: domain.ErrUnavailable})

	rec := getAudit(t, h, "/api/v1/audit", true)
	requireStatus(t, rec, http.StatusServiceUnavailable)
}
