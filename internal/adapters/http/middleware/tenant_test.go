package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ledgerline/idemgate/internal/adapters/http/dto"
	"github.com/ledgerline/idemgate/internal/adapters/http/middleware"
	"github.com/ledgerline/idemgate/internal/domain"
)

func TestTenant_StoresIdentity(t *testing.T) {
	t.Parallel()

	var got domain.Identity
	var ok bool
	handler := middleware.Tenant()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, ok = domain.IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", nil)
	req.Header.Set("X-Tenant-ID", "tenant-1")
	req.Header.Set("X-User-ID", "user-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !ok {
		t.Fatal("identity not stored in context")
	}
	if got.TenantID != "tenant-1" || got.UserID != "user-1" {
		t.Errorf("identity = %+v, want tenant-1/user-1", got)
	}
}

func TestTenant_UserHeaderOptional(t *testing.T) {
	t.Parallel()

	var got domain.Identity
	handler := middleware.Tenant()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, _ = domain.IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", nil)
	req.Header.Set("X-Tenant-ID", "tenant-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got.TenantID != "tenant-1" {
		t.Errorf("TenantID = %q, want tenant-1", got.TenantID)
	}
	if got.UserID != "" {
		t.Errorf("UserID = %q, want empty", got.UserID)
	}
}

func TestTenant_RejectsMissingTenant(t *testing.T) {
	t.Parallel()

	called := false
	handler := middleware.Tenant()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/payments", nil))

	if called {
		t.Error("handler ran without a tenant header")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Code != dto.CodeTenantMissing {
		t.Errorf("code = %q, want %q", resp.Code, dto.CodeTenantMissing)
	}
}
