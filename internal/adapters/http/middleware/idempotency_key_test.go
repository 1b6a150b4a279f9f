package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ledgerline/idemgate/internal/adapters/http/dto"
	"github.com/ledgerline/idemgate/internal/adapters/http/middleware"
)

func TestRequireIdempotencyKey_StoresKey(t *testing.T) {
	t.Parallel()

	var got string
	handler := middleware.RequireIdempotencyKey()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = middleware.IdempotencyKeyFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", nil)
	req.Header.Set("Idempotency-Key", "key-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "key-42" {
		t.Errorf("key from context = %q, want key-42", got)
	}
}

func TestRequireIdempotencyKey_RejectsMissingKey(t *testing.T) {
	t.Parallel()

	called := false
	handler := middleware.RequireIdempotencyKey()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/payments", nil))

	if called {
		t.Error("handler ran without an Idempotency-Key header")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Code != dto.CodeIdempotencyKeyMissing {
		t.Errorf("code = %q, want %q", resp.Code, dto.CodeIdempotencyKeyMissing)
	}
}

func TestIdempotencyKeyFromContext_Empty(t *testing.T) {
	t.Parallel()

	if got := middleware.IdempotencyKeyFromContext(context.Background()); got != "" {
		t.Errorf("key from empty context = %q, want empty", got)
	}
}
