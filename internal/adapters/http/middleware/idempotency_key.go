package middleware

import (
	"context"
	"net/http"

	"github.com/ledgerline/idemgate/internal/adapters/http/dto"
)

const headerIdempotencyKey = "Idempotency-Key"

// idempotencyKeyKey is the context key for the submitted idempotency key.
type idempotencyKeyKey struct{}

// WithIdempotencyKey returns a new context with the given idempotency key
// stored in it.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKeyKey{}, key)
}

// IdempotencyKeyFromContext extracts the idempotency key from the context.
// Returns an empty string if no key is stored.
func IdempotencyKeyFromContext(ctx context.Context) string {
	if key, ok := ctx.Value(idempotencyKeyKey{}).(string); ok {
		return key
	}
	return ""
}

// RequireIdempotencyKey returns middleware that rejects requests without an
// Idempotency-Key header. Protected write routes never execute without a key:
// a missing key is a client bug, not a request to handle non-idempotently.
func RequireIdempotencyKey() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(headerIdempotencyKey)
			if key == "" {
				dto.WriteCodedError(w, r, http.StatusBadRequest,
					dto.CodeIdempotencyKeyMissing, "Idempotency-Key header is required")
				return
			}
			ctx := WithIdempotencyKey(r.Context(), key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
