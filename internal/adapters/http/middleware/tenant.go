package middleware

import (
	"net/http"

	"github.com/ledgerline/idemgate/internal/adapters/http/dto"
	"github.com/ledgerline/idemgate/internal/domain"
)

const (
	headerTenantID = "X-Tenant-ID"
	headerUserID   = "X-User-ID"
)

// Tenant returns middleware that resolves the request identity from the
// X-Tenant-ID and X-User-ID headers and stores it in the context. Requests
// without a tenant are rejected: every derivation and every audit row is
// tenant-scoped, so an anonymous write has no meaning here.
//
// The user ID is optional; system-to-system calls carry only a tenant.
func Tenant() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := r.Header.Get(headerTenantID)
			if tenantID == "" {
				dto.WriteCodedError(w, r, http.StatusBadRequest,
					dto.CodeTenantMissing, "X-Tenant-ID header is required")
				return
			}

			ident := domain.Identity{
				TenantID: tenantID,
				UserID:   r.Header.Get(headerUserID),
			}
			ctx := domain.WithIdentity(r.Context(), ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
