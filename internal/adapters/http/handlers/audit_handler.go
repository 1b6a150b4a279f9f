package handlers

import (
	"net/http"
	"strconv"

	"github.com/ledgerline/idemgate/internal/adapters/http/dto"
	"github.com/ledgerline/idemgate/internal/domain"
	"github.com/ledgerline/idemgate/internal/domain/audit"
	"github.com/ledgerline/idemgate/internal/ports"
)

// AuditHandler handles HTTP requests for the audit query endpoint.
type AuditHandler struct {
	svc ports.AuditService
}

// NewAuditHandler creates a new AuditHandler with the given service port.
func NewAuditHandler(svc ports.AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// QueryAudit handles GET /api/v1/audit. Entries are scoped to the request's
// tenant and returned newest first. Optional query parameters: operation,
// status, limit.
func (h *AuditHandler) QueryAudit(w http.ResponseWriter, r *http.Request) {
	ident, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		dto.WriteCodedError(w, r, http.StatusBadRequest,
			dto.CodeTenantMissing, "X-Tenant-ID header is required")
		return
	}

	f := audit.Filter{
		TenantID:  ident.TenantID,
		Operation: r.URL.Query().Get("operation"),
		Status:    r.URL.Query().Get("status"),
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			dto.WriteErrorResponse(w, r, &domain.ValidationError{
				Fields: map[string]string{"limit": "must be a positive integer"},
			})
			return
		}
		f.Limit = limit
	}

	entries, err := h.svc.Query(r.Context(), f)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAuditListResponse(entries))
}
