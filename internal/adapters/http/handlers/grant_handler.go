package handlers

import (
	"net/http"

	"github.com/ledgerline/idemgate/internal/adapters/http/dto"
	"github.com/ledgerline/idemgate/internal/adapters/http/middleware"
	"github.com/ledgerline/idemgate/internal/ports"
)

// GrantHandler handles HTTP requests for the grantAccess operation.
type GrantHandler struct {
	svc ports.GrantService
}

// NewGrantHandler creates a new GrantHandler with the given service port.
func NewGrantHandler(svc ports.GrantService) *GrantHandler {
	return &GrantHandler{svc: svc}
}

// GrantAccess handles POST /api/v1/grants.
func (h *GrantHandler) GrantAccess(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateGrantRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	key := middleware.IdempotencyKeyFromContext(r.Context())

	created, replayed, err := h.svc.GrantAccess(r.Context(), key, req.ToGrant())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, createStatus(replayed), dto.ToGrantResponse(created))
}
