package handlers

import (
	"net/http"

	"github.com/ledgerline/idemgate/internal/adapters/http/dto"
	"github.com/ledgerline/idemgate/internal/adapters/http/middleware"
	"github.com/ledgerline/idemgate/internal/ports"
)

// InvoiceHandler handles HTTP requests for the createInvoice operation.
type InvoiceHandler struct {
	svc ports.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler with the given service port.
func NewInvoiceHandler(svc ports.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

// CreateInvoice handles POST /api/v1/invoices.
func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateInvoiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	key := middleware.IdempotencyKeyFromContext(r.Context())

	created, replayed, err := h.svc.CreateInvoice(r.Context(), key, req.ToInvoice())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, createStatus(replayed), dto.ToInvoiceResponse(created))
}
