// Package handlers provides HTTP request handlers for the service's API endpoints.
package handlers

import (
	"net/http"

	"github.com/ledgerline/idemgate/internal/adapters/http/dto"
	"github.com/ledgerline/idemgate/internal/adapters/http/middleware"
	"github.com/ledgerline/idemgate/internal/ports"
)

// PaymentHandler handles HTTP requests for the createPayment operation.
type PaymentHandler struct {
	svc ports.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler with the given service port.
func NewPaymentHandler(svc ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// CreatePayment handles POST /api/v1/payments. A first-time commit answers
// 201; a replay of a previously committed key answers 200 with the original
// row. The bodies are identical; the status code is the only difference.
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	key := middleware.IdempotencyKeyFromContext(r.Context())

	created, replayed, err := h.svc.CreatePayment(r.Context(), key, req.ToPayment())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, createStatus(replayed), dto.ToPaymentResponse(created))
}
