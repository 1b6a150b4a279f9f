// Package dto provides HTTP request/response data transfer objects and
// RFC 9457 Problem Details error responses for the inbound HTTP adapter layer.
package dto

import (
	"time"

	"github.com/ledgerline/idemgate/internal/domain/audit"
	"github.com/ledgerline/idemgate/internal/domain/grant"
	"github.com/ledgerline/idemgate/internal/domain/invoice"
	"github.com/ledgerline/idemgate/internal/domain/payment"
)

// PaymentResponse represents a payment in HTTP responses. A replay returns
// the same body as the original commit; only the status code differs.
type PaymentResponse struct {
	ID             string `json:"id"`
	TenantID       string `json:"tenant_id"`
	CounterpartyID string `json:"counterparty_id"`
	AmountCents    int64  `json:"amount_cents"`
	Currency       string `json:"currency"`
	Reference      string `json:"reference,omitempty"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
}

// ToPaymentResponse converts a domain Payment to an HTTP response DTO.
func ToPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		TenantID:       p.TenantID,
		CounterpartyID: p.CounterpartyID,
		AmountCents:    p.AmountCents,
		Currency:       p.Currency,
		Reference:      p.Reference,
		Status:         p.Status,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
}

// InvoiceResponse represents an invoice in HTTP responses.
type InvoiceResponse struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenant_id"`
	CustomerID string `json:"customer_id"`
	TotalCents int64  `json:"total_cents"`
	Currency   string `json:"currency"`
	LineCount  int    `json:"line_count"`
	DueDate    string `json:"due_date"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// ToInvoiceResponse converts a domain Invoice to an HTTP response DTO.
func ToInvoiceResponse(inv *invoice.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:         inv.ID,
		TenantID:   inv.TenantID,
		CustomerID: inv.CustomerID,
		TotalCents: inv.TotalCents,
		Currency:   inv.Currency,
		LineCount:  inv.LineCount,
		DueDate:    inv.DueDate.Format(time.RFC3339),
		Status:     inv.Status,
		CreatedAt:  inv.CreatedAt.Format(time.RFC3339),
	}
}

// GrantResponse represents an access grant in HTTP responses.
type GrantResponse struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenant_id"`
	GranteeID string `json:"grantee_id"`
	Resource  string `json:"resource"`
	Role      string `json:"role"`
	GrantedBy string `json:"granted_by"`
	CreatedAt string `json:"created_at"`
}

// ToGrantResponse converts a domain Grant to an HTTP response DTO.
func ToGrantResponse(g *grant.Grant) GrantResponse {
	return GrantResponse{
		ID:        g.ID,
		TenantID:  g.TenantID,
		GranteeID: g.GranteeID,
		Resource:  g.Resource,
		Role:      string(g.Role),
		GrantedBy: g.GrantedBy,
		CreatedAt: g.CreatedAt.Format(time.RFC3339),
	}
}

// AuditEntryResponse represents one audit log entry in HTTP responses.
type AuditEntryResponse struct {
	ID                 int64  `json:"id"`
	Operation          string `json:"operation"`
	OperationType      string `json:"operation_type"`
	TenantID           string `json:"tenant_id"`
	UserID             string `json:"user_id,omitempty"`
	DeterministicID    string `json:"deterministic_id"`
	IdempotencyKey     string `json:"idempotency_key"`
	Status             string `json:"status"`
	DurationMs         int64  `json:"duration_ms"`
	WorkflowsTriggered int    `json:"workflows_triggered"`
	Error              string `json:"error,omitempty"`
	CreatedAt          string `json:"created_at"`
}

// AuditListResponse represents a page of audit entries, newest first.
type AuditListResponse struct {
	Entries []AuditEntryResponse `json:"entries"`
	Count   int                  `json:"count"`
}

// ToAuditEntryResponse converts a domain audit Entry to an HTTP response DTO.
func ToAuditEntryResponse(e *audit.Entry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:                 e.ID,
		Operation:          e.OperationName,
		OperationType:      e.OperationType,
		TenantID:           e.TenantID,
		UserID:             e.UserID,
		DeterministicID:    e.DeterministicID,
		IdempotencyKey:     e.IdempotencyKey,
		Status:             e.Status,
		DurationMs:         e.DurationMs,
		WorkflowsTriggered: e.WorkflowsTriggered,
		Error:              e.ErrorMessage,
		CreatedAt:          e.CreatedAt.Format(time.RFC3339),
	}
}

// ToAuditListResponse converts a slice of audit entries to an HTTP list
// response DTO.
func ToAuditListResponse(entries []audit.Entry) AuditListResponse {
	items := make([]AuditEntryResponse, len(entries))
	for i := range entries {
		items[i] = ToAuditEntryResponse(&entries[i])
	}
	return AuditListResponse{
		Entries: items,
		Count:   len(items),
	}
}
