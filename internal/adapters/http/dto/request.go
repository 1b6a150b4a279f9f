package dto

import (
	"strings"
	"time"

	"github.com/ledgerline/idemgate/internal/domain"
	"github.com/ledgerline/idemgate/internal/domain/grant"
	"github.com/ledgerline/idemgate/internal/domain/invoice"
	"github.com/ledgerline/idemgate/internal/domain/payment"
)

const msgRequired = "is required"

// CreatePaymentRequest represents the JSON body for posting a payment.
type CreatePaymentRequest struct {
	CounterpartyID string `json:"counterparty_id"`
	AmountCents    int64  `json:"amount_cents"`
	Currency       string `json:"currency"`
	Reference      string `json:"reference,omitempty"`
}

// Validate checks that required fields are present. Deeper business rules
// live on the domain entity; this catches obviously malformed bodies before
// any derivation happens.
func (r *CreatePaymentRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.CounterpartyID) == "" {
		fields["counterparty_id"] = msgRequired
	}
	if r.AmountCents == 0 {
		fields["amount_cents"] = msgRequired
	}
	if strings.TrimSpace(r.Currency) == "" {
		fields["currency"] = msgRequired
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ToPayment converts the request into a domain Payment. The ID, tenant,
// status, and timestamps are assigned by the write path.
func (r *CreatePaymentRequest) ToPayment() *payment.Payment {
	return &payment.Payment{
		CounterpartyID: r.CounterpartyID,
		AmountCents:    r.AmountCents,
		Currency:       r.Currency,
		Reference:      r.Reference,
	}
}

// CreateInvoiceRequest represents the JSON body for creating an invoice.
type CreateInvoiceRequest struct {
	CustomerID string `json:"customer_id"`
	TotalCents int64  `json:"total_cents"`
	Currency   string `json:"currency"`
	LineCount  int    `json:"line_count"`
	DueDate    string `json:"due_date"`
}

// Validate checks that required fields are present and the due date parses
// as RFC 3339.
func (r *CreateInvoiceRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.CustomerID) == "" {
		fields["customer_id"] = msgRequired
	}
	if r.TotalCents == 0 {
		fields["total_cents"] = msgRequired
	}
	if strings.TrimSpace(r.Currency) == "" {
		fields["currency"] = msgRequired
	}
	if strings.TrimSpace(r.DueDate) == "" {
		fields["due_date"] = msgRequired
	} else if _, err := time.Parse(time.RFC3339, r.DueDate); err != nil {
		fields["due_date"] = "must be an RFC 3339 timestamp"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ToInvoice converts the request into a domain Invoice. Validate must have
// succeeded before calling this; an unparseable due date yields a zero time.
func (r *CreateInvoiceRequest) ToInvoice() *invoice.Invoice {
	due, _ := time.Parse(time.RFC3339, r.DueDate)
	return &invoice.Invoice{
		CustomerID: r.CustomerID,
		TotalCents: r.TotalCents,
		Currency:   r.Currency,
		LineCount:  r.LineCount,
		DueDate:    due,
	}
}

// CreateGrantRequest represents the JSON body for granting resource access.
type CreateGrantRequest struct {
	GranteeID string `json:"grantee_id"`
	Resource  string `json:"resource"`
	Role      string `json:"role"`
}

// Validate checks that required fields are present.
func (r *CreateGrantRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.GranteeID) == "" {
		fields["grantee_id"] = msgRequired
	}
	if strings.TrimSpace(r.Resource) == "" {
		fields["resource"] = msgRequired
	}
	if strings.TrimSpace(r.Role) == "" {
		fields["role"] = msgRequired
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ToGrant converts the request into a domain Grant. GrantedBy is assigned
// from the request identity by the service.
func (r *CreateGrantRequest) ToGrant() *grant.Grant {
	return &grant.Grant{
		GranteeID: r.GranteeID,
		Resource:  r.Resource,
		Role:      grant.Role(r.Role),
	}
}
