// Package payment defines the payment entity created by the createPayment
// operation. A payment's ID is the deterministic identifier derived from
// (tenant, operation, idempotency key), so the primary key doubles as the
// exactly-once guard.
package payment

import (
	"strings"
	"time"

	"github.com/ledgerline/idemgate/internal/domain"
)

// msgRequired is the validation message for mandatory fields.
const msgRequired = "is required"

// StatusPosted is the only status this subsystem writes. Later lifecycle
// transitions (settlement, reversal) are owned by the domain, not by the
// idempotent write path.
const StatusPosted = "posted"

// Payment represents a posted payment row.
type Payment struct {
	ID             string
	TenantID       string
	CounterpartyID string
	AmountCents    int64
	Currency       string
	Reference      string
	Status         string
	CreatedAt      time.Time
}

// Validate checks business rules for the Payment entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (p *Payment) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(p.CounterpartyID) == "" {
		fields["counterparty_id"] = msgRequired
	}
	if p.AmountCents <= 0 {
		fields["amount_cents"] = "must be a positive integer"
	}
	if !validCurrency(p.Currency) {
		fields["currency"] = "must be a 3-letter ISO 4217 code"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// validCurrency checks the shape of an ISO 4217 code (three ASCII letters).
// Full code-list validation belongs to the upstream pricing service.
func validCurrency(c string) bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
