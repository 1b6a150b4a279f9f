// Package invoice defines the invoice entity created by the createInvoice
// operation.
package invoice

import (
	"strings"
	"time"

	"github.com/ledgerline/idemgate/internal/domain"
)

const msgRequired = "is required"

// StatusOpen is the status assigned to newly created invoices.
const StatusOpen = "open"

// Invoice represents an invoice row keyed by its deterministic identifier.
type Invoice struct {
	ID         string
	TenantID   string
	CustomerID string
	TotalCents int64
	Currency   string
	LineCount  int
	DueDate    time.Time
	Status     string
	CreatedAt  time.Time
}

// Validate checks business rules for the Invoice entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (i *Invoice) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(i.CustomerID) == "" {
		fields["customer_id"] = msgRequired
	}
	if i.TotalCents <= 0 {
		fields["total_cents"] = "must be a positive integer"
	}
	if len(i.Currency) != 3 {
		fields["currency"] = "must be a 3-letter ISO 4217 code"
	}
	if i.LineCount < 1 {
		fields["line_count"] = "must be at least 1"
	}
	if i.DueDate.IsZero() {
		fields["due_date"] = msgRequired
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
