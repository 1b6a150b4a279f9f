package app

import (
	"context"
	"log/slog"

	"github.com/ledgerline/idemgate/internal/domain"
	"github.com/ledgerline/idemgate/internal/domain/audit"
	"github.com/ledgerline/idemgate/internal/ports"
)

// Compile-time check that AuditService implements ports.AuditService.
var _ ports.AuditService = (*AuditService)(nil)

// AuditQuerier is the read surface AuditService needs.
type AuditQuerier interface {
	Query(ctx context.Context, f audit.Filter) ([]audit.Entry, error)
}

// AuditService implements ports.AuditService over the audit store's read
// side. Tenant scoping is enforced here so the handler cannot forget it.
type AuditService struct {
	store  AuditQuerier
	logger *slog.Logger
}

// NewAuditService creates an AuditService. A nil logger discards logs.
func NewAuditService(store AuditQuerier, logger *slog.Logger) *AuditService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuditService{store: store, logger: logger}
}

// Query returns audit entries for the filter's tenant, newest first.
func (s *AuditService) Query(ctx context.Context, f audit.Filter) ([]audit.Entry, error) {
	if f.TenantID == "" {
		return nil, &domain.ValidationError{
			Fields: map[string]string{"tenant_id": "is required"},
		}
	}

	entries, err := s.store.Query(ctx, f)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to query audit log",
			slog.String("operation", "QueryAudit"),
			slog.String("tenant_id", f.TenantID),
			slog.Any("error", err),
		)
		return nil, err
	}

	return entries, nil
}
