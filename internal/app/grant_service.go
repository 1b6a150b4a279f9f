package app

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/ledgerline/idemgate/internal/domain"
	"github.com/ledgerline/idemgate/internal/domain/grant"
	"github.com/ledgerline/idemgate/internal/idempotency"
	"github.com/ledgerline/idemgate/internal/ports"
)

// Compile-time check that GrantService implements ports.GrantService.
var _ ports.GrantService = (*GrantService)(nil)

// GrantService implements ports.GrantService for the grantAccess operation,
// the high-risk registry's representative.
type GrantService struct {
	executor *idempotency.Executor
	store    GrantStore
	notifier ports.WorkflowNotifier
	logger   *slog.Logger
}

// GrantStore is the storage surface GrantAccess needs.
type GrantStore interface {
	Probe(ctx context.Context, tx *sql.Tx, id string) (*idempotency.Existing, error)
	Insert(ctx context.Context, tx *sql.Tx, g *grant.Grant, idempotencyKey string) error
}

// NewGrantService creates a GrantService. A nil logger discards logs.
func NewGrantService(executor *idempotency.Executor, store GrantStore, notifier ports.WorkflowNotifier, logger *slog.Logger) *GrantService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GrantService{
		executor: executor,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// GrantAccess records an access grant at most once per (tenant, idempotency
// key). The granting user is taken from the request identity.
func (s *GrantService) GrantAccess(ctx context.Context, idempotencyKey string, g *grant.Grant) (*grant.Grant, bool, error) {
	ident, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return nil, false, &domain.ValidationError{
			Fields: map[string]string{"tenant_id": "is required"},
		}
	}

	if err := g.Validate(); err != nil {
		return nil, false, err
	}

	effects := idempotency.NewSideEffectSet(s.notifier)

	res, err := s.executor.Execute(ctx, idempotency.Request{
		Operation:      idempotency.OpGrantAccess,
		Identity:       ident,
		IdempotencyKey: idempotencyKey,
		Probe:          s.store.Probe,
		Write: func(ctx context.Context, tx *sql.Tx, id string) (any, error) {
			row := *g
			row.ID = id
			row.TenantID = ident.TenantID
			row.GrantedBy = ident.UserID
			row.CreatedAt = time.Now().UTC()

			if err := s.store.Insert(ctx, tx, &row, idempotencyKey); err != nil {
				return nil, err
			}

			effects.Stage(idempotency.Trigger{
				Workflow: "access.granted",
				EntityID: id,
				TenantID: ident.TenantID,
				Payload: map[string]any{
					"grantee_id": row.GranteeID,
					"resource":   row.Resource,
					"role":       string(row.Role),
				},
			})
			return &row, nil
		},
		SideEffects: effects,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to grant access",
			slog.String("operation", "GrantAccess"),
			slog.String("tenant_id", ident.TenantID),
			slog.Any("error", err),
		)
		return nil, false, err
	}

	created, _ := res.Entity.(*grant.Grant)
	return created, res.Replayed, nil
}
