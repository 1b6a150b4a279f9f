package workflow

import (
	"context"
	"log/slog"

	"github.com/ledgerline/idemgate/internal/idempotency"
	"github.com/ledgerline/idemgate/internal/ports"
)

// Compile-time interface check.
var _ ports.WorkflowNotifier = (*NoopNotifier)(nil)

// NoopNotifier accepts every trigger without dispatching it. Wired when
// workflow.enabled is false (local profiles, tests).
type NoopNotifier struct {
	logger *slog.Logger
}

// NewNoopNotifier creates a NoopNotifier. A nil logger discards logs.
func NewNoopNotifier(logger *slog.Logger) *NoopNotifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &NoopNotifier{logger: logger}
}

// Trigger logs the trigger at debug level and reports success.
func (n *NoopNotifier) Trigger(ctx context.Context, t idempotency.Trigger) error {
	n.logger.DebugContext(ctx, "workflow trigger suppressed (noop notifier)",
		slog.String("workflow", t.Workflow),
		slog.String("entity_id", t.EntityID),
		slog.String("tenant_id", t.TenantID),
	)
	return nil
}
