package ports

import (
	"context"

	"github.com/ledgerline/idemgate/internal/idempotency"
)

// WorkflowNotifier defines the client port for the downstream workflow
// engine. Implemented by the HTTP workflow adapter (and a noop for local
// profiles); called by the executor's side-effect set strictly after a new
// row commits.
type WorkflowNotifier interface {
	// Trigger dispatches a single workflow trigger event. Implementations
	// should respect context cancellation; failures are logged and audited
	// but never fail the committed operation.
	Trigger(ctx context.Context, t idempotency.Trigger) error
}
