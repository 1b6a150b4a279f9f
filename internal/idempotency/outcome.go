package idempotency

import "time"

// Status classifies how an executor invocation ended.
type Status string

// Outcome statuses. Exactly one is assigned per invocation.
const (
	StatusNew      Status = "new"
	StatusReplayed Status = "replayed"
	StatusFailed   Status = "failed"
)

// Outcome is the structured record of one executor invocation, reported to
// the monitor after the transaction resolves. One outcome is produced per
// attempt, including failed and replayed attempts.
type Outcome struct {
	Operation          Name
	OperationType      Type
	TenantID           string
	UserID             string
	DeterministicID    string
	IdempotencyKey     string
	Status             Status
	Duration           time.Duration
	WorkflowsTriggered int
	ErrorMessage       string
	Timestamp          time.Time
}

// OutcomeRecorder receives outcomes from the executor. Implementations must
// not block: delivery is fire-and-forget from the executor's point of view,
// and a recorder failure must never fail the business operation.
type OutcomeRecorder interface {
	Record(o Outcome)
}

// nopRecorder discards outcomes. Used when no monitor is wired (tests).
type nopRecorder struct{}

func (nopRecorder) Record(Outcome) {}
