package idempotency

import (
	"context"
	"errors"
	"fmt"

	"github.com/ledgerline/idemgate/internal/platform/fanout"
)

// Trigger describes one downstream workflow event contingent on a new
// committed row. Triggers never fire for replays.
type Trigger struct {
	Workflow string
	EntityID string
	TenantID string
	Payload  map[string]any
}

// Notifier dispatches a single workflow trigger to the downstream engine.
// Implemented by the workflow client adapter and by a noop for local runs.
type Notifier interface {
	Trigger(ctx context.Context, t Trigger) error
}

// dispatchWorkers bounds concurrent trigger dispatch for one commit.
const dispatchWorkers = 4

// SideEffectSet collects workflow triggers staged during a write and
// dispatches them only after the transaction commits. Staging is cheap and
// unconditional; whether the set ever runs is the executor's decision, which
// is how side effects are kept off the replay and failure paths.
//
// A SideEffectSet is scoped to a single executor invocation and is not safe
// for concurrent staging.
type SideEffectSet struct {
	notifier Notifier
	staged   []Trigger
	fired    bool
}

// NewSideEffectSet creates an empty set dispatching through the given
// notifier. A nil notifier yields a set whose Run is a no-op reporting zero
// triggers.
func NewSideEffectSet(notifier Notifier) *SideEffectSet {
	return &SideEffectSet{notifier: notifier}
}

// Stage queues a trigger for post-commit dispatch.
func (s *SideEffectSet) Stage(t Trigger) {
	s.staged = append(s.staged, t)
}

// Len returns the number of staged triggers.
func (s *SideEffectSet) Len() int {
	return len(s.staged)
}

// Run dispatches all staged triggers with bounded concurrency and returns
// the number successfully delivered. Run fires at most once; later calls
// return 0 immediately. Failed dispatches are aggregated into the returned
// error but do not stop the remaining triggers.
func (s *SideEffectSet) Run(ctx context.Context) (int, error) {
	if s == nil || s.fired || len(s.staged) == 0 || s.notifier == nil {
		if s != nil {
			s.fired = true
		}
		return 0, nil
	}
	s.fired = true

	results := fanout.Run(ctx, dispatchWorkers, s.staged,
		func(ctx context.Context, t Trigger) (struct{}, error) {
			return struct{}{}, s.notifier.Trigger(ctx, t)
		})

	delivered := 0
	var errs []error
	for i, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("trigger %q: %w", s.staged[i].Workflow, res.Err))
			continue
		}
		delivered++
	}

	return delivered, errors.Join(errs...)
}
