package idempotency

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// countingNotifier records triggers and optionally fails selected workflows.
type countingNotifier struct {
	mu       sync.Mutex
	received []Trigger
	failFor  map[string]error
}

func (n *countingNotifier) Trigger(_ context.Context, t Trigger) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err, ok := n.failFor[t.Workflow]; ok {
		return err
	}
	n.received = append(n.received, t)
	return nil
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.received)
}

func TestSideEffectSet_RunDispatchesStaged(t *testing.T) {
	t.Parallel()

	notifier := &countingNotifier{}
	set := NewSideEffectSet(notifier)
	set.Stage(Trigger{Workflow: "payment.posted", EntityID: "id-1", TenantID: "t1"})
	set.Stage(Trigger{Workflow: "invoice.created", EntityID: "id-2", TenantID: "t1"})

	delivered, err := set.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if delivered != 2 {
		t.Errorf("delivered = %d, want 2", delivered)
	}
	if notifier.count() != 2 {
		t.Errorf("notifier received %d triggers, want 2", notifier.count())
	}
}

func TestSideEffectSet_RunFiresAtMostOnce(t *testing.T) {
	t.Parallel()

	notifier := &countingNotifier{}
	set := NewSideEffectSet(notifier)
	set.Stage(Trigger{Workflow: "payment.posted"})

	if _, err := set.Run(context.Background()); err != nil {
		t.Fatalf("first Run() error: %v", err)
	}
	delivered, err := set.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error: %v", err)
	}
	if delivered != 0 {
		t.Errorf("second Run() delivered = %d, want 0", delivered)
	}
	if notifier.count() != 1 {
		t.Errorf("notifier received %d triggers, want 1", notifier.count())
	}
}

func TestSideEffectSet_FailuresDoNotStopRemaining(t *testing.T) {
	t.Parallel()

	boom := errors.New("engine rejected trigger")
	notifier := &countingNotifier{failFor: map[string]error{"payment.posted": boom}}
	set := NewSideEffectSet(notifier)
	set.Stage(Trigger{Workflow: "payment.posted"})
	set.Stage(Trigger{Workflow: "invoice.created"})

	delivered, err := set.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want wrapped %v", err, boom)
	}
	if delivered != 1 {
		t.Errorf("delivered = %d, want 1", delivered)
	}
}

func TestSideEffectSet_NilNotifier(t *testing.T) {
	t.Parallel()

	set := NewSideEffectSet(nil)
	set.Stage(Trigger{Workflow: "payment.posted"})

	delivered, err := set.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if delivered != 0 {
		t.Errorf("delivered = %d, want 0 with nil notifier", delivered)
	}
}

func TestSideEffectSet_NilSet(t *testing.T) {
	t.Parallel()

	var set *SideEffectSet
	delivered, err := set.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() on nil set error: %v", err)
	}
	if delivered != 0 {
		t.Errorf("delivered = %d, want 0", delivered)
	}
}
