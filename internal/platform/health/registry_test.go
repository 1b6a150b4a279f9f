package health_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ledgerline/idemgate/internal/platform/health"
)

// stubChecker is a hand-rolled ports.HealthChecker for registry tests.
type stubChecker struct {
	name string
	fn   func(ctx context.Context) error
}

func (s *stubChecker) Name() string { return s.name }

func (s *stubChecker) HealthCheck(ctx context.Context) error {
	if s.fn == nil {
		return nil
	}
	return s.fn(ctx)
}

func TestCheckAll_Empty(t *testing.T) {
	t.Parallel()

	r := health.New()
	results := r.CheckAll(context.Background())

	if results == nil {
		t.Fatal("expected non-nil map, got nil")
	}
	if len(results) != 0 {
		t.Errorf("expected empty map, got %d entries", len(results))
	}
}

func TestCheckAll_AllHealthy(t *testing.T) {
	t.Parallel()

	r := health.New()
	r.Register(&stubChecker{name: "db"})
	r.Register(&stubChecker{name: "workflow-engine"})

	results := r.CheckAll(context.Background())

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results["db"] != nil {
		t.Errorf("db check = %v, want nil", results["db"])
	}
	if results["workflow-engine"] != nil {
		t.Errorf("workflow-engine check = %v, want nil", results["workflow-engine"])
	}
}

func TestCheckAll_MixedHealth(t *testing.T) {
	t.Parallel()

	unhealthyErr := errors.New("connection refused")

	r := health.New()
	r.Register(&stubChecker{name: "db"})
	r.Register(&stubChecker{
		name: "workflow-engine",
		fn:   func(context.Context) error { return unhealthyErr },
	})

	results := r.CheckAll(context.Background())

	if results["db"] != nil {
		t.Errorf("db check = %v, want nil", results["db"])
	}
	if results["workflow-engine"] == nil {
		t.Fatal("workflow-engine check = nil, want error")
	}
	if results["workflow-engine"].Error() != "connection refused" {
		t.Errorf("workflow-engine check = %q, want %q",
			results["workflow-engine"].Error(), "connection refused")
	}
}

func TestCheckAll_ContextPropagated(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := health.New()
	r.Register(&stubChecker{
		name: "workflow-engine",
		fn:   func(ctx context.Context) error { return ctx.Err() },
	})

	results := r.CheckAll(ctx)

	if !errors.Is(results["workflow-engine"], context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", results["workflow-engine"])
	}
}

func TestCheckAll_DuplicateNames_LastWriteWins(t *testing.T) {
	t.Parallel()

	secondErr := errors.New("second failure")

	r := health.New()
	r.Register(&stubChecker{name: "db"})
	r.Register(&stubChecker{
		name: "db",
		fn:   func(context.Context) error { return secondErr },
	})

	results := r.CheckAll(context.Background())

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	got, ok := results["db"]
	if !ok {
		t.Fatal(`expected result for key "db", but it was missing`)
	}
	if !errors.Is(got, secondErr) {
		t.Errorf("db check = %v, want %v (from last registered checker)", got, secondErr)
	}
}

func TestCheckAll_ConcurrentSafety(t *testing.T) {
	t.Parallel()

	r := health.New()

	var wg sync.WaitGroup
	const goroutines = 50

	// Half the goroutines register checkers, half call CheckAll.
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		if i%2 == 0 {
			go func() {
				defer wg.Done()
				r.Register(&stubChecker{name: "checker"})
			}()
		} else {
			go func() {
				defer wg.Done()
				r.CheckAll(context.Background())
			}()
		}
	}

	wg.Wait()
}
