package idempotency

import (
	"errors"
	"testing"
)

func validDescriptor() Descriptor {
	return Descriptor{
		Name:             "settleBatch",
		Type:             TypeFinancial,
		AffectedEntities: []string{"settlements"},
		Route:            RouteBinding{Method: "POST", Path: "/api/v1/settlements"},
	}
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	r := NewRegistry(TypeFinancial)
	if err := r.Register(validDescriptor()); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	d, ok := r.Lookup("settleBatch")
	if !ok {
		t.Fatal("Lookup() did not find registered operation")
	}
	if d.Route.Path != "/api/v1/settlements" {
		t.Errorf("Route.Path = %q, want /api/v1/settlements", d.Route.Path)
	}
}

func TestRegistry_RejectsWrongType(t *testing.T) {
	t.Parallel()

	r := NewRegistry(TypeHighRisk)
	err := r.Register(validDescriptor())
	if !errors.Is(err, ErrContractViolation) {
		t.Errorf("Register(wrong type) error = %v, want ErrContractViolation", err)
	}
}

func TestRegistry_RejectsDuplicateName(t *testing.T) {
	t.Parallel()

	r := NewRegistry(TypeFinancial)
	if err := r.Register(validDescriptor()); err != nil {
		t.Fatalf("first Register() error: %v", err)
	}

	dup := validDescriptor()
	dup.Route.Path = "/api/v1/other"
	err := r.Register(dup)
	if !errors.Is(err, ErrContractViolation) {
		t.Errorf("Register(duplicate name) error = %v, want ErrContractViolation", err)
	}
}

func TestRegistry_RejectsIncompleteDescriptor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Descriptor)
	}{
		{"empty name", func(d *Descriptor) { d.Name = "  " }},
		{"unknown type", func(d *Descriptor) { d.Type = "experimental" }},
		{"no affected entities", func(d *Descriptor) { d.AffectedEntities = nil }},
		{"missing route method", func(d *Descriptor) { d.Route.Method = "" }},
		{"missing route path", func(d *Descriptor) { d.Route.Path = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := validDescriptor()
			tt.mutate(&d)

			r := NewRegistry(TypeFinancial)
			if err := r.Register(d); !errors.Is(err, ErrContractViolation) {
				t.Errorf("Register() error = %v, want ErrContractViolation", err)
			}
		})
	}
}

func TestRegistry_AllSortedByName(t *testing.T) {
	t.Parallel()

	r := NewRegistry(TypeFinancial)
	for _, name := range []Name{"zz", "aa", "mm"} {
		d := validDescriptor()
		d.Name = name
		d.Route.Path = "/api/v1/" + string(name)
		if err := r.Register(d); err != nil {
			t.Fatalf("Register(%q) error: %v", name, err)
		}
	}

	all := r.All()
	if len(all) != 3 {
		t.Fatalf("All() len = %d, want 3", len(all))
	}
	for i, want := range []Name{"aa", "mm", "zz"} {
		if all[i].Name != want {
			t.Errorf("All()[%d].Name = %q, want %q", i, all[i].Name, want)
		}
	}
}

func TestCatalog_RegisterRoutesByType(t *testing.T) {
	t.Parallel()

	c := NewCatalog()

	fin := validDescriptor()
	hr := Descriptor{
		Name:             "rotateCredentials",
		Type:             TypeHighRisk,
		AffectedEntities: []string{"credentials"},
		Route:            RouteBinding{Method: "POST", Path: "/api/v1/credentials/rotate"},
	}
	if err := c.Register(fin); err != nil {
		t.Fatalf("Register(financial) error: %v", err)
	}
	if err := c.Register(hr); err != nil {
		t.Fatalf("Register(high risk) error: %v", err)
	}

	if _, ok := c.Lookup(fin.Name); !ok {
		t.Error("Lookup() missed financial operation")
	}
	if _, ok := c.Lookup(hr.Name); !ok {
		t.Error("Lookup() missed high-risk operation")
	}
	if got := len(c.ListAll(TypeFinancial)); got != 1 {
		t.Errorf("ListAll(financial) len = %d, want 1", got)
	}
	if got := len(c.ListAll(TypeHighRisk)); got != 1 {
		t.Errorf("ListAll(high_risk) len = %d, want 1", got)
	}
}

func TestCatalog_RejectsRouteSharedAcrossRegistries(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	if err := c.Register(validDescriptor()); err != nil {
		t.Fatalf("first Register() error: %v", err)
	}

	clash := Descriptor{
		Name:             "approveSettlement",
		Type:             TypeHighRisk,
		AffectedEntities: []string{"settlements"},
		Route:            RouteBinding{Method: "POST", Path: "/api/v1/settlements"},
	}
	if err := c.Register(clash); !errors.Is(err, ErrContractViolation) {
		t.Errorf("Register(shared route) error = %v, want ErrContractViolation", err)
	}
}

func TestCatalog_RejectsNameSharedAcrossRegistries(t *testing.T) {
	t.Parallel()

	c := NewCatalog()
	if err := c.Register(validDescriptor()); err != nil {
		t.Fatalf("first Register() error: %v", err)
	}

	clash := Descriptor{
		Name:             "settleBatch",
		Type:             TypeHighRisk,
		AffectedEntities: []string{"settlements"},
		Route:            RouteBinding{Method: "POST", Path: "/api/v1/settlements/high-risk"},
	}
	if err := c.Register(clash); !errors.Is(err, ErrContractViolation) {
		t.Errorf("Register(shared name) error = %v, want ErrContractViolation", err)
	}
}

func TestCatalog_VerifyContract(t *testing.T) {
	t.Parallel()

	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error: %v", err)
	}

	fullBinding := func() map[RouteBinding]Name {
		bound := make(map[RouteBinding]Name)
		for _, typ := range []Type{TypeFinancial, TypeHighRisk} {
			for _, d := range catalog.ListAll(typ) {
				bound[d.Route] = d.Name
			}
		}
		return bound
	}

	t.Run("complete binding passes", func(t *testing.T) {
		t.Parallel()
		if err := catalog.VerifyContract(fullBinding()); err != nil {
			t.Errorf("VerifyContract() error: %v", err)
		}
	})

	t.Run("missing handler fails", func(t *testing.T) {
		t.Parallel()
		bound := fullBinding()
		delete(bound, RouteBinding{Method: "POST", Path: "/api/v1/payments"})

		if err := catalog.VerifyContract(bound); !errors.Is(err, ErrContractViolation) {
			t.Errorf("VerifyContract(missing) error = %v, want ErrContractViolation", err)
		}
	})

	t.Run("handler on unregistered route fails", func(t *testing.T) {
		t.Parallel()
		bound := fullBinding()
		bound[RouteBinding{Method: "POST", Path: "/api/v1/rogue"}] = "rogueOp"

		if err := catalog.VerifyContract(bound); !errors.Is(err, ErrContractViolation) {
			t.Errorf("VerifyContract(unregistered) error = %v, want ErrContractViolation", err)
		}
	})

	t.Run("route bound for wrong operation fails", func(t *testing.T) {
		t.Parallel()
		bound := fullBinding()
		bound[RouteBinding{Method: "POST", Path: "/api/v1/payments"}] = OpCreateInvoice

		if err := catalog.VerifyContract(bound); !errors.Is(err, ErrContractViolation) {
			t.Errorf("VerifyContract(mismatch) error = %v, want ErrContractViolation", err)
		}
	})
}

func TestDefaultCatalog_HoldsAllOperations(t *testing.T) {
	t.Parallel()

	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error: %v", err)
	}

	for _, name := range []Name{OpCreatePayment, OpCreateInvoice, OpGrantAccess} {
		if _, ok := catalog.Lookup(name); !ok {
			t.Errorf("DefaultCatalog() missing operation %q", name)
		}
	}

	if got := len(catalog.ListAll(TypeFinancial)); got != 2 {
		t.Errorf("financial operations = %d, want 2", got)
	}
	if got := len(catalog.ListAll(TypeHighRisk)); got != 1 {
		t.Errorf("high-risk operations = %d, want 1", got)
	}
}
