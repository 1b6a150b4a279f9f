package idempotency

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrContractViolation marks startup-time registration and binding failures.
// It is never returned on the request path: a violation aborts process start
// before the server accepts traffic.
var ErrContractViolation = errors.New("mutation contract violation")

// Name identifies a protected operation. The set of names is closed: every
// value must be registered in a Catalog before the process starts serving.
type Name string

// Type classifies a protected operation for registry and metric purposes.
type Type string

// Operation types. Each type has its own registry with independent
// enforcement, but identical shape.
const (
	TypeFinancial Type = "financial"
	TypeHighRisk  Type = "high_risk"
)

// RouteBinding is the HTTP method and path a protected operation is served on.
type RouteBinding struct {
	Method string
	Path   string
}

func (b RouteBinding) String() string {
	return b.Method + " " + b.Path
}

// Descriptor is the static catalog entry for one protected operation.
// Descriptors are registered once at boot and never mutated afterwards.
// The storage entry point itself is not held here: it is the handler bound
// through the route gate, which the contract check cross-references.
type Descriptor struct {
	Name             Name
	Type             Type
	AffectedEntities []string
	Route            RouteBinding
}

func (d Descriptor) validate() error {
	var errs []error

	if strings.TrimSpace(string(d.Name)) == "" {
		errs = append(errs, fmt.Errorf("%w: descriptor has empty operation name", ErrContractViolation))
	}
	if d.Type != TypeFinancial && d.Type != TypeHighRisk {
		errs = append(errs, fmt.Errorf("%w: operation %q has unknown type %q",
			ErrContractViolation, d.Name, d.Type))
	}
	if len(d.AffectedEntities) == 0 {
		errs = append(errs, fmt.Errorf("%w: operation %q lists no affected entities",
			ErrContractViolation, d.Name))
	}
	if d.Route.Method == "" || d.Route.Path == "" {
		errs = append(errs, fmt.Errorf("%w: operation %q has incomplete route binding",
			ErrContractViolation, d.Name))
	}

	return errors.Join(errs...)
}

// Registry is the read-only catalog for one operation type. It is populated
// during bootstrap and only read afterwards, so lookups need no locking.
type Registry struct {
	typ    Type
	byName map[Name]Descriptor
}

// NewRegistry creates an empty registry for the given operation type.
func NewRegistry(typ Type) *Registry {
	return &Registry{
		typ:    typ,
		byName: make(map[Name]Descriptor),
	}
}

// Register adds a descriptor. Registering a descriptor of the wrong type, a
// duplicate name, or an incomplete descriptor returns ErrContractViolation.
func (r *Registry) Register(d Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}
	if d.Type != r.typ {
		return fmt.Errorf("%w: operation %q has type %q, registry holds %q",
			ErrContractViolation, d.Name, d.Type, r.typ)
	}
	if _, exists := r.byName[d.Name]; exists {
		return fmt.Errorf("%w: operation %q registered twice", ErrContractViolation, d.Name)
	}
	r.byName[d.Name] = d
	return nil
}

// Lookup returns the descriptor for the given operation name.
func (r *Registry) Lookup(name Name) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// All returns every registered descriptor, sorted by name for stable output.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, 0, len(r.byName))
	for _, d := range r.byName {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Catalog bundles the financial and high-risk registries and enforces the
// cross-registry invariants: operation names and route bindings are unique
// across both. A Catalog is built once in main and passed by reference into
// the route gate and the executor.
type Catalog struct {
	financial *Registry
	highRisk  *Registry
	byRoute   map[RouteBinding]Name
}

// NewCatalog creates a catalog with two empty registries.
func NewCatalog() *Catalog {
	return &Catalog{
		financial: NewRegistry(TypeFinancial),
		highRisk:  NewRegistry(TypeHighRisk),
		byRoute:   make(map[RouteBinding]Name),
	}
}

// Register places the descriptor in the registry matching its type and
// checks the cross-registry route and name uniqueness invariants.
func (c *Catalog) Register(d Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}
	if existing, taken := c.byRoute[d.Route]; taken {
		return fmt.Errorf("%w: route %s bound to both %q and %q",
			ErrContractViolation, d.Route, existing, d.Name)
	}
	if _, dup := c.Lookup(d.Name); dup {
		return fmt.Errorf("%w: operation %q registered twice", ErrContractViolation, d.Name)
	}

	var err error
	switch d.Type {
	case TypeFinancial:
		err = c.financial.Register(d)
	case TypeHighRisk:
		err = c.highRisk.Register(d)
	default:
		err = fmt.Errorf("%w: operation %q has unknown type %q", ErrContractViolation, d.Name, d.Type)
	}
	if err != nil {
		return err
	}

	c.byRoute[d.Route] = d.Name
	return nil
}

// Lookup searches both registries for the given operation name.
func (c *Catalog) Lookup(name Name) (Descriptor, bool) {
	if d, ok := c.financial.Lookup(name); ok {
		return d, true
	}
	return c.highRisk.Lookup(name)
}

// ListAll returns the descriptors of one registry, sorted by name.
func (c *Catalog) ListAll(typ Type) []Descriptor {
	switch typ {
	case TypeFinancial:
		return c.financial.All()
	case TypeHighRisk:
		return c.highRisk.All()
	}
	return nil
}

// VerifyContract asserts that every registered descriptor has exactly one
// bound handler and that no handler is bound for an unregistered route.
// bound maps route bindings to the operation each handler was bound for.
// Any violation aborts startup; this check never runs on the request path.
func (c *Catalog) VerifyContract(bound map[RouteBinding]Name) error {
	var errs []error

	for _, d := range append(c.financial.All(), c.highRisk.All()...) {
		op, ok := bound[d.Route]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: operation %q (%s) has no bound handler",
				ErrContractViolation, d.Name, d.Route))
			continue
		}
		if op != d.Name {
			errs = append(errs, fmt.Errorf("%w: route %s registered for %q but bound for %q",
				ErrContractViolation, d.Route, d.Name, op))
		}
	}

	for route, op := range bound {
		if _, ok := c.byRoute[route]; !ok {
			errs = append(errs, fmt.Errorf("%w: handler for %q bound on unregistered route %s",
				ErrContractViolation, op, route))
		}
	}

	return errors.Join(errs...)
}
