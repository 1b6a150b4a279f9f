package idempotency

// The closed set of protected operation names. Adding an operation means
// adding a constant here, a descriptor below, and a route binding in the
// HTTP adapter; VerifyContract refuses to start the process until all three
// agree.
const (
	OpCreatePayment Name = "createPayment"
	OpCreateInvoice Name = "createInvoice"
	OpGrantAccess   Name = "grantAccess"
)

// descriptors is the static operation catalog, compiled in. Route paths must
// match the chi patterns bound by the route gate.
var descriptors = []Descriptor{
	{
		Name:             OpCreatePayment,
		Type:             TypeFinancial,
		AffectedEntities: []string{"payments"},
		Route:            RouteBinding{Method: "POST", Path: "/api/v1/payments"},
	},
	{
		Name:             OpCreateInvoice,
		Type:             TypeFinancial,
		AffectedEntities: []string{"invoices"},
		Route:            RouteBinding{Method: "POST", Path: "/api/v1/invoices"},
	},
	{
		Name:             OpGrantAccess,
		Type:             TypeHighRisk,
		AffectedEntities: []string{"access_grants"},
		Route:            RouteBinding{Method: "POST", Path: "/api/v1/grants"},
	},
}

// DefaultCatalog builds the catalog holding every protected operation.
// Called once from main; any registration error is a startup-fatal
// configuration bug.
func DefaultCatalog() (*Catalog, error) {
	c := NewCatalog()
	for _, d := range descriptors {
		if err := c.Register(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}
