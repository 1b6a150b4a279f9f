// Package grant defines the access grant entity created by the grantAccess
// operation, the high-risk counterpart to the financial entities.
package grant

import (
	"strings"
	"time"

	"github.com/ledgerline/idemgate/internal/domain"
)

const msgRequired = "is required"

// Role is the access level conferred by a grant.
type Role string

// Valid roles, from least to most privileged.
const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// Grant represents an access grant row keyed by its deterministic identifier.
type Grant struct {
	ID        string
	TenantID  string
	GranteeID string
	Resource  string
	Role      Role
	GrantedBy string
	CreatedAt time.Time
}

// Validate checks business rules for the Grant entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (g *Grant) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(g.GranteeID) == "" {
		fields["grantee_id"] = msgRequired
	}
	if strings.TrimSpace(g.Resource) == "" {
		fields["resource"] = msgRequired
	}
	if !g.Role.Valid() {
		fields["role"] = "must be one of: viewer, editor, admin"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
