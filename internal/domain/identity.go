package domain

import "context"

// Identity is the caller identity resolved by the upstream auth layer and
// propagated through request context. TenantID scopes every deterministic
// identifier and audit entry; UserID is recorded for audit only.
type Identity struct {
	TenantID string
	UserID   string
}

// identityKey is the unexported context key for storing identities.
type identityKey struct{}

// WithIdentity returns a new context carrying the given identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext extracts the caller identity from the context.
// The second return value is false when no identity is stored.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
