package shared

import "context"

// RoleAdmin is the only privileged role the service knows about.
const RoleAdmin = "admin"

// Principal is an authenticated identity resolved from a verified token.
type Principal struct {
	ID       int64
	Username string
	Role     string
}

// IsAdmin reports whether the principal carries the administrator role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context for the request lifetime.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
