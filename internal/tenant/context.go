package tenant

import (
	"context"

	"github.com/rosterdesk/platform/internal/domain"
)

type contextKey string

const (
	scopeKey    contextKey = "tenant_scope"
	resolverKey contextKey = "tenant_resolver"
)

// WithScope stores the resolved scope on ctx.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey, s)
}

// FromContext returns the scope placed on ctx, if any.
func FromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeKey).(*Scope)
	return s, ok && s != nil
}

// RoleFromContext returns the caller's organization role.
func RoleFromContext(ctx context.Context) (domain.Role, bool) {
	s, ok := FromContext(ctx)
	if !ok {
		return "", false
	}
	return s.Role, true
}

// WithResolver stores the request's resolver so handlers can refresh it.
func WithResolver(ctx context.Context, r *Resolver) context.Context {
	return context.WithValue(ctx, resolverKey, r)
}

// ResolverFromContext returns the resolver placed on ctx, if any.
func ResolverFromContext(ctx context.Context) (*Resolver, bool) {
	r, ok := ctx.Value(resolverKey).(*Resolver)
	return r, ok && r != nil
}
