package authz

import "context"

type principalContextKey struct{}

type scopeContextKey struct{}

// ContextWithPrincipal stores the resolved principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}

// ContextWithScope stores the loaded scope chain so the business handler
// can reuse it without a second lookup.
func ContextWithScope(ctx context.Context, chain ScopeChain) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, chain)
}

// ScopeFromContext extracts the scope chain placed by the pipeline.
func ScopeFromContext(ctx context.Context) (ScopeChain, bool) {
	chain, ok := ctx.Value(scopeContextKey{}).(ScopeChain)
	return chain, ok
}
