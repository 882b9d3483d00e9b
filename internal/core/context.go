package core

import "context"

type contextKey string

const ctxKeyPrincipal contextKey = "principal"

// AnonymousPrincipal is recorded as the uploader when no identity is known.
const AnonymousPrincipal = "anonymous"

// ContextWithPrincipal stores the authenticated caller's identifier.
func ContextWithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, principal)
}

// PrincipalFromContext returns the caller's identifier, or AnonymousPrincipal.
func PrincipalFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyPrincipal).(string); ok && v != "" {
		return v
	}
	return AnonymousPrincipal
}
