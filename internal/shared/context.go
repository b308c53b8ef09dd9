package shared

import "context"

// Identity carries the authenticated user through a request context.
type Identity struct {
	UserID  int64
	Email   string
	IsAdmin bool
}

type contextKey string

const identityKey contextKey = "docket.identity"

// ContextWithIdentity attaches the authenticated identity to the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext extracts the identity set by the auth middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
