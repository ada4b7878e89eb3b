package authz

import "context"

type authContextKey struct{}

// WithAuthorization stores the gate outcome in context.
func WithAuthorization(ctx context.Context, auth *Authorization) context.Context {
	return context.WithValue(ctx, authContextKey{}, auth)
}

// FromContext extracts the gate outcome placed by the middleware. It is nil
// on routes that never passed through Require.
func FromContext(ctx context.Context) *Authorization {
	auth, _ := ctx.Value(authContextKey{}).(*Authorization)
	return auth
}
