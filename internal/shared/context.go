package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession attaches the loaded session so downstream handlers and
// the authorization gate can reach it without another Redis round trip.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the session placed by the middleware, or nil
// when the request never passed through it.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
