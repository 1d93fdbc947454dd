package auth

import "context"

type contextKey struct{}

// Context carries the authenticated user for a request. It is constructed
// once by the auth middleware and passed down through context.Context; no
// package holds a process-wide current user.
type Context struct {
	UserID    int64
	SessionID int64
}

func WithAuth(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (Context, bool) {
	ac, ok := ctx.Value(contextKey{}).(Context)
	return ac, ok
}

// UserID returns the authenticated user id, or 0 if the context carries none.
func UserID(ctx context.Context) int64 {
	ac, ok := FromContext(ctx)
	if !ok {
		return 0
	}
	return ac.UserID
}
