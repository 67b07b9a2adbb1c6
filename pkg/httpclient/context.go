package httpclient

import "context"

type contextKey string

const (
	contextKeyRequestID contextKey = "request_id"
	contextKeyUser      contextKey = "user"
)

// WithRequestID stores a request id that outgoing requests propagate instead
// of generating a fresh one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

// RequestID returns the request id stored in ctx.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKeyRequestID).(string)
	return id, ok && id != ""
}

// WithUser stores the acting username, sent as X-User.
func WithUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, contextKeyUser, username)
}

// User returns the acting username stored in ctx.
func User(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(contextKeyUser).(string)
	return u, ok && u != ""
}
