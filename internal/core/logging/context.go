package logging

import (
	"context"

	"github.com/hay-kot/kpi/pkg/httpclient"
)

// The keys live in pkg/httpclient so the same values tag log events and
// outgoing requests.

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return httpclient.WithRequestID(ctx, requestID)
}

// WithUser adds the acting username to the context.
func WithUser(ctx context.Context, username string) context.Context {
	return httpclient.WithUser(ctx, username)
}

// GetRequestID retrieves the request ID from the context.
// Returns empty string if not present.
func GetRequestID(ctx context.Context) string {
	id, _ := httpclient.RequestID(ctx)
	return id
}

// GetUser retrieves the acting username from the context.
// Returns empty string if not present.
func GetUser(ctx context.Context) string {
	u, _ := httpclient.User(ctx)
	return u
}
