package logger

import "context"

// requestIDKey is an unexported key type so other packages cannot
// collide with it.
type requestIDKey struct{}

// WithRequestID stores a request ID on the context for correlation
// across log lines and queue messages.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored on the context, or "" when
// none is set.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
