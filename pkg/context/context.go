// Package context carries request-scoped metadata between the transport
// layers and the code that logs or publishes on their behalf. The request
// id is set once at the edge, by the HTTP middleware or the Kafka
// processor, and read everywhere else.
package context

import "context"

type contextKey string

const requestIDKey = contextKey("request_id")

// SetRequestID returns a context carrying the request id.
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the request id, or "" when none was set.
func GetRequestID(ctx context.Context) string {
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}
