package httpclient

import (
	"context"
	"net/http"
)

// Headers forwarded from the inbound request to every outbound call.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

type forwardKey struct{}

// forwarded holds the inbound IDs to repeat downstream. It is copied on
// write so contexts never share a mutable value.
type forwarded struct {
	requestID     string
	correlationID string
}

func forwardedFrom(ctx context.Context) forwarded {
	f, _ := ctx.Value(forwardKey{}).(forwarded)
	return f
}

// WithRequestID returns a context whose outbound calls carry id as
// X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	f := forwardedFrom(ctx)
	f.requestID = id
	return context.WithValue(ctx, forwardKey{}, f)
}

// WithCorrelationID returns a context whose outbound calls carry id as
// X-Correlation-ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	f := forwardedFrom(ctx)
	f.correlationID = id
	return context.WithValue(ctx, forwardKey{}, f)
}

func (f forwarded) apply(h http.Header) {
	if f.requestID != "" {
		h.Set(HeaderRequestID, f.requestID)
	}
	if f.correlationID != "" {
		h.Set(HeaderCorrelationID, f.correlationID)
	}
}
