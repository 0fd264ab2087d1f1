package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/layerflow/internal/platform/httpclient"
)

// Inbound and outbound identifier headers.
const (
	HeaderRequestID     = httpclient.HeaderRequestID
	HeaderCorrelationID = httpclient.HeaderCorrelationID
)

// maxIDLength bounds client-supplied identifiers. Longer values are replaced.
const maxIDLength = 128

type (
	requestIDKey     struct{}
	correlationIDKey struct{}
)

// RequestIDFromContext returns the request ID set by IDs, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// CorrelationIDFromContext returns the correlation ID set by IDs, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// IDs returns middleware that assigns every request a request ID and a
// correlation ID. A well-formed X-Request-ID header is reused, otherwise a
// random UUID is generated. X-Correlation-ID falls back to the request ID.
// Both are echoed on the response and forwarded on outbound httpclient calls
// made with the request context.
func IDs() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(HeaderRequestID)
			if !validID(reqID) {
				reqID = uuid.NewString()
			}
			corrID := r.Header.Get(HeaderCorrelationID)
			if !validID(corrID) {
				corrID = reqID
			}

			ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
			ctx = context.WithValue(ctx, correlationIDKey{}, corrID)
			ctx = httpclient.WithRequestID(ctx, reqID)
			ctx = httpclient.WithCorrelationID(ctx, corrID)

			w.Header().Set(HeaderRequestID, reqID)
			w.Header().Set(HeaderCorrelationID, corrID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validID accepts non-empty identifiers made of letters, digits and ._:-
// so that client input can be logged and echoed safely.
func validID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	for i := range len(id) {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.', c == '_', c == ':', c == '-':
		default:
			return false
		}
	}
	return true
}
