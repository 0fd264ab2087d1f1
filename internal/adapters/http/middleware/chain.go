// Package middleware holds the inbound HTTP middleware of the ingestion API.
//
// Standard assembles them in this order:
//
//	Recovery → IDs → OpenTelemetry → Logging → Timeout → Handler
//
// Each middleware is a func(http.Handler) http.Handler and can be composed
// with Chain.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jsamuelsen11/layerflow/internal/platform/telemetry"
)

// Chain composes middleware so that the first argument is the outermost:
//
//	Chain(Recovery, IDs, Logging)(handler) == Recovery(IDs(Logging(handler)))
func Chain(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(handler http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			handler = middlewares[i](handler)
		}
		return handler
	}
}

// Standard returns the middleware stack the server mounts on its router.
// metrics may be nil. A non-positive timeout disables the request deadline.
func Standard(logger *slog.Logger, metrics *telemetry.Metrics, timeout time.Duration) []func(http.Handler) http.Handler {
	mws := []func(http.Handler) http.Handler{
		Recovery(logger),
		IDs(),
		OpenTelemetry(metrics),
		Logging(logger),
	}
	if timeout > 0 {
		mws = append(mws, Timeout(timeout))
	}
	return mws
}

// responseWriter records the status and size of a response for the
// middleware that report on it.
type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
	written       int64
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.headerWritten {
		return
	}
	rw.statusCode = code
	rw.headerWritten = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.headerWritten = true
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
