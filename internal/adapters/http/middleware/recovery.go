package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/jsamuelsen11/layerflow/internal/adapters/http/dto"
)

// Recovery returns middleware that turns a handler panic into a logged stack
// trace and an RFC 9457 500 response. Nothing is written when the handler
// already started its response. http.ErrAbortHandler is re-raised so the
// server aborts the connection as the handler asked.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newResponseWriter(w)

			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}

				logger.ErrorContext(r.Context(), "panic recovered",
					slog.String("operation", "middleware.Recovery"),
					slog.String("panic", fmt.Sprint(v)),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", RequestIDFromContext(r.Context())),
				)
				if !rw.headerWritten {
					dto.WriteProblem(rw, r, dto.NewProblem(r, http.StatusInternalServerError, "internal server error"))
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
