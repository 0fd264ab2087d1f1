package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/jsamuelsen11/layerflow/internal/platform/logging"
)

const redacted = "[REDACTED]"

// RedactHeaders returns headers as a "headers" log group with one attribute
// per header in name order. Headers in logging.SensitiveHeaders are logged as
// [REDACTED]. Repeated values are joined with a comma.
func RedactHeaders(headers http.Header) slog.Attr {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	slices.Sort(names)

	attrs := make([]any, 0, len(names))
	for _, name := range names {
		value := strings.Join(headers[name], ",")
		if logging.SensitiveHeaders[strings.ToLower(name)] {
			value = redacted
		}
		attrs = append(attrs, slog.String(name, value))
	}
	return slog.Group("headers", attrs...)
}
