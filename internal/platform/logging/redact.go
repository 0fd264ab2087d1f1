package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// SensitiveHeaders lists, in lowercase, the HTTP headers that carry
// credentials. The HTTP middleware redacts the same set when it logs request
// headers.
var SensitiveHeaders = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"x-api-key":           true,
	"cookie":              true,
	"set-cookie":          true,
}

// sensitiveFields are attribute names whose values are never logged. The
// document fields match what the metadata strategy forbids in documents.
var sensitiveFields = []string{
	"password",
	"secret",
	"token",
	"dsn",
	"secret_access_key",
	"ssn",
}

var (
	bearerPattern = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]+=*`)
	// Three base64url segments of 10+ characters, so version strings pass.
	jwtPattern = regexp.MustCompile(`[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}`)
	// user:password@ inside postgres://, redis:// and similar URLs.
	urlCredentialPattern = regexp.MustCompile(`[a-z][a-z0-9+.\-]*://[^:/@\s]*:[^@\s]+@`)
	apiKeyInlinePattern  = regexp.MustCompile(`(?i)(api[_\-]?key|apikey)\s*[:=]\s*\S+`)
)

// redactAttr returns the masq ReplaceAttr hook installed on every handler.
func redactAttr() func([]string, slog.Attr) slog.Attr {
	opts := make([]masq.Option, 0, len(SensitiveHeaders)+len(sensitiveFields)+6)
	for name := range SensitiveHeaders {
		opts = append(opts, masq.WithFieldName(name))
	}
	for _, name := range sensitiveFields {
		opts = append(opts, masq.WithFieldName(name))
	}
	opts = append(opts,
		masq.WithFieldPrefix("secret_"),
		masq.WithFieldPrefix("api_key"),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(jwtPattern),
		masq.WithRegex(urlCredentialPattern),
		masq.WithRegex(apiKeyInlinePattern),
	)
	return masq.New(opts...)
}
