package mailrelay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sony/gobreaker/v2"

	"github.com/jsamuelsen11/layerflow/internal/domain"
)

func relayResponse(status int, contentType, body string) *http.Response {
	h := http.Header{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &http.Response{StatusCode: status, Header: h, Body: io.NopCloser(strings.NewReader(body))}
}

func TestStatusError(t *testing.T) {
	t.Parallel()

	const problem = "application/problem+json; charset=utf-8"
	sentinels := []error{domain.ErrNotFound, domain.ErrValidation, domain.ErrUnavailable}

	tests := []struct {
		name       string
		resp       *http.Response
		wantIs     error
		wantSubstr string
	}{
		{name: "404", resp: relayResponse(http.StatusNotFound, "", ""), wantIs: domain.ErrNotFound},
		{name: "400 without field errors", resp: relayResponse(http.StatusBadRequest, "", ""), wantIs: domain.ErrValidation},
		{name: "422 without field errors", resp: relayResponse(http.StatusUnprocessableEntity, "", ""), wantIs: domain.ErrValidation},
		{
			name:       "401 is a credential problem",
			resp:       relayResponse(http.StatusUnauthorized, "", ""),
			wantIs:     domain.ErrUnavailable,
			wantSubstr: "rejected credentials",
		},
		{name: "403", resp: relayResponse(http.StatusForbidden, "", ""), wantIs: domain.ErrUnavailable},
		{name: "429", resp: relayResponse(http.StatusTooManyRequests, "", ""), wantIs: domain.ErrUnavailable},
		{name: "500", resp: relayResponse(http.StatusInternalServerError, "", ""), wantIs: domain.ErrUnavailable},
		{
			name:       "detail taken from problem body",
			resp:       relayResponse(http.StatusServiceUnavailable, problem, `{"status":503,"detail":"smtp upstream down"}`),
			wantIs:     domain.ErrUnavailable,
			wantSubstr: "smtp upstream down",
		},
		{
			name:       "plain body falls back to status text",
			resp:       relayResponse(http.StatusServiceUnavailable, "text/plain", `{"detail":"ignored"}`),
			wantIs:     domain.ErrUnavailable,
			wantSubstr: "Service Unavailable",
		},
		{
			name:       "malformed problem falls back to status text",
			resp:       relayResponse(http.StatusBadGateway, problem, `{"detail":`),
			wantIs:     domain.ErrUnavailable,
			wantSubstr: "Bad Gateway",
		},
		{
			name:       "unmapped status is unclassified",
			resp:       relayResponse(http.StatusConflict, "", ""),
			wantSubstr: "unexpected status 409",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := statusError(tt.resp)
			for _, s := range sentinels {
				if errors.Is(got, s) != (s == tt.wantIs) {
					t.Errorf("errors.Is(%v, %v) = %v", got, s, !(s == tt.wantIs))
				}
			}
			if !strings.Contains(got.Error(), tt.wantSubstr) {
				t.Errorf("error = %q, want substring %q", got.Error(), tt.wantSubstr)
			}
		})
	}
}

func TestStatusError_FieldErrors(t *testing.T) {
	t.Parallel()

	resp := relayResponse(http.StatusUnprocessableEntity, "application/problem+json", `{
		"detail": "message rejected",
		"errors": [
			{"location": "body.to[0]", "message": "is not a valid address"},
			{"location": "subject", "message": "is too long"}
		]
	}`)

	var verr *domain.ValidationError
	if err := statusError(resp); !errors.As(err, &verr) {
		t.Fatalf("statusError() = %v, want *domain.ValidationError", err)
	}

	want := &domain.ValidationError{
		Path: "mail",
		Violations: []domain.Violation{
			{Field: "to[0]", Rule: "relay", Message: "is not a valid address"},
			{Field: "subject", Rule: "relay", Message: "is too long"},
		},
	}
	if diff := cmp.Diff(want, verr); diff != "" {
		t.Errorf("validation error mismatch (-want +got):\n%s", diff)
	}
}

func TestTransportError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cause error
	}{
		{name: "breaker open", cause: gobreaker.ErrOpenState},
		{name: "caller canceled", cause: context.Canceled},
		{name: "connection refused", cause: errors.New("dial tcp 127.0.0.1:8025: connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := transportError(tt.cause)
			if !errors.Is(got, domain.ErrUnavailable) || !errors.Is(got, tt.cause) {
				t.Errorf("transportError() = %v, want ErrUnavailable wrapping %v", got, tt.cause)
			}
			if !strings.HasPrefix(got.Error(), ServiceName+": ") {
				t.Errorf("error = %q, want %s prefix", got.Error(), ServiceName)
			}
		})
	}
}
