package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/layerflow/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/layerflow/mocks"
)

type checkBody struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessBody struct {
	Status string               `json:"status"`
	Checks map[string]checkBody `json:"checks"`
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	h := handlers.NewHealthHandler(mocks.NewMockHealthRegistry(t))

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health/live", http.NoBody))

	requireStatus(t, rec, http.StatusOK)
	if got := decodeJSON[map[string]string](t, rec)["status"]; got != "ok" {
		t.Errorf("status = %q, want ok", got)
	}
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		results  map[string]error
		wantCode int
		want     readinessBody
	}{
		{
			name:     "no backends",
			results:  map[string]error{},
			wantCode: http.StatusOK,
			want:     readinessBody{Status: "ready", Checks: map[string]checkBody{}},
		},
		{
			name:     "all backends healthy",
			results:  map[string]error{"database": nil, "kv": nil, "mail-relay": nil},
			wantCode: http.StatusOK,
			want: readinessBody{Status: "ready", Checks: map[string]checkBody{
				"database":   {Status: "ok"},
				"kv":         {Status: "ok"},
				"mail-relay": {Status: "ok"},
			}},
		},
		{
			name:     "storage backend down",
			results:  map[string]error{"database": errors.New("connection refused"), "queue": nil},
			wantCode: http.StatusServiceUnavailable,
			want: readinessBody{Status: "not_ready", Checks: map[string]checkBody{
				"database": {Status: "failing", Error: "connection refused"},
				"queue":    {Status: "ok"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			registry := mocks.NewMockHealthRegistry(t)
			registry.EXPECT().CheckAll(mock.Anything).Return(tt.results)

			rec := httptest.NewRecorder()
			handlers.NewHealthHandler(registry).Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", http.NoBody))

			requireStatus(t, rec, tt.wantCode)
			if diff := cmp.Diff(tt.want, decodeJSON[readinessBody](t, rec)); diff != "" {
				t.Errorf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadiness_ProbeHasDeadline(t *testing.T) {
	t.Parallel()

	const timeout = 150 * time.Millisecond

	registry := mocks.NewMockHealthRegistry(t)
	registry.EXPECT().CheckAll(mock.Anything).
		RunAndReturn(func(ctx context.Context) map[string]error {
			deadline, ok := ctx.Deadline()
			if !ok {
				t.Error("CheckAll context has no deadline")
			} else if remaining := time.Until(deadline); remaining > timeout {
				t.Errorf("probe deadline %v away, want at most %v", remaining, timeout)
			}
			<-ctx.Done()
			return map[string]error{"object-store": ctx.Err()}
		})

	h := handlers.NewHealthHandler(registry, handlers.WithReadinessTimeout(timeout))

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", http.NoBody))

	requireStatus(t, rec, http.StatusServiceUnavailable)
	body := decodeJSON[readinessBody](t, rec)
	if got := body.Checks["object-store"]; got.Status != "failing" || got.Error != context.DeadlineExceeded.Error() {
		t.Errorf("object-store check = %+v, want failing with deadline error", got)
	}
}
