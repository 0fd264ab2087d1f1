package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/layerflow/internal/adapters/http/middleware"
)

func TestIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		reqHeader   string
		corrHeader  string
		wantReqID   string // empty means a generated UUID
		wantCorrReq bool   // correlation ID falls back to the request ID
		wantCorrID  string
	}{
		{
			name:        "generates both",
			wantCorrReq: true,
		},
		{
			name:        "reuses request ID",
			reqHeader:   "batch-7.ingest:01",
			wantReqID:   "batch-7.ingest:01",
			wantCorrReq: true,
		},
		{
			name:       "reuses correlation ID",
			reqHeader:  "req-1",
			corrHeader: "corr-abc",
			wantReqID:  "req-1",
			wantCorrID: "corr-abc",
		},
		{
			name:        "replaces request ID with unsafe characters",
			reqHeader:   "abc\r\ninjected: 1",
			wantCorrReq: true,
		},
		{
			name:        "replaces oversized request ID",
			reqHeader:   strings.Repeat("a", 129),
			wantCorrReq: true,
		},
		{
			name:        "ignores malformed correlation ID",
			reqHeader:   "req-2",
			corrHeader:  "bad id",
			wantReqID:   "req-2",
			wantCorrReq: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotReq, gotCorr string
			handler := middleware.IDs()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				gotReq = middleware.RequestIDFromContext(r.Context())
				gotCorr = middleware.CorrelationIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodPost, "/v1/documents", http.NoBody)
			if tt.reqHeader != "" {
				req.Header.Set(middleware.HeaderRequestID, tt.reqHeader)
			}
			if tt.corrHeader != "" {
				req.Header.Set(middleware.HeaderCorrelationID, tt.corrHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if tt.wantReqID == "" {
				if _, err := uuid.Parse(gotReq); err != nil {
					t.Errorf("request ID %q is not a UUID: %v", gotReq, err)
				}
			} else if gotReq != tt.wantReqID {
				t.Errorf("request ID = %q, want %q", gotReq, tt.wantReqID)
			}

			wantCorr := tt.wantCorrID
			if tt.wantCorrReq {
				wantCorr = gotReq
			}
			if gotCorr != wantCorr {
				t.Errorf("correlation ID = %q, want %q", gotCorr, wantCorr)
			}

			if got := rec.Header().Get(middleware.HeaderRequestID); got != gotReq {
				t.Errorf("response %s = %q, want %q", middleware.HeaderRequestID, got, gotReq)
			}
			if got := rec.Header().Get(middleware.HeaderCorrelationID); got != gotCorr {
				t.Errorf("response %s = %q, want %q", middleware.HeaderCorrelationID, got, gotCorr)
			}
		})
	}
}

func TestIDs_UniquePerRequest(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	handler := middleware.IDs()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen[middleware.RequestIDFromContext(r.Context())] = true
	}))

	for range 50 {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	}
	if len(seen) != 50 {
		t.Errorf("unique IDs = %d, want 50", len(seen))
	}
}

func TestIDsFromContext_Empty(t *testing.T) {
	t.Parallel()

	if got := middleware.RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext = %q, want empty", got)
	}
	if got := middleware.CorrelationIDFromContext(context.Background()); got != "" {
		t.Errorf("CorrelationIDFromContext = %q, want empty", got)
	}
}
