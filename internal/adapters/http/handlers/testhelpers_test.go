package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/layerflow/internal/domain"
)

var testTraceID = uuid.MustParse("5e1f2d3c-4b5a-4968-8776-a5b4c3d2e1f0")

func completedReport() *domain.Report {
	return &domain.Report{
		TraceID: testTraceID,
		Outcome: &domain.Outcome{
			State: domain.StateCompleted,
			Children: []*domain.Outcome{{
				Path:    "address",
				Tag:     "address/street",
				State:   domain.StateCompleted,
				Receipt: domain.Receipt{Backend: "memory", Key: testTraceID.String() + "/address"},
			}},
		},
		Layers:   1,
		Recorded: 1,
	}
}

func failedReport() *domain.Report {
	return &domain.Report{
		TraceID: testTraceID,
		Outcome: &domain.Outcome{
			State: domain.StateFailed,
			Children: []*domain.Outcome{{
				Path:  "transaction",
				Tag:   "transaction",
				State: domain.StateFailed,
				Kind:  domain.KindValidationFailed,
				Err:   errors.New(`validation error at "transaction": amount: must be >= 0`),
			}},
		},
		Layers:  1,
		Aborted: true,
	}
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var result T
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	return result
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}
