package dto

import (
	"github.com/google/uuid"

	"github.com/jsamuelsen11/layerflow/internal/domain"
)

// Document statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusError     = "error"
)

// DocumentResponse is the JSON shape of one processing report.
type DocumentResponse struct {
	TraceID    uuid.UUID       `json:"trace_id"`
	Status     string          `json:"status"`
	Reason     string          `json:"reason,omitempty"`
	Aborted    bool            `json:"aborted"`
	Layers     int             `json:"layers"`
	Stored     int             `json:"stored"`
	RolledBack int             `json:"rolled_back"`
	Timings    TimingsResponse `json:"timings"`
	Outcome    *domain.Outcome `json:"outcome"`
}

// TimingsResponse reports durations in milliseconds.
type TimingsResponse struct {
	DecodeMS  float64 `json:"decode_ms"`
	ProcessMS float64 `json:"process_ms"`
}

// BatchResponse is the JSON shape of a batch run.
type BatchResponse struct {
	Completed int                 `json:"completed"`
	Failed    int                 `json:"failed"`
	Results   []BatchItemResponse `json:"results"`
}

// BatchItemResponse is one document of a batch: either a report or the
// error that prevented processing.
type BatchItemResponse struct {
	Name     string            `json:"name"`
	Status   string            `json:"status"`
	Document *DocumentResponse `json:"document,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// ToDocumentResponse converts a domain report.
func ToDocumentResponse(r *domain.Report) DocumentResponse {
	resp := DocumentResponse{
		TraceID:    r.TraceID,
		Status:     StatusFailed,
		Aborted:    r.Aborted,
		Layers:     r.Layers,
		Stored:     r.Recorded - r.RolledBack,
		RolledBack: r.RolledBack,
		Timings: TimingsResponse{
			DecodeMS:  float64(r.Timings.Decode.Microseconds()) / 1000,
			ProcessMS: float64(r.Timings.Process.Microseconds()) / 1000,
		},
		Outcome: r.Outcome,
	}
	if r.Completed() {
		resp.Status = StatusCompleted
	} else if r.Outcome != nil {
		resp.Reason = r.Outcome.Reason()
	}
	return resp
}

// ToBatchResponse converts batch results, keeping input order.
func ToBatchResponse(items []domain.BatchItem) BatchResponse {
	resp := BatchResponse{Results: make([]BatchItemResponse, 0, len(items))}
	for _, item := range items {
		out := BatchItemResponse{Name: item.Name}
		switch {
		case item.Err != nil:
			out.Status = StatusError
			out.Error = item.Err.Error()
			resp.Failed++
		case item.Report != nil:
			doc := ToDocumentResponse(item.Report)
			out.Status = doc.Status
			out.Document = &doc
			if doc.Status == StatusCompleted {
				resp.Completed++
			} else {
				resp.Failed++
			}
		}
		resp.Results = append(resp.Results, out)
	}
	return resp
}
