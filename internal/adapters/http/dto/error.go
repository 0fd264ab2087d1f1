// Package dto holds the wire shapes of the HTTP API: problem details for
// errors, the batch request body and the document report responses.
package dto

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/platform/logging"
)

// ProblemContentType is the media type of every error body.
const ProblemContentType = "application/problem+json"

// ErrorResponse is an RFC 9457 problem details body.
type ErrorResponse struct {
	Type     string        `json:"type"`
	Title    string        `json:"title"`
	Status   int           `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Instance string        `json:"instance,omitempty"`
	Errors   []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail locates one violation, e.g. "body.documents[2]".
type ErrorDetail struct {
	Location string `json:"location"`
	Rule     string `json:"rule,omitempty"`
	Message  string `json:"message"`
}

// NewProblem returns a problem for status with the request path as its
// instance.
func NewProblem(r *http.Request, status int, detail string) ErrorResponse {
	return ErrorResponse{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}
}

// NewErrorResponse maps err to a problem. Server-side failures carry no
// detail so internal messages are not exposed to callers.
func NewErrorResponse(r *http.Request, err error) ErrorResponse {
	status := statusFor(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = ""
	}

	p := NewProblem(r, status, detail)
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		p.Errors = violationsToDetails(verr)
	}
	return p
}

// WriteErrorResponse writes the problem for err.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	WriteProblem(w, r, NewErrorResponse(r, err))
}

// WriteProblem writes p with its own status code.
func WriteProblem(w http.ResponseWriter, r *http.Request, p ErrorResponse) {
	w.Header().Set("Content-Type", ProblemContentType)
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "failed to encode problem",
			slog.Int("status", p.Status),
			slog.Any("error", err),
		)
	}
}

// statusFor maps request-level failures to HTTP status codes. Per-layer
// validation never reaches here; it is part of a report.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrDecode), errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func violationsToDetails(verr *domain.ValidationError) []ErrorDetail {
	details := make([]ErrorDetail, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		loc := v.Field
		if verr.Path != "" {
			loc = verr.Path + "." + v.Field
		}
		details = append(details, ErrorDetail{Location: loc, Rule: v.Rule, Message: v.Message})
	}
	return details
}
