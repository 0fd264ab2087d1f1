package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/layerflow/internal/adapters/http/dto"
	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/platform/logging"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).ErrorContext(r.Context(), "failed to encode response",
			slog.Int("status", status),
			slog.Any("error", err),
		)
	}
}

// readBody reads at most maxBytes of the request body. When the limit is
// exceeded it writes a 413 problem and returns false.
func readBody(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err == nil {
		return data, true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		dto.WriteProblem(w, r, dto.NewProblem(r, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)))
		return nil, false
	}
	dto.WriteErrorResponse(w, r, err)
	return nil, false
}

// validatable is implemented by request bodies that check themselves.
type validatable interface {
	Validate() error
}

// decodeAndValidate reads a single JSON value into dst and validates it,
// writing the problem response and returning false on any failure.
func decodeAndValidate[T validatable](w http.ResponseWriter, r *http.Request, dst T, maxBytes int64) bool {
	data, ok := readBody(w, r, maxBytes)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		dto.WriteErrorResponse(w, r, &domain.ValidationError{
			Path:       "body",
			Violations: []domain.Violation{{Field: "body", Rule: "json", Message: jsonProblem(err)}},
		})
		return false
	}
	if err := dst.Validate(); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return false
	}
	return true
}

// jsonProblem describes a decode failure without echoing the body.
func jsonProblem(err error) string {
	var syntax *json.SyntaxError
	var typ *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntax):
		return fmt.Sprintf("invalid JSON at offset %d", syntax.Offset)
	case errors.As(err, &typ):
		return fmt.Sprintf("%s must be %s", typ.Field, typ.Type)
	default:
		return "invalid JSON"
	}
}
