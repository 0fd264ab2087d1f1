package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/layerflow/internal/adapters/decode"
	"github.com/jsamuelsen11/layerflow/internal/adapters/http/dto"
	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/platform/logging"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// DefaultMaxBodyBytes is used when the handler is built with a non-positive
// body limit.
const DefaultMaxBodyBytes = 1 << 20

// DocumentHandler handles document ingestion endpoints.
type DocumentHandler struct {
	svc      ports.DocumentService
	maxBytes int64
}

// NewDocumentHandler creates a DocumentHandler. Request bodies larger than
// maxBytes are rejected.
func NewDocumentHandler(svc ports.DocumentService, maxBytes int64) *DocumentHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return &DocumentHandler{svc: svc, maxBytes: maxBytes}
}

// Ingest handles POST /api/v1/documents. The body is the document itself;
// its format comes from ?format=, then the Content-Type, then detection.
// Responds 200 when every layer completed and 422 with the same report
// shape when any layer failed.
func (h *DocumentHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r, h.maxBytes)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = decode.FromContentType(r.Header.Get("Content-Type"))
	}
	raw := domain.RawDocument{
		Name:   r.URL.Query().Get("name"),
		Format: format,
		Data:   data,
	}

	report, err := h.svc.Ingest(r.Context(), raw)
	if err != nil {
		logging.FromContext(r.Context()).WarnContext(r.Context(), "document rejected",
			slog.String("operation", "handlers.ingest"),
			slog.Any("error", err),
		)
		dto.WriteErrorResponse(w, r, err)
		return
	}

	status := http.StatusOK
	if !report.Completed() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, r, status, dto.ToDocumentResponse(report))
}

// IngestBatch handles POST /api/v1/documents/batch. Each document gets its
// own trace; one failing document does not affect the others. Responds 200
// with per-document results in request order.
func (h *DocumentHandler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchRequest
	if !decodeAndValidate(w, r, &req, h.maxBytes) {
		return
	}

	items := h.svc.IngestBatch(r.Context(), req.Raw())
	writeJSON(w, r, http.StatusOK, dto.ToBatchResponse(items))
}
