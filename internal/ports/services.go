package ports

import (
	"context"

	"github.com/jsamuelsen11/layerflow/internal/domain"
)

// DocumentService defines the service port for document ingestion.
// Implemented by the application layer; called by the HTTP handlers and the
// ingest command.
type DocumentService interface {
	// Ingest decodes raw in the given format and processes the resulting
	// document. A per-layer failure is reported inside the returned Report,
	// not as an error. Returns a *domain.DecodeError when raw cannot be
	// decoded.
	Ingest(ctx context.Context, raw domain.RawDocument) (*domain.Report, error)

	// IngestBatch ingests several documents concurrently, each with its own
	// trace. Results are returned in input order.
	IngestBatch(ctx context.Context, raws []domain.RawDocument) []domain.BatchItem
}
