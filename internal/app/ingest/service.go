// Package ingest provides the document ingestion service: the orchestrator
// that decodes raw input, runs it through the processor and reports the
// outcome. It implements ports.DocumentService for the HTTP handlers and the
// ingest command.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/jsamuelsen11/layerflow/internal/app/workpool"
	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/domain/document"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// Compile-time check that Service implements ports.DocumentService.
var _ ports.DocumentService = (*Service)(nil)

// Processor runs a decoded document through its strategies.
type Processor interface {
	ProcessDocument(ctx context.Context, doc *document.Document) *domain.Report
}

// Options tunes a Service.
type Options struct {
	// Timeout bounds one document's processing. Zero means no deadline.
	Timeout time.Duration
	// BatchConcurrency bounds how many documents of a batch run at once.
	BatchConcurrency int
}

// Service implements ports.DocumentService. It owns the deadline around a
// run and the decode step; every per-layer decision belongs to the processor.
type Service struct {
	decoder   ports.Decoder
	processor Processor
	opts      Options
	logger    *slog.Logger
}

// NewService creates a Service. A nil logger discards output.
func NewService(decoder ports.Decoder, processor Processor, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.BatchConcurrency < 1 {
		opts.BatchConcurrency = 1
	}
	return &Service{
		decoder:   decoder,
		processor: processor,
		opts:      opts,
		logger:    logger,
	}
}

// Ingest decodes raw and processes the document. Layer failures are reported
// in the Report; the error is non-nil only when raw cannot be decoded.
func (s *Service) Ingest(ctx context.Context, raw domain.RawDocument) (*domain.Report, error) {
	s.logger.InfoContext(ctx, "ingesting document",
		slog.String("name", raw.Name),
		slog.String("format", raw.Format),
		slog.Int("bytes", len(raw.Data)),
	)

	start := time.Now()
	doc, err := s.decoder.Decode(raw)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to decode document",
			slog.String("operation", "Ingest"),
			slog.String("name", raw.Name),
			slog.Any("error", err),
		)
		return nil, err
	}
	decoded := time.Since(start)

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	report := s.processor.ProcessDocument(ctx, doc)
	report.Timings.Decode = decoded

	if !report.Completed() {
		failure := report.Outcome.Failure()
		attrs := []any{
			slog.String("name", raw.Name),
			slog.String("trace_id", report.TraceID.String()),
			slog.Bool("aborted", report.Aborted),
			slog.Int("failures", len(report.Outcome.Failures())),
		}
		if failure != nil {
			attrs = append(attrs, slog.String("path", failure.Path), slog.Any("error", failure.Err))
		}
		s.logger.WarnContext(ctx, "document not completed", attrs...)
	}

	return report, nil
}

// IngestBatch ingests raws concurrently, bounded by Options.BatchConcurrency.
// Items are returned in input order.
func (s *Service) IngestBatch(ctx context.Context, raws []domain.RawDocument) []domain.BatchItem {
	s.logger.InfoContext(ctx, "ingesting batch", slog.Int("documents", len(raws)))

	results := workpool.Map(ctx, s.opts.BatchConcurrency, raws, s.Ingest)

	items := make([]domain.BatchItem, len(raws))
	for i, r := range results {
		items[i] = domain.BatchItem{Name: raws[i].Name, Report: r.Value, Err: r.Err}
	}
	return items
}
