// Package processor implements the recursive layer-processing engine.
//
// ProcessDocument visits every layer beneath the document root. Each visit
// moves through Pending, Validating, Transforming, Storing and Notifying to
// Completed, or to Failed from one of the first three steps. After a layer's
// own processing succeeds its child layers are visited: children whose
// strategy is independent of their siblings are dispatched to the worker
// pool, the rest run depth-first in document order. Every dispatched child is
// joined before its parent reports.
//
// A layer whose own processing fails under a stop-on-failure strategy aborts
// the run. No new visits start after an abort, in-flight visits finish, and
// once the whole tree has joined every undo recorded in the trace ledger is
// run in reverse order. Failures under continue-on-failure strategies are
// recorded in the outcome tree and processing goes on.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen11/layerflow/internal/app/strategy"
	"github.com/jsamuelsen11/layerflow/internal/app/trace"
	"github.com/jsamuelsen11/layerflow/internal/app/workpool"
	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/domain/document"
	"github.com/jsamuelsen11/layerflow/internal/platform/logging"
	"github.com/jsamuelsen11/layerflow/internal/platform/telemetry"
)

const tracerName = "processor"

// Resolver selects the strategy for a layer.
type Resolver interface {
	ResolveLayer(layer *document.Layer) (*strategy.Strategy, error)
}

var _ Resolver = (*strategy.Resolver)(nil)

// Processor runs documents through their resolved strategies. It holds no
// per-run state and is safe for concurrent use; concurrent runs share the
// worker pool.
type Processor struct {
	resolver Resolver
	pool     *workpool.Pool
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

// New creates a Processor. If metrics is nil, metric recording is skipped.
// A nil logger discards output.
func New(resolver Resolver, pool *workpool.Pool, metrics *telemetry.Metrics, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{
		resolver: resolver,
		pool:     pool,
		metrics:  metrics,
		logger:   logger,
	}
}

// run is the state of one ProcessDocument call.
type run struct {
	*Processor
	tc     *trace.Context
	logger *slog.Logger
}

// ProcessDocument processes doc and blocks until every visit, including all
// concurrently dispatched subtrees, has joined and any rollback has finished.
//
// Cancelling ctx aborts the run the same way a stop-on-failure layer does.
// Rollback itself runs detached from ctx's cancellation so that a deadline
// cannot interrupt compensation.
func (p *Processor) ProcessDocument(ctx context.Context, doc *document.Document) *domain.Report {
	start := time.Now()
	tc := trace.New()

	ctx, span := otel.GetTracerProvider().Tracer(tracerName).Start(ctx, "processor.ProcessDocument",
		oteltrace.WithAttributes(
			attribute.String("layerflow.trace_id", tc.ID().String()),
			attribute.String("layerflow.source", doc.Source),
		),
	)
	defer span.End()

	logger := p.logger.With(slog.String("trace_id", tc.ID().String()))
	ctx = logging.WithLogger(ctx, logger)
	r := &run{Processor: p, tc: tc, logger: logger}

	root := &domain.Outcome{Name: doc.Root.Name(), State: domain.StatePending}
	root.Children = r.visitChildren(ctx, doc.Root, "")
	root.State = aggregate(root.Children)

	// A cancellation that landed after the last visit started still aborts.
	r.stopped(ctx)

	report := &domain.Report{
		TraceID: tc.ID(),
		Outcome: root,
		Layers:  doc.CountLayers(),
		Aborted: tc.Aborted(),
	}

	if report.Aborted {
		undone, err := tc.Rollback(context.WithoutCancel(ctx))
		if err != nil {
			logger.ErrorContext(ctx, "ledger rollback failed",
				slog.String("operation", "processor.ProcessDocument"),
				slog.Any("error", err),
			)
		}
		if p.metrics != nil && undone > 0 {
			p.metrics.RollbackTotal.Add(ctx, int64(undone))
		}
		span.SetStatus(codes.Error, "run aborted")
		span.RecordError(tc.Cause())
	}

	summary := tc.Summary()
	report.Recorded = summary.Recorded
	report.RolledBack = summary.RolledBack
	report.Timings.Process = time.Since(start)

	p.recordDocument(ctx, report)
	r.logReport(ctx, report)
	return report
}

// visitChildren visits every child layer of parent and returns their
// outcomes in document order.
func (r *run) visitChildren(ctx context.Context, parent *document.Layer, parentPath string) []*domain.Outcome {
	children := parent.Children(parentPath)
	if len(children) == 0 {
		return nil
	}

	outcomes := make([]*domain.Outcome, len(children))
	group := r.pool.Group()

	for i, child := range children {
		if r.stopped(ctx) {
			outcomes[i] = aborted(child, "")
			continue
		}

		s, err := r.resolver.ResolveLayer(child.Layer)
		if err != nil {
			r.logger.ErrorContext(ctx, "strategy resolution failed",
				slog.String("operation", "processor.visit"),
				slog.String("path", child.Path),
				slog.Any("error", err),
			)
			r.tc.Abort(err)
			outcomes[i] = aborted(child, "")
			outcomes[i].Err = err
			continue
		}

		if s.IndependentOfChildren {
			group.Go(func() {
				outcomes[i] = r.visit(ctx, child, s)
			})
			continue
		}
		outcomes[i] = r.visit(ctx, child, s)
	}

	group.Wait()
	return outcomes
}

// visit processes one layer and, when its own processing succeeded, its
// subtree.
func (r *run) visit(ctx context.Context, child document.Child, s *strategy.Strategy) *domain.Outcome {
	if r.stopped(ctx) {
		return aborted(child, s.Tag)
	}

	ctx, span := otel.GetTracerProvider().Tracer(tracerName).Start(ctx, "processor.visit",
		oteltrace.WithAttributes(
			attribute.String("layerflow.path", child.Path),
			telemetry.AttrLayerTag.String(s.Tag),
		),
	)
	defer span.End()

	out := &domain.Outcome{
		Path:  child.Path,
		Name:  child.Field,
		Tag:   s.Tag,
		State: domain.StatePending,
	}

	start := time.Now()
	kind, err := r.apply(ctx, child, s, out)
	r.recordVisit(ctx, s.Tag, kind, time.Since(start))

	if err != nil {
		out.State = domain.StateFailed
		out.Kind = kind
		out.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, kind.String())

		r.logger.WarnContext(ctx, "layer failed",
			slog.String("path", child.Path),
			slog.String("tag", s.Tag),
			slog.String("kind", kind.String()),
			slog.Bool("stop_on_failure", s.StopOnFailure),
			slog.Any("error", err),
		)
		if s.StopOnFailure && r.tc.Abort(err) {
			r.logger.WarnContext(ctx, "aborting run",
				slog.String("path", child.Path),
				slog.String("tag", s.Tag),
			)
		}
		return out
	}

	out.Kind = domain.KindSuccess
	out.Children = r.visitChildren(ctx, child.Layer, child.Path)
	out.State = aggregate(out.Children)
	if out.State == domain.StateFailed {
		span.SetStatus(codes.Error, "descendant failed")
	}
	return out
}

// apply runs the layer's own processing: validate, transform, store, notify.
// It advances out.State as it goes and returns the failure kind and error of
// the first step that failed.
func (r *run) apply(ctx context.Context, child document.Child, s *strategy.Strategy, out *domain.Outcome) (domain.Kind, error) {
	path := child.Path

	out.State = domain.StateValidating
	if err := s.Validator.Validate(child.Layer).Err(path); err != nil {
		return domain.KindValidationFailed, err
	}

	out.State = domain.StateTransforming
	transformed, err := s.Transformer.Transform(child.Layer)
	if err != nil {
		var te *domain.TransformError
		if !errors.As(err, &te) {
			err = &domain.TransformError{Path: path, Err: err}
		}
		return domain.KindTransformFailed, err
	}
	transformed.TraceID = r.tc.ID()
	transformed.Path = path
	transformed.Tag = s.Tag
	transformed.Name = child.Field
	child.Layer.Attach(transformed.Fields)

	out.State = domain.StateStoring
	receipt, err := s.Storage.Store(ctx, transformed)
	if err != nil {
		r.compensate(ctx, s, path, receipt)
		var se *domain.StorageError
		if !errors.As(err, &se) {
			err = &domain.StorageError{Path: path, Backend: s.Storage.Name(), Err: err}
		}
		return domain.KindStorageFailed, err
	}
	if err := r.tc.Record(path, removal{storage: s.Storage, receipt: receipt}); err != nil {
		r.compensate(ctx, s, path, receipt)
		return domain.KindStorageFailed, &domain.StorageError{Path: path, Backend: s.Storage.Name(), Err: err}
	}
	out.Receipt = receipt

	out.State = domain.StateNotifying
	event := domain.Event{
		TraceID:    r.tc.ID(),
		Path:       path,
		Tag:        s.Tag,
		Name:       child.Field,
		Fields:     transformed.Fields,
		Receipt:    receipt,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.Notifier.Notify(ctx, event); err != nil {
		r.logger.WarnContext(ctx, "notification failed",
			slog.String("operation", "processor.notify"),
			slog.String("path", path),
			slog.String("tag", s.Tag),
			slog.String("notifier", s.Notifier.Name()),
			slog.Any("error", err),
		)
	}

	r.logger.DebugContext(ctx, "layer stored",
		slog.String("path", path),
		slog.String("tag", s.Tag),
		slog.String("backend", receipt.Backend),
		slog.String("key", receipt.Key),
	)
	return domain.KindSuccess, nil
}

// compensate removes a partially stored record. Nothing is recorded in the
// ledger for it.
func (r *run) compensate(ctx context.Context, s *strategy.Strategy, path string, receipt domain.Receipt) {
	if receipt.IsZero() {
		return
	}
	if err := s.Storage.Remove(context.WithoutCancel(ctx), receipt); err != nil {
		r.logger.ErrorContext(ctx, "compensating remove failed",
			slog.String("operation", "processor.compensate"),
			slog.String("path", path),
			slog.String("backend", receipt.Backend),
			slog.String("key", receipt.Key),
			slog.Any("error", err),
		)
	}
}

// stopped reports whether new visits must not start. A cancelled ctx aborts
// the run.
func (r *run) stopped(ctx context.Context) bool {
	if r.tc.Aborted() {
		return true
	}
	if err := ctx.Err(); err != nil {
		r.tc.Abort(fmt.Errorf("%w: %w", domain.ErrAborted, err))
		return true
	}
	return false
}

func (r *run) logReport(ctx context.Context, report *domain.Report) {
	attrs := []any{
		slog.Int("layers", report.Layers),
		slog.Int("failures", len(report.Outcome.Failures())),
		slog.Int("recorded", report.Recorded),
		slog.Duration("duration", report.Timings.Process),
	}
	switch {
	case report.Aborted:
		attrs = append(attrs,
			slog.Int("rolled_back", report.RolledBack),
			slog.Int("skipped", len(report.Outcome.Skipped())),
			slog.Any("error", r.tc.Cause()),
		)
		r.logger.WarnContext(ctx, "document aborted", attrs...)
	case report.Completed():
		r.logger.InfoContext(ctx, "document processed", attrs...)
	default:
		r.logger.WarnContext(ctx, "document processed with failures", attrs...)
	}
}

// recordVisit records layer visit duration and count metrics. Safe to call
// with nil metrics.
func (p *Processor) recordVisit(ctx context.Context, tag string, kind domain.Kind, elapsed time.Duration) {
	if p.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		telemetry.AttrLayerTag.String(tag),
		telemetry.AttrLayerKind.String(kind.String()),
	)
	p.metrics.LayerVisitDuration.Record(ctx, elapsed.Seconds(), attrs)
	p.metrics.LayerVisitTotal.Add(ctx, 1, attrs)
}

func (p *Processor) recordDocument(ctx context.Context, report *domain.Report) {
	if p.metrics == nil {
		return
	}
	result := "completed"
	switch {
	case report.Aborted:
		result = "aborted"
	case !report.Completed():
		result = "failed"
	}
	p.metrics.DocumentTotal.Add(ctx, 1, metric.WithAttributes(telemetry.AttrResult.String(result)))
}

// aggregate is Completed only when every child completed.
func aggregate(children []*domain.Outcome) domain.State {
	for _, c := range children {
		if !c.Completed() {
			return domain.StateFailed
		}
	}
	return domain.StateCompleted
}

func aborted(child document.Child, tag string) *domain.Outcome {
	return &domain.Outcome{
		Path:  child.Path,
		Name:  child.Field,
		Tag:   tag,
		State: domain.StateFailed,
		Kind:  domain.KindAborted,
		Err:   domain.ErrAborted,
	}
}
