// Package trace provides the per-run Trace Context threaded through layer
// processing.
//
// A Context carries the run's trace identifier and an append-only undo
// ledger. Layer visits that run concurrently append to the same ledger; every
// append is linearized under one mutex so the ledger order is the order in
// which forward operations finished.
//
//	tc := trace.New()
//	_ = tc.Record("address", undo)   // after a successful store
//	...
//	if tc.Aborted() {
//		tc.Rollback(ctx)             // reverse order, each entry once
//	}
//
// The Context is passed explicitly to every recursive visit; it is never
// stored in a context.Context or in package state.
package trace

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/platform/logging"
)

// ErrRolledBack is returned when Record or Rollback is called on a Context
// whose ledger has already been rolled back.
var ErrRolledBack = errors.New("trace: ledger already rolled back")

// ErrNilUndo is returned when a nil Undo is passed to Record.
var ErrNilUndo = errors.New("trace: nil undo")

// Entry is a read-only view of one ledger record.
type Entry struct {
	Seq         int
	Path        string
	Description string
	RecordedAt  time.Time
	Undone      bool
}

type ledgerEntry struct {
	seq        int
	path       string
	undo       domain.Undo
	recordedAt time.Time
	once       sync.Once
	undone     atomic.Bool
}

// Context is the shared state of one processing run.
type Context struct {
	id uuid.UUID

	mu         sync.Mutex
	entries    []*ledgerEntry
	rolledBack bool

	aborted atomic.Bool
	cause   *SafeRef[error]
}

// New creates a Context with a fresh random trace identifier.
func New() *Context {
	return NewWithID(uuid.New())
}

// NewWithID creates a Context with the given trace identifier.
func NewWithID(id uuid.UUID) *Context {
	return &Context{id: id, cause: NewRef[error](nil)}
}

// ID returns the trace identifier. It never changes for the Context's
// lifetime.
func (c *Context) ID() uuid.UUID { return c.id }

// Record appends a compensating action for the forward operation that just
// completed at path.
func (c *Context) Record(path string, undo domain.Undo) error {
	if undo == nil {
		return ErrNilUndo
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rolledBack {
		return ErrRolledBack
	}
	c.entries = append(c.entries, &ledgerEntry{
		seq:        len(c.entries) + 1,
		path:       path,
		undo:       undo,
		recordedAt: time.Now(),
	})
	return nil
}

// Len returns the number of ledger entries.
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Entries returns a snapshot of the ledger in registration order.
func (c *Context) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, Entry{
			Seq:         e.seq,
			Path:        e.path,
			Description: e.undo.Description(),
			RecordedAt:  e.recordedAt,
			Undone:      e.undone.Load(),
		})
	}
	return out
}

// Summary is an audit view of the ledger at the end of a run.
type Summary struct {
	Recorded   int
	RolledBack int
}

// Summary counts recorded and successfully undone entries.
func (c *Context) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Summary{Recorded: len(c.entries)}
	for _, e := range c.entries {
		if e.undone.Load() {
			s.RolledBack++
		}
	}
	return s
}

// Abort marks the run as aborted. The first cause wins; Abort reports
// whether this call was the one that aborted the run.
func (c *Context) Abort(cause error) bool {
	if !c.aborted.CompareAndSwap(false, true) {
		return false
	}
	c.cause.Set(cause)
	return true
}

// Aborted reports whether the run has been aborted. Visits check it before
// starting so that no new work begins after an abort.
func (c *Context) Aborted() bool {
	return c.aborted.Load()
}

// Cause returns the error passed to the first Abort call, or nil.
func (c *Context) Cause() error {
	return c.cause.Get()
}

// Rollback invokes every recorded undo action in reverse registration order.
// Each entry is undone at most once. Undo errors are logged at ERROR level and
// do not stop the rollback of remaining entries. Rollback returns the number
// of entries it undid successfully.
//
// After Rollback the ledger is sealed: later Record calls return
// ErrRolledBack. Returns ErrRolledBack if called more than once.
func (c *Context) Rollback(ctx context.Context) (int, error) {
	c.mu.Lock()
	if c.rolledBack {
		c.mu.Unlock()
		return 0, ErrRolledBack
	}
	c.rolledBack = true
	// Snapshot under lock. Once rolledBack=true no goroutine can append,
	// so iterating the snapshot without the lock is safe.
	entries := c.entries
	c.mu.Unlock()

	logger := logging.FromContext(ctx)
	undone := 0

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		e.once.Do(func() {
			logger.InfoContext(ctx, "rolling back action",
				slog.String("operation", "trace.Rollback"),
				slog.String("trace_id", c.id.String()),
				slog.Int("step", e.seq),
				slog.String("path", e.path),
				slog.String("action", e.undo.Description()),
			)

			if err := e.undo.Undo(ctx); err != nil {
				logger.ErrorContext(ctx, "rollback failed",
					slog.String("operation", "trace.Rollback"),
					slog.String("trace_id", c.id.String()),
					slog.Int("step", e.seq),
					slog.String("path", e.path),
					slog.String("action", e.undo.Description()),
					slog.Any("error", err),
				)
				return
			}
			e.undone.Store(true)
			undone++
		})
	}

	return undone, nil
}
