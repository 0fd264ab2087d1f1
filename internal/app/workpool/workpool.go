// Package workpool provides the bounded concurrency used by layer processing
// and batch ingestion.
//
// Pool is a fixed number of worker slots shared by every concurrent child
// visit of a run. Dispatch never blocks waiting for a slot: when the pool is
// saturated the work runs inline on the caller's goroutine. Recursive visits
// that join their own children therefore cannot deadlock the pool.
//
// Map is an order-preserving, bounded fan-out over a slice, used to ingest
// several documents at once.
package workpool

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of goroutines running dispatched work.
type Pool struct {
	sem *semaphore.Weighted
}

// New creates a Pool with size worker slots. size < 1 is treated as 1.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Group returns a new join handle bound to p.
func (p *Pool) Group() *Group {
	return &Group{pool: p}
}

// Group tracks work dispatched to a Pool so that it can be joined. A Group
// must be joined with Wait before its owner reports completion.
type Group struct {
	pool *Pool
	wg   sync.WaitGroup
}

// Go dispatches fn. If a worker slot is free fn runs on a new goroutine;
// otherwise it runs inline before Go returns. Go reports whether fn was run
// concurrently.
func (g *Group) Go(fn func()) bool {
	if !g.pool.sem.TryAcquire(1) {
		fn()
		return false
	}
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.pool.sem.Release(1)
		fn()
	}()
	return true
}

// Wait blocks until every goroutine started by Go has returned.
func (g *Group) Wait() {
	g.wg.Wait()
}

// Result holds the outcome of processing a single item.
// Either Value is populated (on success) or Err is non-nil (on failure).
type Result[R any] struct {
	Value R
	Err   error
}

// Map executes fn for each item using at most limit concurrent goroutines.
// Results are returned in the same order as the input items. A failing item
// does not cancel the others.
//
// If ctx is canceled before an item starts, that item records ctx.Err() and
// fn is not called for it. Items already running complete normally.
//
// Map blocks until all items complete. If items is empty, it returns an empty
// non-nil slice immediately. limit < 1 is treated as 1.
func Map[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	if len(items) == 0 {
		return []Result[R]{}
	}
	if limit < 1 {
		limit = 1
	}

	results := make([]Result[R], len(items))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result[R]{Err: err}
				return nil
			}
			val, err := fn(ctx, item)
			results[i] = Result[R]{Value: val, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
