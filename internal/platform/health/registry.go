// Package health implements the readiness registry. Backends register when
// the strategy catalog first builds them, so readiness covers exactly the
// backends the configured strategies use.
package health

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen11/layerflow/internal/ports"
)

var _ ports.HealthRegistry = (*Registry)(nil)

// Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	checkers []ports.HealthChecker
	names    map[string]bool
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{names: make(map[string]bool)}
}

// Register adds checker unless one with the same name is already present.
func (r *Registry) Register(checker ports.HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := checker.Name()
	if r.names[name] {
		return
	}
	r.names[name] = true
	r.checkers = append(r.checkers, checker)
}

// CheckAll runs the checks concurrently without holding the lock. A check
// that panics is reported as failing.
func (r *Registry) CheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	checkers := make([]ports.HealthChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	errs := make([]error, len(checkers))
	var g errgroup.Group
	for i, c := range checkers {
		g.Go(func() (err error) {
			defer func() {
				if v := recover(); v != nil {
					errs[i] = fmt.Errorf("%s: health check panicked: %v", c.Name(), v)
				}
			}()
			errs[i] = c.HealthCheck(ctx)
			return nil
		})
	}
	_ = g.Wait()

	results := make(map[string]error, len(checkers))
	for i, c := range checkers {
		results[c.Name()] = errs[i]
	}
	return results
}
