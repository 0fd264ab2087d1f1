package health_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/layerflow/internal/platform/health"
	"github.com/jsamuelsen11/layerflow/mocks"
)

// probe is a HealthChecker with a fixed result.
type probe struct {
	name string
	err  error
	boom bool
}

func (p probe) Name() string { return p.name }

func (p probe) HealthCheck(context.Context) error {
	if p.boom {
		panic("dial tcp: nil dialer")
	}
	return p.err
}

func TestRegistry_CheckAll(t *testing.T) {
	t.Parallel()

	refused := errors.New("connection refused")

	tests := []struct {
		name    string
		probes  []probe
		want    map[string]error
		wantMsg map[string]string
	}{
		{
			name: "no backends",
			want: map[string]error{},
		},
		{
			name:   "all healthy",
			probes: []probe{{name: "database"}, {name: "kv"}},
			want:   map[string]error{"database": nil, "kv": nil},
		},
		{
			name:   "one backend failing",
			probes: []probe{{name: "object-store"}, {name: "mail-relay", err: refused}},
			want:   map[string]error{"object-store": nil, "mail-relay": refused},
		},
		{
			name:   "first registration wins",
			probes: []probe{{name: "database"}, {name: "database", err: refused}},
			want:   map[string]error{"database": nil},
		},
		{
			name:    "panicking check reported as failing",
			probes:  []probe{{name: "queue", boom: true}, {name: "file"}},
			want:    map[string]error{"file": nil},
			wantMsg: map[string]string{"queue": "queue: health check panicked"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := health.New()
			for _, p := range tt.probes {
				r.Register(p)
			}

			got := r.CheckAll(context.Background())
			if got == nil {
				t.Fatal("CheckAll() = nil, want non-nil map")
			}
			if len(got) != len(tt.want)+len(tt.wantMsg) {
				t.Fatalf("CheckAll() returned %d results, want %d: %v", len(got), len(tt.want)+len(tt.wantMsg), got)
			}
			for name, want := range tt.want {
				if err, ok := got[name]; !ok || !errors.Is(err, want) {
					t.Errorf("CheckAll()[%q] = %v (present %v), want %v", name, err, ok, want)
				}
			}
			for name, msg := range tt.wantMsg {
				if err := got[name]; err == nil || !strings.Contains(err.Error(), msg) {
					t.Errorf("CheckAll()[%q] = %v, want containing %q", name, err, msg)
				}
			}
		})
	}
}

func TestRegistry_CheckAll_PassesContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checker := mocks.NewMockHealthChecker(t)
	checker.EXPECT().Name().Return("mail-relay")
	checker.EXPECT().HealthCheck(mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() != nil
	})).Return(context.Canceled)

	r := health.New()
	r.Register(checker)

	if err := r.CheckAll(ctx)["mail-relay"]; !errors.Is(err, context.Canceled) {
		t.Errorf("CheckAll()[mail-relay] = %v, want context.Canceled", err)
	}
}

func TestRegistry_ConcurrentRegisterAndCheck(t *testing.T) {
	t.Parallel()

	r := health.New()

	var wg sync.WaitGroup
	for i := range 40 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				r.Register(probe{name: fmt.Sprintf("backend-%d", i)})
				return
			}
			r.CheckAll(context.Background())
		}()
	}
	wg.Wait()

	if got := len(r.CheckAll(context.Background())); got != 20 {
		t.Errorf("CheckAll() returned %d results, want 20", got)
	}
}
