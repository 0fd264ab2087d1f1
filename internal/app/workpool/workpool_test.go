package workpool_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/jsamuelsen11/layerflow/internal/app/workpool"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestGroup_RunsConcurrentlyWhenSlotFree(t *testing.T) {
	t.Parallel()

	pool := workpool.New(2)
	g := pool.Group()

	release := make(chan struct{})
	started := make(chan struct{})
	concurrent := g.Go(func() {
		close(started)
		<-release
	})
	if !concurrent {
		t.Fatal("Go() = false, want concurrent dispatch with a free slot")
	}

	<-started
	close(release)
	g.Wait()
}

func TestGroup_CallerRunsWhenSaturated(t *testing.T) {
	t.Parallel()

	pool := workpool.New(1)
	g := pool.Group()

	release := make(chan struct{})
	g.Go(func() { <-release })

	ran := false
	concurrent := g.Go(func() { ran = true })
	if concurrent {
		t.Fatal("Go() = true, want inline run on a saturated pool")
	}
	if !ran {
		t.Fatal("inline work must complete before Go returns")
	}

	close(release)
	g.Wait()
}

func TestGroup_NestedJoinDoesNotDeadlock(t *testing.T) {
	t.Parallel()

	pool := workpool.New(2)
	var visits atomic.Int32

	var visit func(depth int)
	visit = func(depth int) {
		visits.Add(1)
		if depth == 0 {
			return
		}
		g := pool.Group()
		for range 3 {
			g.Go(func() { visit(depth - 1) })
		}
		g.Wait()
	}

	done := make(chan struct{})
	go func() {
		visit(4)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("nested dispatch deadlocked")
	}

	// 1 + 3 + 9 + 27 + 81
	if got := visits.Load(); got != 121 {
		t.Errorf("visits = %d, want 121", got)
	}
}

func TestGroup_WaitJoinsAll(t *testing.T) {
	t.Parallel()

	pool := workpool.New(4)
	g := pool.Group()

	var mu sync.Mutex
	finished := 0
	for i := range 8 {
		g.Go(func() {
			time.Sleep(time.Duration(i) * time.Millisecond)
			mu.Lock()
			finished++
			mu.Unlock()
		})
	}
	g.Wait()

	if finished != 8 {
		t.Errorf("finished = %d after Wait, want 8", finished)
	}
}

func TestNew_ClampsSize(t *testing.T) {
	t.Parallel()

	g := workpool.New(0).Group()

	release := make(chan struct{})
	if !g.Go(func() { <-release }) {
		t.Fatal("first Go() = false, want one worker slot")
	}
	if g.Go(func() {}) {
		t.Error("second Go() = true, want inline run with a single slot")
	}

	close(release)
	g.Wait()
}

func TestMap_EmptyItems(t *testing.T) {
	t.Parallel()

	results := workpool.Map(context.Background(), 5, []int{}, func(_ context.Context, _ int) (string, error) {
		t.Fatal("fn should not be called for empty items")
		return "", nil
	})

	if results == nil || len(results) != 0 {
		t.Fatalf("results = %v, want empty non-nil slice", results)
	}
}

func TestMap_PreservesOrderAndPartialFailure(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	items := []int{1, 2, 3, 4}

	results := workpool.Map(context.Background(), 2, items, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, errBoom
		}
		return n * 10, nil
	})

	for i, r := range results {
		if items[i] == 2 {
			if !errors.Is(r.Err, errBoom) {
				t.Errorf("results[%d].Err = %v, want errBoom", i, r.Err)
			}
			continue
		}
		if r.Err != nil || r.Value != items[i]*10 {
			t.Errorf("results[%d] = %+v, want {%d <nil>}", i, r, items[i]*10)
		}
	}
}

func TestMap_RespectsLimit(t *testing.T) {
	t.Parallel()

	var active, peak atomic.Int32
	items := make([]int, 20)

	workpool.Map(context.Background(), 3, items, func(_ context.Context, _ int) (int, error) {
		cur := active.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		active.Add(-1)
		return 0, nil
	})

	if got := peak.Load(); got > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", got)
	}
}

func TestMap_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results := workpool.Map(ctx, 2, []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})

	if calls.Load() != 0 {
		t.Errorf("fn called %d times on canceled context, want 0", calls.Load())
	}
	for i, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("results[%d].Err = %v, want context.Canceled", i, r.Err)
		}
	}
}
