package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewPool(t *testing.T) {
	ctx := context.Background()
	if p := NewPool[int](ctx, 5); p.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p.workers)
	}
	if p := NewPool[int](ctx, 0); p.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p.workers)
	}
	if p := NewPool[int](ctx, -1); p.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p.workers)
	}
}

func TestPool_Execution(t *testing.T) {
	pool := NewPool[int](context.Background(), 2)
	pool.Start()

	var executed int32
	count := 10
	for i := 0; i < count; i++ {
		i := i
		pool.Submit(func(ctx context.Context) int {
			atomic.AddInt32(&executed, 1)
			return i
		})
	}

	results := pool.Wait()
	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}
	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 10
	pool := NewPool[struct{}](context.Background(), workers)
	pool.Start()

	var current int32
	var maxConcurrent int32
	var completed int32
	var mu sync.Mutex

	totalJobs := 50
	for i := 0; i < totalJobs; i++ {
		pool.Submit(func(ctx context.Context) struct{} {
			curr := atomic.AddInt32(&current, 1)
			mu.Lock()
			if curr > maxConcurrent {
				maxConcurrent = curr
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			atomic.AddInt32(&current, -1)
			atomic.AddInt32(&completed, 1)
			return struct{}{}
		})
	}

	pool.Wait()

	if atomic.LoadInt32(&completed) != int32(totalJobs) {
		t.Errorf("expected %d completed jobs, got %d", totalJobs, completed)
	}

	mu.Lock()
	max := maxConcurrent
	mu.Unlock()

	if max > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", max, workers)
	}
}

func TestPool_ParentContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool[int](ctx, 2)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(func(jobCtx context.Context) int {
		close(started)
		<-jobCtx.Done()
		return 1
	})
	<-started
	cancel()

	results := pool.Wait()
	if len(results) != 1 || results[0] != 1 {
		t.Errorf("expected the running job to observe cancellation, got %v", results)
	}

	// After cancellation new submissions are dropped without blocking.
	done := make(chan struct{})
	go func() {
		pool.Submit(func(context.Context) int { return 2 })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Submit after parent cancellation blocked")
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool[int](context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	done := make(chan struct{})
	go func() {
		pool.Submit(func(ctx context.Context) int { return 0 })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestQueryLimiter_Defaults(t *testing.T) {
	l := NewQueryLimiter(0, 0)
	if err := l.Wait(context.Background()); err != nil {
		t.Errorf("expected first wait to pass, got %v", err)
	}
}

func TestQueryLimiter_CancelledContext(t *testing.T) {
	l := NewQueryLimiter(0.001, 1)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("expected first wait to pass, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx); err == nil {
		t.Error("expected error from cancelled context")
	}
}
