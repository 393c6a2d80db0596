package worker

import (
	"context"
	"sync"
)

// Job produces one result. Jobs must not share mutable state; everything a
// job needs is captured at construction.
type Job[R any] func(ctx context.Context) R

// Pool runs jobs on a fixed number of workers. There is no dynamic
// rebalancing: once dispatched, a job runs to completion. Results accumulate
// in a locked collector rather than a bounded channel, so callers may submit
// any number of jobs before draining.
type Pool[R any] struct {
	workers   int
	jobs      chan Job[R]
	collector *resultCollector[R]
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewPool creates a pool with the given number of workers (minimum 1).
// Jobs run under a context derived from ctx: cancelling it stops dispatch
// and is observed by running jobs.
func NewPool[R any](ctx context.Context, workers int) *Pool[R] {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Pool[R]{
		workers:   workers,
		jobs:      make(chan Job[R], workers*2),
		collector: newResultCollector[R](),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the workers.
func (p *Pool[R]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool[R]) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.collector.Add(job(p.ctx))
		}
	}
}

// Submit queues a job. It is a no-op once the pool's context is done.
func (p *Pool[R]) Submit(job Job[R]) {
	// Checked first so a cancelled pool never races into a send on the
	// closed queue.
	select {
	case <-p.ctx.Done():
		return
	default:
	}
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Wait closes the queue, waits for all submitted jobs, and returns their
// results in completion order.
func (p *Pool[R]) Wait() []R {
	p.closeJobs()
	p.wg.Wait()
	return p.collector.Results()
}

// Shutdown cancels outstanding work immediately.
func (p *Pool[R]) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

func (p *Pool[R]) closeJobs() {
	p.closeOnce.Do(func() {
		close(p.jobs)
	})
}

// resultCollector accumulates results as workers finish.
type resultCollector[R any] struct {
	results []R
	mu      sync.Mutex
}

func newResultCollector[R any]() *resultCollector[R] {
	return &resultCollector[R]{results: make([]R, 0)}
}

// Add appends a result (thread-safe).
func (c *resultCollector[R]) Add(result R) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

// Results returns all collected results.
func (c *resultCollector[R]) Results() []R {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results
}
