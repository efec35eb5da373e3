package resource

import (
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// Scheduler runs work off the owner goroutine.
type Scheduler interface {
	Go(work func())
}

// Pool is a bounded worker pool for decode work.
type Pool struct {
	workers int
	p       *pool.Pool
}

// NewPool creates a pool running at most workers tasks at once.
// A non-positive value uses GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		workers: workers,
		p:       pool.New().WithMaxGoroutines(workers),
	}
}

// Go submits work to the pool. While every worker is busy, Go blocks until
// one becomes free. Decode work never waits on the owner goroutine, so a
// blocked submit always makes progress.
func (p *Pool) Go(work func()) {
	p.p.Go(work)
}

// Wait blocks until all submitted work has returned. A panic in the work is
// propagated to the caller of Wait. The pool can be reused afterwards, but
// Go must not be called concurrently with Wait.
func (p *Pool) Wait() {
	p.p.Wait()
}

// Workers returns the concurrency limit.
func (p *Pool) Workers() int {
	return p.workers
}
