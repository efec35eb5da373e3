package resource

import (
	"context"
	"sync"

	"github.com/lightsource/lse/pkg/errors"
)

// Queue is a mailbox drained by the owner goroutine. Worker goroutines Post
// load completions to it; the owner runs them with RunPending or Run, so
// every state transition and observer callback happens on the owner.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	signal  chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{signal: make(chan struct{}, 1)}
}

// Post enqueues a callback. It is safe to call from any goroutine.
func (q *Queue) Post(callback func()) {
	if callback == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, callback)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Dispatcher returns q.Post as a Dispatcher.
func (q *Queue) Dispatcher() Dispatcher {
	return q.Post
}

// Len returns the number of callbacks waiting to run.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// RunPending runs the callbacks queued so far on the calling goroutine and
// returns how many ran. Callbacks posted while it runs wait for the next call.
// A panicking callback is reported and does not stop the others.
func (q *Queue) RunPending() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, callback := range batch {
		q.run(callback)
	}
	return len(batch)
}

// Run drains the queue on the calling goroutine until ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	for {
		q.RunPending()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.signal:
		}
	}
}

func (q *Queue) run(callback func()) {
	defer errors.Recover("resource.queue")
	callback()
}
