package resource

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestQueueRunsOnCaller(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	var ran atomic.Int32
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Post(func() { ran.Add(1) })
		}()
	}
	wg.Wait()

	if q.Len() != 8 {
		t.Fatalf("Len = %d, want 8", q.Len())
	}
	if ran.Load() != 0 {
		t.Fatal("callbacks ran before RunPending")
	}
	if n := q.RunPending(); n != 8 {
		t.Errorf("RunPending = %d, want 8", n)
	}
	if ran.Load() != 8 {
		t.Errorf("ran = %d, want 8", ran.Load())
	}
}

func TestQueuePostDuringRun(t *testing.T) {
	q := NewQueue()
	var order []int
	q.Post(func() {
		order = append(order, 1)
		q.Post(func() { order = append(order, 2) })
	})

	if n := q.RunPending(); n != 1 {
		t.Fatalf("first RunPending = %d, want 1", n)
	}
	if n := q.RunPending(); n != 1 {
		t.Fatalf("second RunPending = %d, want 1", n)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
}

func TestQueueRecoversPanics(t *testing.T) {
	h := recordErrors(t)
	q := NewQueue()
	after := false
	q.Post(func() { panic("boom") })
	q.Post(func() { after = true })
	q.Post(nil)

	q.RunPending()
	if !after {
		t.Error("callback after a panic did not run")
	}
	if len(h.panics) != 1 || h.panics[0].Op != "resource.queue" {
		t.Errorf("panics = %+v", h.panics)
	}
}

func TestQueueRunUntilCanceled(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- q.Run(ctx) }()

	ran := make(chan struct{})
	q.Post(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not execute a posted callback")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestDispatch(t *testing.T) {
	RegisterDispatch(nil)
	if Dispatch(func() {}) {
		t.Error("Dispatch without a dispatcher should return false")
	}

	var ran bool
	RegisterDispatch(func(cb func()) { cb() })
	t.Cleanup(func() { RegisterDispatch(nil) })
	if !Dispatch(func() { ran = true }) || !ran {
		t.Error("Dispatch did not run the callback through the registered dispatcher")
	}
	if Dispatch(nil) {
		t.Error("Dispatch(nil) should return false")
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	p := NewPool(2)
	if p.Workers() != 2 {
		t.Fatalf("Workers = %d, want 2", p.Workers())
	}

	var active, peak atomic.Int32
	for range 10 {
		p.Go(func() {
			n := active.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
		})
	}
	p.Wait()

	if got := peak.Load(); got > 2 || got == 0 {
		t.Errorf("peak concurrency = %d, want 1..2", got)
	}
}

func TestPoolDefaultWorkers(t *testing.T) {
	if NewPool(0).Workers() < 1 {
		t.Error("default pool has no workers")
	}
}
