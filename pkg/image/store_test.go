package image

import (
	"testing"

	"github.com/lightsource/lse/pkg/errors"
	"github.com/lightsource/lse/pkg/resource"
)

type discardHandler struct{ errs int }

func (h *discardHandler) HandleError(*errors.ResourceError) { h.errs++ }
func (h *discardHandler) HandlePanic(*errors.PanicError)    {}

func newTestStore(t *testing.T, opts ...resource.Option) *Store {
	t.Helper()
	opts = append([]resource.Option{resource.WithName(t.Name())}, opts...)
	s := NewFSStore(newAssetFS(t), "assets", opts...)
	t.Cleanup(s.Close)
	return s
}

func TestStoreAcquire(t *testing.T) {
	h := &discardHandler{}
	errors.SetHandler(h)
	t.Cleanup(func() { errors.SetHandler(nil) })
	s := newTestStore(t)

	tests := []struct {
		uri   string
		state resource.State
	}{
		{"blue.png", resource.StateReady},
		{"red.svg", resource.StateReady},
		{"bad.png", resource.StateError},
		{"missing.png", resource.StateError},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			img := s.Acquire(tt.uri, resource.ModeSync)
			if img == nil {
				t.Fatal("Acquire returned nil")
			}
			if img.State() != tt.state {
				t.Errorf("state = %s, want %s (err: %v)", img.State(), tt.state, img.Err())
			}
		})
	}
	if h.errs != 2 {
		t.Errorf("reported %d errors, want 2", h.errs)
	}
}

func TestStoreSameInstance(t *testing.T) {
	s := newTestStore(t)

	a := s.Acquire("blue.png", resource.ModeSync)
	b := s.Acquire("blue.png", resource.ModeSync)
	if a != b {
		t.Fatal("Acquire returned different instances for the same URI")
	}

	s.Release(a)
	if s.Get("blue.png") != b {
		t.Fatal("image evicted with an outstanding acquisition")
	}
	if got := s.Release(b); got != nil {
		t.Errorf("Release returned %v, want nil", got)
	}
	if s.Get("blue.png") != nil {
		t.Error("Get returned a released image")
	}
	if b.State() != resource.StateDone || b.CanRender() {
		t.Errorf("state = %s after final release, want done", b.State())
	}
	if s.Release(nil) != nil {
		t.Error("Release(nil) should return nil")
	}
}

func TestStoreAsync(t *testing.T) {
	queue := resource.NewQueue()
	pool := resource.NewPool(2)
	s := newTestStore(t, resource.WithScheduler(pool), resource.WithDispatcher(queue.Post))

	img := s.Acquire("blue.png", resource.ModeAsync)
	if img.State() != resource.StateLoading {
		t.Fatalf("state = %s, want loading", img.State())
	}
	var ready bool
	img.AddObserver(t, func(e *Event, _ any) { ready = e.State == resource.StateReady })

	pool.Wait()
	queue.RunPending()
	if !ready || !img.CanRender() {
		t.Errorf("ready = %v, CanRender = %v", ready, img.CanRender())
	}
	s.Release(img)
}
