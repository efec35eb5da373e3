package resource

import (
	"github.com/lightsource/lse/internal/assert"
	"github.com/lightsource/lse/pkg/observer"
)

// Lifecycle is embedded by loadable resources. It tracks the load state and
// notifies observers when a load cycle ends.
//
// Only READY and ERROR transitions dispatch an event. SetLoading is silent so
// that observers hear about outcomes, not attempts. Observers registered after
// a terminal transition are not notified retroactively; read State after
// subscribing.
//
// The zero value is a resource in StateInit with no observers.
type Lifecycle[E any] struct {
	state     State
	observers observer.Registry[E]
}

// State returns the current state.
func (l *Lifecycle[E]) State() State {
	return l.state
}

// AddObserver subscribes to terminal transitions.
// Subscriptions on a destroyed resource are ignored.
func (l *Lifecycle[E]) AddObserver(obs any, callback observer.Callback[E]) {
	if l.state == StateDone {
		return
	}
	l.observers.Add(obs, callback)
}

// RemoveObserver unsubscribes every entry registered for obs.
// It is safe to call from inside an observer callback.
func (l *Lifecycle[E]) RemoveObserver(obs any) {
	l.observers.Remove(obs)
}

// ObserverCount returns the number of live observers.
func (l *Lifecycle[E]) ObserverCount() int {
	return l.observers.Len()
}

// SetLoading starts a load cycle without notifying observers.
// It reports whether the transition happened.
func (l *Lifecycle[E]) SetLoading() bool {
	if l.state == StateDone {
		return false
	}
	assert.That(l.state != StateLoading, "resource is already loading")
	l.state = StateLoading
	return true
}

// Finish moves the resource to a terminal state and dispatches event to the
// observers. Callers update their payload first so observers see a
// consistent resource. Finish only leaves StateInit or StateLoading; a READY
// or ERROR resource needs a new SetLoading cycle first. It reports whether
// the transition happened.
func (l *Lifecycle[E]) Finish(state State, event *E) bool {
	if !state.IsTerminal() {
		assert.That(false, "finish with non-terminal state %s", state)
		return false
	}
	switch l.state {
	case StateInit, StateLoading:
	case StateDone:
		return false
	default:
		assert.That(false, "finish from %s without a new load cycle", l.state)
		return false
	}
	l.state = state
	l.observers.Dispatch(event)
	return true
}

// CanFinish reports whether Finish would transition.
func (l *Lifecycle[E]) CanFinish() bool {
	return l.state == StateInit || l.state == StateLoading
}

// Destroy moves the resource to StateDone and drops its observers without
// notifying them. Later transitions are no-ops.
func (l *Lifecycle[E]) Destroy() {
	if l.state == StateDone {
		return
	}
	l.state = StateDone
	l.observers.Clear()
}

// IsDestroyed reports whether Destroy was called.
func (l *Lifecycle[E]) IsDestroyed() bool {
	return l.state == StateDone
}
