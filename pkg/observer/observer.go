// Package observer implements a typed publish/subscribe list that stays
// consistent when observers subscribe or unsubscribe from inside a callback.
//
// A Registry holds (observer, callback) pairs. The observer value is an
// opaque identity used only for equality, typically a pointer to the
// subscribing node. Remove does not erase entries; it tombstones them, and
// the next Dispatch compacts the list after its pass. This keeps Remove safe
// to call while a Dispatch is iterating.
package observer

import (
	"reflect"

	"github.com/lightsource/lse/internal/assert"
)

// Callback receives an event and the observer identity it was registered with.
// The event pointer is only valid for the duration of the call.
type Callback[E any] func(event *E, observer any)

type entry[E any] struct {
	observer any
	callback Callback[E]
}

// Registry is an ordered list of observers for events of type E.
// The zero value is an empty registry ready to use.
//
// Registry is not safe for concurrent use.
type Registry[E any] struct {
	entries    []entry[E]
	tombstones int
	depth      int
}

// Clear drops all entries without invoking callbacks.
func (r *Registry[E]) Clear() {
	r.entries = nil
	r.tombstones = 0
}

// Add appends an observer. A nil observer or callback is ignored, as is an
// observer whose type cannot be compared with ==, such as a map or a func.
// Adding the same pair twice registers it twice.
func (r *Registry[E]) Add(observer any, callback Callback[E]) {
	assert.That(observer != nil, "observer is nil")
	assert.That(callback != nil, "observer callback is nil")
	if observer == nil || callback == nil {
		return
	}
	if !isComparable(observer) {
		assert.That(false, "observer of type %T is not comparable", observer)
		return
	}
	r.entries = append(r.entries, entry[E]{observer: observer, callback: callback})
}

// Remove tombstones every entry registered for observer.
// Removing an unknown observer is a no-op.
func (r *Registry[E]) Remove(observer any) {
	if observer == nil || !isComparable(observer) {
		return
	}
	for i := range r.entries {
		e := &r.entries[i]
		if e.observer != nil && e.observer == observer {
			e.observer = nil
			e.callback = nil
			r.tombstones++
		}
	}
}

// Dispatch calls every live observer in insertion order.
//
// Callbacks may Add, Remove, Clear or Dispatch again. Entries removed before
// their turn are skipped; entries added during the pass may or may not be
// visited. Tombstones are compacted once the outermost Dispatch returns.
func (r *Registry[E]) Dispatch(event *E) {
	r.depth++
	for i := 0; i < len(r.entries); i++ {
		e := r.entries[i]
		if e.observer == nil {
			continue
		}
		e.callback(event, e.observer)
	}
	r.depth--

	if r.depth == 0 && r.tombstones > 0 {
		r.compact()
	}
}

// Len returns the number of live observers.
func (r *Registry[E]) Len() int {
	return len(r.entries) - r.tombstones
}

func (r *Registry[E]) compact() {
	live := r.entries[:0]
	for _, e := range r.entries {
		if e.observer != nil {
			live = append(live, e)
		}
	}
	clear(r.entries[len(live):])
	r.entries = live
	r.tombstones = 0
}

func isComparable(observer any) bool {
	return reflect.TypeOf(observer).Comparable()
}
