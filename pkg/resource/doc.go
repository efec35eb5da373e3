// Package resource implements the lifecycle and caching of loadable assets.
//
// # State machine
//
// A loadable resource embeds [Lifecycle]. It starts in [StateInit], moves to
// [StateLoading] silently, and ends a load cycle in exactly one of
// [StateReady] or [StateError]. Only the terminal transitions notify
// observers. A failed load is not retried; a new cycle has to be started by
// the owner of the resource.
//
// # Store
//
// [Store] maps keys (usually URIs) to a single live resource each. Acquire
// either returns the cached instance, taking a reference for the caller, or
// creates the resource and loads it. Release gives the reference back and
// evicts the entry once every acquisition has been released.
//
//	store := image.NewStore()
//	img := store.Acquire("assets/logo.png", resource.ModeSync)
//	if img.State() == resource.StateReady {
//	    // use img
//	}
//	img = store.Release(img)
//
// Load failures never come back as errors. They leave the resource in
// [StateError] and are reported through the errors package.
//
// # Threading
//
// Stores, resources and reference counts belong to one owner goroutine. In
// [ModeAsync] the decode step runs on a [Pool] worker, and its result is
// handed back to the owner goroutine through a dispatcher (see
// [RegisterDispatch] and [Queue]) before any state transition happens.
package resource
