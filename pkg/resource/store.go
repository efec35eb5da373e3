package resource

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lightsource/lse/internal/assert"
	"github.com/lightsource/lse/pkg/errors"
	"github.com/lightsource/lse/pkg/object"
	"github.com/lightsource/lse/pkg/observer"
)

// Resource is a reference counted asset identified by a key.
type Resource interface {
	object.Object
	Key() string
	State() State
}

// Loadable is a resource the store can drive through a load cycle with
// payload P. The methods are called on the owner goroutine.
type Loadable[P any] interface {
	Resource
	SetLoading()
	SetReady(payload P)
	SetError(err error)
}

// Decoder produces the payload of a resource.
//
// In ModeAsync, Decode runs on a worker goroutine. It may only read fields
// of the resource that are fixed at construction (such as its key) and must
// not change its state.
type Decoder[R any, P any] interface {
	Decode(ctx context.Context, resource R) (P, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc[R any, P any] func(ctx context.Context, resource R) (P, error)

// Decode calls f(ctx, resource).
func (f DecoderFunc[R, P]) Decode(ctx context.Context, resource R) (P, error) {
	return f(ctx, resource)
}

// StoreEvent is delivered to store observers when an entry leaves the store.
type StoreEvent[R any] struct {
	Resource R
	State    State
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	name       string
	scheduler  Scheduler
	dispatcher Dispatcher
	logger     *zap.Logger
}

// WithName sets the store name used in logs, reports and metric labels.
func WithName(name string) Option {
	return func(o *storeOptions) { o.name = name }
}

// WithScheduler sets where async decode work runs. Defaults to a Pool with
// GOMAXPROCS workers.
func WithScheduler(s Scheduler) Option {
	return func(o *storeOptions) { o.scheduler = s }
}

// WithDispatcher sets how async completions reach the owner goroutine.
// Without it the store uses the dispatcher set with RegisterDispatch.
func WithDispatcher(d Dispatcher) Option {
	return func(o *storeOptions) { o.dispatcher = d }
}

// WithLogger overrides the store logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *storeOptions) { o.logger = l }
}

type storeEntry[R any] struct {
	resource R
	usages   int
}

// Store caches resources by key so that each key has at most one live
// resource. A Store is not safe for concurrent use; it belongs to the owner
// goroutine.
type Store[P any, R Loadable[P]] struct {
	name       string
	create     func(key string) R
	decoder    Decoder[R, P]
	scheduler  Scheduler
	dispatcher Dispatcher
	log        *zap.Logger

	entries   map[string]*storeEntry[R]
	observers observer.Registry[StoreEvent[R]]

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewStore creates a store. create builds a new resource for a key with one
// reference, which the store keeps while the entry is cached. A store with a
// nil create only accepts AcquireFunc.
func NewStore[P any, R Loadable[P]](create func(key string) R, decoder Decoder[R, P], opts ...Option) *Store[P, R] {
	o := storeOptions{name: "resource"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.scheduler == nil {
		o.scheduler = NewPool(0)
	}
	if o.logger == nil {
		o.logger = Logger().Named(o.name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Store[P, R]{
		name:       o.name,
		create:     create,
		decoder:    decoder,
		scheduler:  o.scheduler,
		dispatcher: o.dispatcher,
		log:        o.logger,
		entries:    make(map[string]*storeEntry[R]),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Name returns the store name.
func (s *Store[P, R]) Name() string {
	return s.name
}

// Acquire returns the resource for key, creating and loading it on a miss.
// The caller owns one reference and must give it back with Release.
//
// On a miss in ModeSync the resource is READY or ERROR when Acquire returns.
// In ModeAsync it is LOADING and observers registered on it are notified
// when the load completes.
//
// The zero value is returned for an empty key or a closed store.
func (s *Store[P, R]) Acquire(key string, mode Mode) R {
	return s.AcquireFunc(key, mode, s.create)
}

// AcquireFunc is like Acquire but builds a missing resource with create
// instead of the store's constructor.
func (s *Store[P, R]) AcquireFunc(key string, mode Mode, create func(key string) R) R {
	var zero R
	if s.closed {
		assert.That(false, "%s store: acquire %q after close", s.name, key)
		return zero
	}
	if key == "" {
		assert.That(false, "%s store: acquire with empty key", s.name)
		return zero
	}

	if e, ok := s.entries[key]; ok {
		e.usages++
		object.Ref(e.resource)
		AcquireHits.WithLabelValues(s.name).Inc()
		return e.resource
	}

	if create == nil {
		assert.That(false, "%s store: no constructor for %q", s.name, key)
		return zero
	}
	r := create(key)
	if isZero(r) {
		assert.That(false, "%s store: constructor returned nil for %q", s.name, key)
		return zero
	}
	AcquireMisses.WithLabelValues(s.name).Inc()
	s.entries[key] = &storeEntry[R]{resource: r, usages: 1}
	Items.WithLabelValues(s.name).Set(float64(len(s.entries)))

	// The constructor reference stays with the store; this one is the caller's.
	object.Ref(r)
	s.load(r, mode)
	return r
}

// Release gives back a reference obtained from Acquire. When the last
// acquisition of a key is released the entry is evicted and store observers
// receive a DONE event. Release always returns the zero value so callers can
// write r = store.Release(r).
func (s *Store[P, R]) Release(r R) R {
	var zero R
	if isZero(r) {
		return zero
	}

	key := r.Key()
	if e, ok := s.entries[key]; ok && any(e.resource) == any(r) {
		assert.That(e.usages > 0, "%s store: release of %q with no usages", s.name, key)
		e.usages--
		if e.usages <= 0 {
			s.evict(key, e)
		}
	}
	object.Unref(r)
	return zero
}

// Get returns the cached resource for key without taking a reference.
func (s *Store[P, R]) Get(key string) R {
	if e, ok := s.entries[key]; ok {
		return e.resource
	}
	var zero R
	return zero
}

// Usages returns the number of outstanding acquisitions of key.
func (s *Store[P, R]) Usages(key string) int {
	if e, ok := s.entries[key]; ok {
		return e.usages
	}
	return 0
}

// Len returns the number of cached entries.
func (s *Store[P, R]) Len() int {
	return len(s.entries)
}

// Keys returns the cached keys in sorted order.
func (s *Store[P, R]) Keys() []string {
	return slices.Sorted(maps.Keys(s.entries))
}

// AddObserver registers a callback for entries leaving the store.
func (s *Store[P, R]) AddObserver(obs any, cb observer.Callback[StoreEvent[R]]) {
	if s.closed {
		return
	}
	s.observers.Add(obs, cb)
}

// RemoveObserver unregisters every callback of obs.
func (s *Store[P, R]) RemoveObserver(obs any) {
	s.observers.Remove(obs)
}

// Closed reports whether Close has been called.
func (s *Store[P, R]) Closed() bool {
	return s.closed
}

// Close evicts every entry in key order, dispatching DONE for each, and
// cancels pending async loads. Resources still referenced by callers stay
// alive until they are released. Close is idempotent.
func (s *Store[P, R]) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()

	for _, key := range s.Keys() {
		// An observer may release entries while we walk.
		if e, ok := s.entries[key]; ok {
			s.evict(key, e)
		}
	}
	s.observers.Clear()
	s.log.Debug("store closed")
}

func (s *Store[P, R]) evict(key string, e *storeEntry[R]) {
	delete(s.entries, key)
	Evictions.WithLabelValues(s.name).Inc()
	Items.WithLabelValues(s.name).Set(float64(len(s.entries)))

	s.observers.Dispatch(&StoreEvent[R]{Resource: e.resource, State: StateDone})
	object.Unref(e.resource)
}

func (s *Store[P, R]) load(r R, mode Mode) {
	r.SetLoading()

	if mode == ModeAsync {
		dispatch := s.dispatcher
		if dispatch == nil {
			dispatch = registeredDispatch()
		}
		if dispatch != nil {
			s.loadAsync(r, dispatch)
			return
		}
		s.log.Warn("no dispatcher registered, loading synchronously", zap.String("key", r.Key()))
	}

	payload, err := s.decode(s.ctx, r)
	s.complete(r, payload, err)
}

func (s *Store[P, R]) loadAsync(r R, dispatch Dispatcher) {
	// The task holds a reference until its completion has run on the owner.
	object.Ref(r)
	task := uuid.NewString()
	key := r.Key()
	ctx := s.ctx
	s.log.Debug("load queued", zap.String("task", task), zap.String("key", key))

	s.scheduler.Go(func() {
		payload, err := s.decode(ctx, r)
		dispatch(func() {
			defer object.Unref(r)
			if ctx.Err() != nil {
				s.log.Debug("load discarded", zap.String("task", task), zap.String("key", key))
				return
			}
			s.log.Debug("load finished", zap.String("task", task), zap.String("key", key))
			s.complete(r, payload, err)
		})
	})
}

func (s *Store[P, R]) decode(ctx context.Context, r R) (payload P, err error) {
	defer errors.RecoverWithCallback(s.name+".decode", func(v any) {
		err = fmt.Errorf("%w: %v", ErrDecodePanic, v)
	})
	if err := ctx.Err(); err != nil {
		return payload, err
	}
	return s.decoder.Decode(ctx, r)
}

func (s *Store[P, R]) complete(r R, payload P, err error) {
	if err != nil {
		Loads.WithLabelValues(s.name, StateError.String()).Inc()
		errors.Report(&errors.ResourceError{
			Op:   s.name + ".load",
			Kind: ErrorKind(err),
			Key:  r.Key(),
			Err:  err,

			StackTrace: errors.CaptureStack(),
		})
		r.SetError(err)
		return
	}
	Loads.WithLabelValues(s.name, StateReady.String()).Inc()
	r.SetReady(payload)
}

func isZero[R any](r R) bool {
	var zero R
	return any(r) == any(zero)
}
