package object

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lightsource/lse/internal/assert"
)

// TypeID identifies a registered object type.
type TypeID uint8

// Type ids known to the runtime. TypeNone is never registrable.
const (
	TypeNone TypeID = iota
	TypeImage
	TypeFont
)

var (
	// ErrInvalidType is returned when registering TypeNone or a type without a constructor.
	ErrInvalidType = errors.New("object: invalid type")
	// ErrDuplicateType is returned when a type id is registered twice.
	ErrDuplicateType = errors.New("object: type already registered")
)

// TypeInfo describes how to construct and tear down an object type.
type TypeInfo struct {
	// ID is the type id stamped into every instance.
	ID TypeID
	// Name is returned by TypeName.
	Name string
	// New constructs an instance from a constructor argument.
	New func(arg any) Object
	// Destroy runs when the last reference is released. It must not call
	// Ref or Unref on the object being destroyed.
	Destroy func(obj Object)
}

// Registry maps type ids to type information.
type Registry struct {
	mu    sync.RWMutex
	types [256]*TypeInfo
}

// DefaultRegistry is used by the package-level New function.
var DefaultRegistry = &Registry{}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a type to the default registry.
func Register(info TypeInfo) error {
	return DefaultRegistry.Register(info)
}

// MustRegister is like Register but panics on error.
// It is intended for package init functions.
func MustRegister(info TypeInfo) {
	if err := Register(info); err != nil {
		panic(err)
	}
}

// Register adds a type. Registering an id twice fails.
func (r *Registry) Register(info TypeInfo) error {
	if info.ID == TypeNone || info.New == nil {
		return fmt.Errorf("%w: %d (%s)", ErrInvalidType, info.ID, info.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.types[info.ID] != nil {
		return fmt.Errorf("%w: %d (%s)", ErrDuplicateType, info.ID, r.types[info.ID].Name)
	}
	stored := info
	r.types[info.ID] = &stored
	return nil
}

// Lookup returns the type information for id.
func (r *Registry) Lookup(id TypeID) (TypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if info := r.types[id]; info != nil {
		return *info, true
	}
	return TypeInfo{}, false
}

// New constructs an object of type id with a reference count of 1.
// It returns nil without constructing anything if id is not registered.
func (r *Registry) New(id TypeID, arg any) Object {
	r.mu.RLock()
	info := r.types[id]
	r.mu.RUnlock()

	if info == nil {
		assert.That(false, "type %d not registered", id)
		return nil
	}

	obj := info.New(arg)
	if isNil(obj) {
		return nil
	}
	h := obj.header()
	h.info = info
	h.refs = 1
	h.destroyed = false
	return obj
}
