// Package object provides type identity and manual reference counting for the
// heap values shared between runtime subsystems.
//
// Every runtime value embeds [Header]. Values are created through a type
// registry so that the registry can stamp the type id and the initial
// reference count, and so that the last [Unref] can run the type's teardown:
//
//	img := object.New(object.TypeImage, "logo.png").(*image.Image)
//	object.Ref(img)   // 2
//	object.Unref(img) // 1
//	object.Unref(img) // destroyed
//
// Reference counts are not synchronized. Objects belong to a single owner
// goroutine, and only that goroutine may call [Ref] or [Unref].
package object

import (
	"math"
	"reflect"

	"github.com/lightsource/lse/internal/assert"
)

// Object is implemented by every value that embeds [Header].
type Object interface {
	header() *Header
}

// Header carries the type id and reference count of an object.
// Embed it by value as the first field of a runtime type.
type Header struct {
	info      *TypeInfo
	refs      uint32
	destroyed bool
}

func (h *Header) header() *Header {
	return h
}

// New creates an object of the registered type id using the default registry.
// It returns nil if the type id is not registered.
func New(id TypeID, arg any) Object {
	return DefaultRegistry.New(id, arg)
}

// Ref increments the reference count and returns the new value.
// Ref on nil or on a destroyed object returns 0 and changes nothing.
func Ref(obj Object) uint32 {
	h := headerOf(obj)
	if h == nil {
		return 0
	}
	if h.destroyed {
		assert.That(false, "ref of destroyed %s", TypeName(obj))
		return 0
	}
	if h.refs == math.MaxUint32 {
		panic("object: reference count overflow")
	}
	h.refs++
	return h.refs
}

// Unref decrements the reference count. When the count reaches zero the
// type's Destroy function runs exactly once. Unref on nil is a no-op.
func Unref(obj Object) {
	h := headerOf(obj)
	if h == nil {
		return
	}
	if h.refs == 0 {
		assert.That(false, "unref of destroyed %s", TypeName(obj))
		return
	}
	h.refs--
	if h.refs > 0 {
		return
	}
	h.destroyed = true
	if h.info != nil && h.info.Destroy != nil {
		h.info.Destroy(obj)
	}
}

// RefCount returns the current reference count, or 0 for nil.
func RefCount(obj Object) uint32 {
	if h := headerOf(obj); h != nil {
		return h.refs
	}
	return 0
}

// TypeOf returns the type id of obj, or TypeNone for nil.
func TypeOf(obj Object) TypeID {
	if h := headerOf(obj); h != nil && h.info != nil {
		return h.info.ID
	}
	return TypeNone
}

// TypeName returns the registered name of obj's type, or "null" for nil.
func TypeName(obj Object) string {
	if h := headerOf(obj); h != nil && h.info != nil {
		return h.info.Name
	}
	return "null"
}

// IsDestroyed reports whether obj's reference count has reached zero.
func IsDestroyed(obj Object) bool {
	h := headerOf(obj)
	return h == nil || h.destroyed
}

// headerOf returns nil for untyped nil and for typed nil pointers.
func headerOf(obj Object) *Header {
	if isNil(obj) {
		return nil
	}
	h := obj.header()
	if h == nil || h.info == nil {
		return nil
	}
	return h
}

func isNil(obj Object) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
