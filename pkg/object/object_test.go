package object

import (
	"errors"
	"testing"

	"github.com/lightsource/lse/internal/assert"
)

const testType TypeID = 200

type testObject struct {
	Header
	arg       any
	destroyed int
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	err := r.Register(TypeInfo{
		ID:   testType,
		Name: "test_object",
		New: func(arg any) Object {
			return &testObject{arg: arg}
		},
		Destroy: func(obj Object) {
			obj.(*testObject).destroyed++
		},
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return r
}

func TestNew(t *testing.T) {
	r := newTestRegistry(t)

	obj := r.New(testType, "arg")
	if obj == nil {
		t.Fatal("New returned nil for a registered type")
	}
	if got := RefCount(obj); got != 1 {
		t.Errorf("RefCount = %d, want 1", got)
	}
	if got := TypeOf(obj); got != testType {
		t.Errorf("TypeOf = %d, want %d", got, testType)
	}
	if got := TypeName(obj); got != "test_object" {
		t.Errorf("TypeName = %q, want %q", got, "test_object")
	}
	if got := obj.(*testObject).arg; got != "arg" {
		t.Errorf("constructor arg = %v, want %q", got, "arg")
	}
}

func TestNewUnregisteredType(t *testing.T) {
	if assert.Enabled {
		t.Skip("unregistered types panic in debug builds")
	}
	r := newTestRegistry(t)

	if obj := r.New(testType+1, nil); obj != nil {
		t.Errorf("New returned %v for an unregistered type, want nil", obj)
	}
	if obj := r.New(TypeNone, nil); obj != nil {
		t.Errorf("New returned %v for TypeNone, want nil", obj)
	}
}

func TestRefIncrements(t *testing.T) {
	r := newTestRegistry(t)
	obj := r.New(testType, nil)

	for want := uint32(2); want <= 5; want++ {
		if got := Ref(obj); got != want {
			t.Fatalf("Ref = %d, want %d", got, want)
		}
	}
	if got := RefCount(obj); got != 5 {
		t.Errorf("RefCount = %d, want 5", got)
	}
}

func TestUnrefDestroysExactlyOnce(t *testing.T) {
	r := newTestRegistry(t)
	obj := r.New(testType, nil).(*testObject)
	Ref(obj)

	Unref(obj)
	if obj.destroyed != 0 {
		t.Fatalf("destroyed after first Unref with 2 refs")
	}
	if IsDestroyed(obj) {
		t.Fatalf("IsDestroyed = true with 1 ref")
	}

	Unref(obj)
	if obj.destroyed != 1 {
		t.Fatalf("destroy count = %d, want 1", obj.destroyed)
	}
	if !IsDestroyed(obj) {
		t.Error("IsDestroyed = false after last Unref")
	}

	if assert.Enabled {
		return
	}
	// Over-release is a usage error and must not destroy again.
	Unref(obj)
	if obj.destroyed != 1 {
		t.Errorf("destroy count = %d after over-release, want 1", obj.destroyed)
	}
}

func TestRefAfterDestroyDoesNotRevive(t *testing.T) {
	if assert.Enabled {
		t.Skip("ref of a destroyed object panics in debug builds")
	}
	r := newTestRegistry(t)
	obj := r.New(testType, nil).(*testObject)
	Unref(obj)

	if got := Ref(obj); got != 0 {
		t.Errorf("Ref after destroy = %d, want 0", got)
	}
	if got := RefCount(obj); got != 0 {
		t.Errorf("RefCount = %d, want 0", got)
	}
	Unref(obj)
	if obj.destroyed != 1 {
		t.Errorf("destroy count = %d, want 1", obj.destroyed)
	}
}

func TestNilObject(t *testing.T) {
	var typed *testObject

	tests := []struct {
		name string
		obj  Object
	}{
		{"untyped nil", nil},
		{"typed nil", typed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Unref(tt.obj)
			if got := Ref(tt.obj); got != 0 {
				t.Errorf("Ref = %d, want 0", got)
			}
			if got := RefCount(tt.obj); got != 0 {
				t.Errorf("RefCount = %d, want 0", got)
			}
			if got := TypeOf(tt.obj); got != TypeNone {
				t.Errorf("TypeOf = %d, want TypeNone", got)
			}
			if got := TypeName(tt.obj); got != "null" {
				t.Errorf("TypeName = %q, want %q", got, "null")
			}
		})
	}
}

func TestRegisterErrors(t *testing.T) {
	r := newTestRegistry(t)
	ctor := func(any) Object { return &testObject{} }

	tests := []struct {
		name string
		info TypeInfo
		want error
	}{
		{"none type", TypeInfo{ID: TypeNone, Name: "none", New: ctor}, ErrInvalidType},
		{"missing constructor", TypeInfo{ID: testType + 1, Name: "nil_ctor"}, ErrInvalidType},
		{"duplicate", TypeInfo{ID: testType, Name: "dup", New: ctor}, ErrDuplicateType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.Register(tt.info); !errors.Is(err, tt.want) {
				t.Errorf("Register error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, ok := r.Lookup(testType); !ok {
		t.Error("Lookup failed for registered type")
	}
}
