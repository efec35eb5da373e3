package resource

import (
	"sync"
	"testing"

	"github.com/lightsource/lse/pkg/errors"
	"github.com/lightsource/lse/pkg/object"
)

const testResourceType object.TypeID = 240

type testEvent struct {
	resource *testResource
	state    State
}

type testResource struct {
	object.Header
	key       string
	life      Lifecycle[testEvent]
	payload   string
	err       error
	destroyed int
}

func init() {
	object.MustRegister(object.TypeInfo{
		ID:   testResourceType,
		Name: "test_resource",
		New: func(arg any) object.Object {
			return &testResource{key: arg.(string)}
		},
		Destroy: func(obj object.Object) {
			r := obj.(*testResource)
			r.destroyed++
			r.payload = ""
			r.life.Destroy()
		},
	})
}

func newTestResource(key string) *testResource {
	return object.New(testResourceType, key).(*testResource)
}

func (r *testResource) Key() string  { return r.key }
func (r *testResource) State() State { return r.life.State() }
func (r *testResource) SetLoading()  { r.life.SetLoading() }

func (r *testResource) SetReady(payload string) {
	if !r.life.CanFinish() {
		return
	}
	r.payload = payload
	r.life.Finish(StateReady, &testEvent{resource: r, state: StateReady})
}

func (r *testResource) SetError(err error) {
	if !r.life.CanFinish() {
		return
	}
	r.err = err
	r.life.Finish(StateError, &testEvent{resource: r, state: StateError})
}

type recordingHandler struct {
	mu     sync.Mutex
	errs   []*errors.ResourceError
	panics []*errors.PanicError
}

func (h *recordingHandler) HandleError(err *errors.ResourceError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func (h *recordingHandler) HandlePanic(err *errors.PanicError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = append(h.panics, err)
}

func recordErrors(t *testing.T) *recordingHandler {
	t.Helper()
	h := &recordingHandler{}
	errors.SetHandler(h)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return h
}
