package resource

import "sync"

// Dispatcher schedules a callback on the owner goroutine.
type Dispatcher func(callback func())

var (
	dispatchMu   sync.RWMutex
	dispatchFunc Dispatcher
)

// RegisterDispatch sets the process-wide dispatcher used by stores that were
// not given one with WithDispatcher. The host application registers it once,
// typically with the Post method of the owner goroutine's [Queue].
func RegisterDispatch(fn func(callback func())) {
	dispatchMu.Lock()
	dispatchFunc = fn
	dispatchMu.Unlock()
}

// Dispatch schedules a callback on the owner goroutine.
// Returns true if the callback was scheduled, false if no dispatcher is
// registered or the callback is nil.
func Dispatch(callback func()) bool {
	fn := registeredDispatch()
	if fn == nil || callback == nil {
		return false
	}
	fn(callback)
	return true
}

func registeredDispatch() Dispatcher {
	dispatchMu.RLock()
	defer dispatchMu.RUnlock()
	return dispatchFunc
}
