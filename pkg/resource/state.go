package resource

import "fmt"

// State is the load state of a resource.
type State int

const (
	// StateInit is the state of a newly constructed resource.
	StateInit State = iota
	// StateLoading means a load has started and has not completed.
	StateLoading
	// StateReady means the payload is available.
	StateReady
	// StateError means the last load attempt failed.
	StateError
	// StateDone means the resource was torn down. No transition leaves it.
	StateDone
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// IsTerminal reports whether s ends a load cycle.
func (s State) IsTerminal() bool {
	return s == StateReady || s == StateError
}
