package resource

// Mode selects how a store loads a resource on a cache miss.
type Mode int

const (
	// ModeSync decodes on the calling goroutine before Acquire returns.
	ModeSync Mode = iota
	// ModeAsync decodes on the store's scheduler and completes on the owner goroutine.
	ModeAsync
)

func (m Mode) String() string {
	switch m {
	case ModeSync:
		return "sync"
	case ModeAsync:
		return "async"
	default:
		return "unknown"
	}
}
