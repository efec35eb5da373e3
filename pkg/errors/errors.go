// Package errors provides structured error reporting for the lse runtime.
//
// Load failures never surface as return values from resource acquisition;
// they become the ERROR state of the resource. The runtime still reports them
// here so applications can log or collect them in one place.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindIO indicates a failure to open or read an asset.
	KindIO
	// KindDecode indicates an unsupported or corrupt asset format.
	KindDecode
	// KindUsage indicates a caller contract violation.
	KindUsage
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindConfig indicates an invalid configuration.
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindDecode:
		return "decode"
	case KindUsage:
		return "usage"
	case KindPanic:
		return "panic"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// ResourceError represents a failure related to a keyed resource.
type ResourceError struct {
	// Op is the operation that failed (e.g., "image.decode").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Key is the resource key (usually a URI), if applicable.
	Key string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ResourceError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s [%s] key=%s: %v", e.Op, e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "image.decode").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by the runtime.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *ResourceError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
