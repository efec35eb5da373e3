package resource

import (
	stderrors "errors"
	"io/fs"

	"github.com/lightsource/lse/pkg/errors"
)

// Sentinel errors returned by decoders.
var (
	// ErrNotFound is returned when an asset does not exist.
	ErrNotFound = stderrors.New("resource: not found")
	// ErrUnsupportedFormat is returned when an asset is not in a format the decoder understands.
	ErrUnsupportedFormat = stderrors.New("resource: unsupported format")
	// ErrDecodePanic wraps a panic recovered from a decoder.
	ErrDecodePanic = stderrors.New("resource: decoder panicked")
)

// ErrorKind classifies a load error for reporting.
func ErrorKind(err error) errors.ErrorKind {
	switch {
	case err == nil:
		return errors.KindUnknown
	case stderrors.Is(err, ErrDecodePanic):
		return errors.KindPanic
	case stderrors.Is(err, ErrNotFound), stderrors.Is(err, fs.ErrNotExist), stderrors.Is(err, fs.ErrPermission):
		return errors.KindIO
	default:
		return errors.KindDecode
	}
}
