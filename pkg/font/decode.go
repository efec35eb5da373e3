package font

import (
	"context"
	"fmt"
	"path"

	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/lightsource/lse/pkg/resource"
)

// BuiltinURI names the font compiled into the binary (Go Regular).
const BuiltinURI = "builtin:goregular"

// Decoder loads font files from a virtual filesystem.
type Decoder struct {
	fs   vfs.FileSystem
	root string
}

// NewDecoder creates a decoder reading from fs, resolving relative URIs
// against root. A nil fs uses the OS filesystem.
func NewDecoder(fs vfs.FileSystem, root string) *Decoder {
	if fs == nil {
		fs = osfs.New()
	}
	return &Decoder{fs: fs, root: root}
}

// Decode reads and parses the font described by f.Info().
func (d *Decoder) Decode(ctx context.Context, f *Font) (*Face, error) {
	info := f.Info()
	if info.URI == BuiltinURI {
		return ParseFace(goregular.TTF, 0)
	}

	name := info.URI
	if d.root != "" && !path.IsAbs(name) {
		name = vfs.Join(d.fs, d.root, name)
	}
	data, err := vfs.ReadFile(d.fs, name)
	if err != nil {
		if vfs.IsErrNotExist(err) {
			return nil, fmt.Errorf("%w: %s", resource.ErrNotFound, info.URI)
		}
		return nil, fmt.Errorf("read %s: %w", info.URI, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseFace(data, info.Index)
}
