package image

import (
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/lightsource/lse/pkg/resource"
)

// Store caches images by URI.
type Store = resource.Store[Bitmap, *Image]

// StoreEvent is delivered to store observers when an image is evicted.
type StoreEvent = resource.StoreEvent[*Image]

// NewStore creates an image store decoding with d. A nil decoder reads from
// the OS filesystem.
func NewStore(d *Decoder, opts ...resource.Option) *Store {
	if d == nil {
		d = NewDecoder(nil)
	}
	opts = append([]resource.Option{resource.WithName("image")}, opts...)
	return resource.NewStore[Bitmap](New, d, opts...)
}

// NewFSStore is shorthand for NewStore(NewDecoder(fs, WithRoot(root)), opts...).
func NewFSStore(fs vfs.FileSystem, root string, opts ...resource.Option) *Store {
	return NewStore(NewDecoder(fs, WithRoot(root)), opts...)
}
