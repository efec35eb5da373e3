// Package image provides the image resource: a reference counted bitmap that
// is loaded from the asset filesystem by a [Store].
package image

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lightsource/lse/internal/assert"
	"github.com/lightsource/lse/pkg/object"
	"github.com/lightsource/lse/pkg/observer"
	"github.com/lightsource/lse/pkg/resource"
)

// ColorFormat describes the pixel layout of a bitmap.
type ColorFormat int

const (
	FormatUnknown ColorFormat = iota
	FormatRGBA
	FormatBGRA
	FormatAlpha
)

// String returns a human-readable representation of the format.
func (f ColorFormat) String() string {
	switch f {
	case FormatUnknown:
		return "unknown"
	case FormatRGBA:
		return "rgba"
	case FormatBGRA:
		return "bgra"
	case FormatAlpha:
		return "alpha"
	default:
		return fmt.Sprintf("ColorFormat(%d)", int(f))
	}
}

// BytesPerPixel returns the pixel size in bytes, or 0 for FormatUnknown.
func (f ColorFormat) BytesPerPixel() int {
	switch f {
	case FormatRGBA, FormatBGRA:
		return 4
	case FormatAlpha:
		return 1
	default:
		return 0
	}
}

// Bitmap is the decoded payload of an image. Rows are tightly packed.
type Bitmap struct {
	Pixels []byte
	Width  int
	Height int
	Format ColorFormat
}

// Stride returns the length of one row in bytes.
func (b Bitmap) Stride() int {
	return b.Width * b.Format.BytesPerPixel()
}

// Empty reports whether the bitmap has no area.
func (b Bitmap) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Event is dispatched to image observers when a load cycle ends. Bitmap is
// set for READY and Err for ERROR. Observers must not keep the event.
type Event struct {
	Image  *Image
	State  resource.State
	Bitmap Bitmap
	Err    error
}

// Image is a loadable bitmap identified by its URI.
//
// Images are created through object.New (or New) and live until their last
// reference is released. State changes happen on the owner goroutine.
type Image struct {
	object.Header

	uri    string
	life   resource.Lifecycle[Event]
	bitmap Bitmap
	err    error
}

func init() {
	object.MustRegister(object.TypeInfo{
		ID:   object.TypeImage,
		Name: "image",
		New: func(arg any) object.Object {
			uri, _ := arg.(string)
			return &Image{uri: uri}
		},
		Destroy: func(obj object.Object) {
			obj.(*Image).destroy()
		},
	})
}

// New creates an image in StateInit with one reference.
func New(uri string) *Image {
	obj := object.New(object.TypeImage, uri)
	if obj == nil {
		return nil
	}
	return obj.(*Image)
}

func logger() *zap.Logger {
	return resource.Logger().Named("image")
}

// URI returns the location the image is loaded from.
func (img *Image) URI() string { return img.uri }

// Key returns the store key, which is the URI.
func (img *Image) Key() string { return img.uri }

// State returns the load state.
func (img *Image) State() resource.State { return img.life.State() }

// Width returns the pixel width, or 0 before the image is ready.
func (img *Image) Width() int { return img.bitmap.Width }

// Height returns the pixel height, or 0 before the image is ready.
func (img *Image) Height() int { return img.bitmap.Height }

// Format returns the pixel format, or FormatUnknown before the image is ready.
func (img *Image) Format() ColorFormat { return img.bitmap.Format }

// Bitmap returns the decoded pixels. The slice is shared with the image.
func (img *Image) Bitmap() Bitmap { return img.bitmap }

// Err returns the error of the last failed load.
func (img *Image) Err() error { return img.err }

// AddObserver subscribes to load outcomes.
func (img *Image) AddObserver(obs any, callback observer.Callback[Event]) {
	img.life.AddObserver(obs, callback)
}

// RemoveObserver unsubscribes obs.
func (img *Image) RemoveObserver(obs any) {
	img.life.RemoveObserver(obs)
}

// SetLoading starts a load cycle. Observers are not notified.
func (img *Image) SetLoading() {
	img.life.SetLoading()
}

// SetReady stores the decoded bitmap and notifies observers.
// It is ignored once the image has been destroyed.
func (img *Image) SetReady(bitmap Bitmap) {
	if !img.canFinish() {
		return
	}
	img.bitmap = bitmap
	img.err = nil
	img.life.Finish(resource.StateReady, &Event{Image: img, State: resource.StateReady, Bitmap: bitmap})
}

// SetError records a failed load and notifies observers.
func (img *Image) SetError(err error) {
	if !img.canFinish() {
		return
	}
	img.bitmap = Bitmap{}
	img.err = err
	img.life.Finish(resource.StateError, &Event{Image: img, State: resource.StateError, Err: err})
}

func (img *Image) canFinish() bool {
	if img.life.CanFinish() {
		return true
	}
	if !img.life.IsDestroyed() {
		assert.That(false, "image %q: finish from %s without a new load cycle", img.uri, img.State())
	}
	return false
}

// IsReady reports whether the image is READY.
func (img *Image) IsReady() bool {
	return img.State() == resource.StateReady
}

// CanRender reports whether the image is READY with a non-empty bitmap.
func (img *Image) CanRender() bool {
	return img.IsReady() && !img.bitmap.Empty() && len(img.bitmap.Pixels) > 0
}

// ReleasePixels drops the pixel buffer while keeping the dimensions. The
// image stays READY but can no longer render until it is loaded again.
func (img *Image) ReleasePixels() {
	img.bitmap.Pixels = nil
}

func (img *Image) destroy() {
	logger().Debug("image destroyed", zap.String("uri", img.uri), zap.Stringer("state", img.State()))
	img.bitmap = Bitmap{}
	img.life.Destroy()
}
