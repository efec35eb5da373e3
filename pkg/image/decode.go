package image

import (
	"bytes"
	"context"
	"fmt"
	stdimage "image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/url"
	"path"
	"strings"

	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/lightsource/lse/pkg/resource"
)

// SVGDataPrefix marks a URI whose remainder is inline SVG markup.
const SVGDataPrefix = "data:image/svg+xml,"

// DefaultMaxPixels is the largest decoded area accepted by a Decoder unless
// WithMaxPixels says otherwise (a 16384x16384 texture).
const DefaultMaxPixels = 16384 * 16384

// Decoder loads image files from a virtual filesystem.
//
// Decode only reads the image URI, so it is safe to run on a worker goroutine.
type Decoder struct {
	fs     vfs.FileSystem
	root   string
	format ColorFormat
	scale  float64
	limit  int64
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithRoot resolves relative URIs against dir.
func WithRoot(dir string) DecoderOption {
	return func(d *Decoder) { d.root = dir }
}

// WithFormat sets the output pixel format (FormatRGBA or FormatBGRA).
func WithFormat(f ColorFormat) DecoderOption {
	return func(d *Decoder) { d.format = f }
}

// WithSVGScale sets the scale applied to an SVG view box when rasterizing.
func WithSVGScale(scale float64) DecoderOption {
	return func(d *Decoder) { d.scale = scale }
}

// WithMaxPixels sets the largest width*height a decoded image may have.
// Larger images fail with resource.ErrUnsupportedFormat before any pixel
// memory is allocated. A non-positive value uses DefaultMaxPixels.
func WithMaxPixels(n int64) DecoderOption {
	return func(d *Decoder) { d.limit = n }
}

// NewDecoder creates a decoder reading from fs. A nil fs uses the OS filesystem.
func NewDecoder(fs vfs.FileSystem, opts ...DecoderOption) *Decoder {
	if fs == nil {
		fs = osfs.New()
	}
	d := &Decoder{fs: fs, format: FormatRGBA, scale: 1}
	for _, opt := range opts {
		opt(d)
	}
	if d.limit <= 0 {
		d.limit = DefaultMaxPixels
	}
	return d
}

// Decode reads and decodes the image at img.URI().
func (d *Decoder) Decode(ctx context.Context, img *Image) (Bitmap, error) {
	uri := img.URI()
	if data, ok := strings.CutPrefix(uri, SVGDataPrefix); ok {
		markup, err := url.PathUnescape(data)
		if err != nil {
			markup = data
		}
		return d.convert(d.rasterizeSVG([]byte(markup)))
	}

	data, err := vfs.ReadFile(d.fs, d.resolve(uri))
	if err != nil {
		if vfs.IsErrNotExist(err) {
			return Bitmap{}, fmt.Errorf("%w: %s", resource.ErrNotFound, uri)
		}
		return Bitmap{}, fmt.Errorf("read %s: %w", uri, err)
	}
	if err := ctx.Err(); err != nil {
		return Bitmap{}, err
	}

	if IsSVG(data) {
		return d.convert(d.rasterizeSVG(data))
	}
	return d.convert(d.decodeRaster(data))
}

func (d *Decoder) resolve(uri string) string {
	if d.root == "" || path.IsAbs(uri) {
		return uri
	}
	return vfs.Join(d.fs, d.root, uri)
}

// IsSVG reports whether data looks like SVG markup.
func IsSVG(data []byte) bool {
	data = bytes.TrimLeft(data, " \t\r\n\ufeff")
	return bytes.HasPrefix(data, []byte("<?")) ||
		bytes.HasPrefix(data, []byte("<!")) ||
		bytes.HasPrefix(data, []byte("<svg"))
}

func (d *Decoder) checkSize(w, h float64) error {
	if w*h > float64(d.limit) {
		return fmt.Errorf("%w: %.0fx%.0f exceeds %d pixels", resource.ErrUnsupportedFormat, w, h, d.limit)
	}
	return nil
}

func (d *Decoder) decodeRaster(data []byte) (*stdimage.RGBA, error) {
	cfg, _, err := stdimage.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, unsupported(err)
	}
	if err := d.checkSize(float64(cfg.Width), float64(cfg.Height)); err != nil {
		return nil, err
	}
	src, _, err := stdimage.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, unsupported(err)
	}
	if rgba, ok := src.(*stdimage.RGBA); ok && rgba.Rect.Min == (stdimage.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba, nil
	}
	b := src.Bounds()
	dst := stdimage.NewRGBA(stdimage.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	return dst, nil
}

func unsupported(err error) error {
	if err == stdimage.ErrFormat {
		return resource.ErrUnsupportedFormat
	}
	return fmt.Errorf("%w: %v", resource.ErrUnsupportedFormat, err)
}

func (d *Decoder) rasterizeSVG(markup []byte) (*stdimage.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(markup), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("%w: svg: %v", resource.ErrUnsupportedFormat, err)
	}
	fw := icon.ViewBox.W*d.scale + 0.5
	fh := icon.ViewBox.H*d.scale + 0.5
	if !(fw >= 1 && fh >= 1) {
		return nil, fmt.Errorf("%w: svg has an empty view box", resource.ErrUnsupportedFormat)
	}
	if err := d.checkSize(math.Floor(fw), math.Floor(fh)); err != nil {
		return nil, err
	}
	w, h := int(fw), int(fh)

	icon.SetTarget(0, 0, float64(w), float64(h))
	dst := stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return dst, nil
}

func (d *Decoder) convert(src *stdimage.RGBA, err error) (Bitmap, error) {
	if err != nil {
		return Bitmap{}, err
	}
	b := Bitmap{
		Pixels: src.Pix,
		Width:  src.Rect.Dx(),
		Height: src.Rect.Dy(),
		Format: FormatRGBA,
	}
	if d.format == FormatBGRA {
		b = b.SwapRB()
	}
	return b, nil
}

// SwapRB converts between RGBA and BGRA in place and returns the bitmap with
// the other format. Other formats are returned unchanged.
func (b Bitmap) SwapRB() Bitmap {
	switch b.Format {
	case FormatRGBA:
		b.Format = FormatBGRA
	case FormatBGRA:
		b.Format = FormatRGBA
	default:
		return b
	}
	for i := 0; i+3 < len(b.Pixels); i += 4 {
		b.Pixels[i], b.Pixels[i+2] = b.Pixels[i+2], b.Pixels[i]
	}
	return b
}
