package font

import (
	"fmt"
	stdimage "image"

	xdraw "golang.org/x/image/draw"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/lightsource/lse/pkg/resource"
)

// Face is the parsed payload of a font: one font of an SFNT collection and
// the sized face used for metrics.
type Face struct {
	font   *opentype.Font
	family string
	size   float64
	face   xfont.Face
}

// Glyph is a rasterized glyph. Bounds are relative to the origin on the
// baseline, so Bounds.Min.Y is negative for glyphs above the baseline.
type Glyph struct {
	Mask    *stdimage.Alpha
	Bounds  stdimage.Rectangle
	Advance float64
}

// ParseFace parses font index of a TTF, OTF or collection file.
func ParseFace(data []byte, index int) (*Face, error) {
	c, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", resource.ErrUnsupportedFormat, err)
	}
	if index < 0 || index >= c.NumFonts() {
		return nil, fmt.Errorf("%w: font index %d out of range, file has %d", resource.ErrUnsupportedFormat, index, c.NumFonts())
	}
	f, err := c.Font(index)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", resource.ErrUnsupportedFormat, err)
	}
	family, _ := f.Name(nil, sfnt.NameIDFamily)
	return &Face{font: f, family: family}, nil
}

// Family returns the family name stored in the font, which may be empty.
func (f *Face) Family() string { return f.family }

// NumGlyphs returns the number of glyphs in the font.
func (f *Face) NumGlyphs() int { return f.font.NumGlyphs() }

// Size returns the current size in pixels, or 0 before setSize.
func (f *Face) Size() float64 { return f.size }

func (f *Face) setSize(size float64) error {
	if size == f.size && f.face != nil {
		return nil
	}
	face, err := opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: xfont.HintingNone,
	})
	if err != nil {
		return err
	}
	f.Close()
	f.face = face
	f.size = size
	return nil
}

func (f *Face) ascent() float64 {
	return toFloat(f.face.Metrics().Ascent)
}

func (f *Face) lineHeight() float64 {
	return toFloat(f.face.Metrics().Height)
}

func (f *Face) advance(r rune) float64 {
	adv, ok := f.face.GlyphAdvance(r)
	if !ok {
		return 0
	}
	return toFloat(adv)
}

func (f *Face) kerning(prev, r rune) float64 {
	return toFloat(f.face.Kern(prev, r))
}

func (f *Face) glyph(r rune) (Glyph, bool) {
	dr, mask, maskp, adv, ok := f.face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return Glyph{}, false
	}
	// The face reuses its mask buffer between calls.
	dst := stdimage.NewAlpha(stdimage.Rect(0, 0, dr.Dx(), dr.Dy()))
	xdraw.Draw(dst, dst.Bounds(), mask, maskp, xdraw.Src)
	return Glyph{Mask: dst, Bounds: dr, Advance: toFloat(adv)}, true
}

// Close releases the sized face.
func (f *Face) Close() {
	if f.face != nil {
		f.face.Close()
		f.face = nil
	}
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
