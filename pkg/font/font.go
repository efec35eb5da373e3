// Package font provides the font resource and a store that resolves fonts by
// family, style and weight.
package font

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lightsource/lse/internal/assert"
	"github.com/lightsource/lse/pkg/object"
	"github.com/lightsource/lse/pkg/observer"
	"github.com/lightsource/lse/pkg/resource"
)

// Info identifies a font file and the slot it fills in a family.
type Info struct {
	// URI is the font file location, or BuiltinURI.
	URI string
	// Index selects a font inside a collection file.
	Index  int
	Family string
	Style  Style
	Weight Weight
}

// Key returns the store key for the family slot.
func (i Info) Key() string {
	return fmt.Sprintf("%s:%s:%d", normalizeFamily(i.Family), i.Style, int(i.Weight))
}

func normalizeFamily(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}

// Event is dispatched to font observers when a load cycle ends. Face is set
// for READY and Err for ERROR.
type Event struct {
	Font  *Font
	State resource.State
	Face  *Face
	Err   error
}

// Font is a loadable font. Metric methods return zero values unless the font
// is READY.
type Font struct {
	object.Header

	info Info
	life resource.Lifecycle[Event]
	face *Face
	err  error
}

func init() {
	object.MustRegister(object.TypeInfo{
		ID:   object.TypeFont,
		Name: "font",
		New: func(arg any) object.Object {
			info, _ := arg.(Info)
			return &Font{info: info}
		},
		Destroy: func(obj object.Object) {
			obj.(*Font).destroy()
		},
	})
}

// New creates a font in StateInit with one reference.
func New(info Info) *Font {
	obj := object.New(object.TypeFont, info)
	if obj == nil {
		return nil
	}
	return obj.(*Font)
}

func logger() *zap.Logger {
	return resource.Logger().Named("font")
}

func (f *Font) Info() Info            { return f.info }
func (f *Font) Key() string           { return f.info.Key() }
func (f *Font) URI() string           { return f.info.URI }
func (f *Font) Family() string        { return f.info.Family }
func (f *Font) Style() Style          { return f.info.Style }
func (f *Font) Weight() Weight        { return f.info.Weight }
func (f *Font) State() resource.State { return f.life.State() }
func (f *Font) Err() error            { return f.err }

// Face returns the parsed font, or nil unless READY.
func (f *Font) Face() *Face { return f.face }

// IsReady reports whether the font is READY.
func (f *Font) IsReady() bool {
	return f.State() == resource.StateReady && f.face != nil
}

// AddObserver subscribes to load outcomes.
func (f *Font) AddObserver(obs any, callback observer.Callback[Event]) {
	f.life.AddObserver(obs, callback)
}

// RemoveObserver unsubscribes obs.
func (f *Font) RemoveObserver(obs any) {
	f.life.RemoveObserver(obs)
}

// SetLoading starts a load cycle. Observers are not notified.
func (f *Font) SetLoading() {
	f.life.SetLoading()
}

// SetReady stores the parsed face and notifies observers.
func (f *Font) SetReady(face *Face) {
	if !f.canFinish() {
		if face != nil {
			face.Close()
		}
		return
	}
	f.face = face
	f.err = nil
	f.life.Finish(resource.StateReady, &Event{Font: f, State: resource.StateReady, Face: face})
}

// SetError records a failed load and notifies observers.
func (f *Font) SetError(err error) {
	if !f.canFinish() {
		return
	}
	f.err = err
	f.life.Finish(resource.StateError, &Event{Font: f, State: resource.StateError, Err: err})
}

func (f *Font) canFinish() bool {
	if f.life.CanFinish() {
		return true
	}
	if !f.life.IsDestroyed() {
		assert.That(false, "font %s: finish from %s without a new load cycle", f.Key(), f.State())
	}
	return false
}

// UseFontSize selects the pixel size for the metric methods.
// It reports false if the font is not READY or the size is not positive.
func (f *Font) UseFontSize(size float64) bool {
	if !f.IsReady() || size <= 0 {
		return false
	}
	if err := f.face.setSize(size); err != nil {
		logger().Warn("font size rejected", zap.String("font", f.Key()), zap.Float64("size", size), zap.Error(err))
		return false
	}
	return true
}

// FontSize returns the size set with UseFontSize.
func (f *Font) FontSize() float64 {
	if !f.sized() {
		return 0
	}
	return f.face.size
}

// Ascent returns the distance from the baseline to the top of the line.
func (f *Font) Ascent() float64 {
	if !f.sized() {
		return 0
	}
	return f.face.ascent()
}

// LineHeight returns the recommended distance between baselines.
func (f *Font) LineHeight() float64 {
	if !f.sized() {
		return 0
	}
	return f.face.lineHeight()
}

// Advance returns the horizontal advance of r.
func (f *Font) Advance(r rune) float64 {
	if !f.sized() {
		return 0
	}
	return f.face.advance(r)
}

// Kerning returns the kerning adjustment between prev and r.
func (f *Font) Kerning(prev, r rune) float64 {
	if !f.sized() {
		return 0
	}
	return f.face.kerning(prev, r)
}

// AdvanceAndKerning returns Advance(r) plus Kerning(prev, r). A negative prev
// means r starts the run.
func (f *Font) AdvanceAndKerning(prev, r rune) float64 {
	if !f.sized() {
		return 0
	}
	adv := f.face.advance(r)
	if prev >= 0 {
		adv += f.face.kerning(prev, r)
	}
	return adv
}

// Glyph rasterizes r at the current size.
func (f *Font) Glyph(r rune) (Glyph, bool) {
	if !f.sized() {
		return Glyph{}, false
	}
	return f.face.glyph(r)
}

func (f *Font) sized() bool {
	return f.IsReady() && f.face.face != nil
}

func (f *Font) destroy() {
	logger().Debug("font destroyed", zap.String("font", f.Key()), zap.Stringer("state", f.State()))
	if f.face != nil {
		f.face.Close()
		f.face = nil
	}
	f.life.Destroy()
}
