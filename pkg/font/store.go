package font

import (
	stderrors "errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/lightsource/lse/pkg/object"
	"github.com/lightsource/lse/pkg/resource"
)

var (
	// ErrDuplicateFont is returned when a family slot is already taken.
	ErrDuplicateFont = stderrors.New("font: duplicate family, style and weight")
	// ErrInvalidFont is returned for a font without a URI or family, or with an invalid weight.
	ErrInvalidFont = stderrors.New("font: invalid font info")
	// ErrStoreClosed is returned by AddFont after Close.
	ErrStoreClosed = stderrors.New("font: store closed")
)

// BuiltinFamily is the family name of the builtin font. Its normal 400 slot
// is reserved.
const BuiltinFamily = "go"

type slot struct {
	style  Style
	weight Weight
}

// Store registers fonts by family, style and weight, and resolves requests
// with fallbacks. Registered fonts stay loaded until Close. Like the
// resource store it wraps, a Store belongs to the owner goroutine.
type Store struct {
	fonts    *resource.Store[*Face, *Font]
	families map[string]map[slot]*Font
	builtin  *Font
	log      *zap.Logger
}

// NewStore creates a font store decoding with d and loads the builtin font.
// A nil decoder reads from the OS filesystem.
func NewStore(d *Decoder, opts ...resource.Option) *Store {
	if d == nil {
		d = NewDecoder(nil, "")
	}
	opts = append([]resource.Option{resource.WithName("font")}, opts...)
	s := &Store{
		fonts:    resource.NewStore[*Face, *Font](nil, d, opts...),
		families: make(map[string]map[slot]*Font),
		log:      logger(),
	}
	info := Info{URI: BuiltinURI, Family: BuiltinFamily, Style: StyleNormal, Weight: WeightNormal}
	s.builtin = s.fonts.AcquireFunc(info.Key(), resource.ModeSync, func(string) *Font { return New(info) })
	return s
}

// AddFont registers a font for a family slot and starts loading it. The
// returned font is owned by the store; take a reference to keep it past
// Close.
func (s *Store) AddFont(info Info, mode resource.Mode) (*Font, error) {
	if info.URI == "" || normalizeFamily(info.Family) == "" || !info.Weight.Valid() {
		return nil, fmt.Errorf("%w: uri=%q family=%q weight=%d", ErrInvalidFont, info.URI, info.Family, int(info.Weight))
	}
	if s.fonts.Closed() {
		return nil, ErrStoreClosed
	}
	key := info.Key()
	if s.fonts.Get(key) != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateFont, key)
	}

	f := s.fonts.AcquireFunc(key, mode, func(string) *Font { return New(info) })
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFont, key)
	}
	family := normalizeFamily(info.Family)
	if s.families[family] == nil {
		s.families[family] = make(map[slot]*Font)
	}
	s.families[family][slot{info.Style, info.Weight}] = f
	s.log.Debug("font added", zap.String("font", key), zap.Stringer("mode", mode), zap.Stringer("state", f.State()))
	return f, nil
}

// AddFonts registers every font in infos and returns the combined errors of
// the ones that could not be added. Load failures are not errors here; they
// leave the font in StateError.
func (s *Store) AddFonts(infos []Info, mode resource.Mode) error {
	var result *multierror.Error
	for _, info := range infos {
		if _, err := s.AddFont(info, mode); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Acquire resolves a font and takes a reference for the caller. It tries the
// exact slot, then the closest font of the family, then the builtin font.
// It returns nil only after Close.
func (s *Store) Acquire(family string, style Style, weight Weight) *Font {
	f := s.resolve(family, style, weight)
	object.Ref(f)
	return f
}

// Release drops a reference taken by Acquire and returns nil.
func (s *Store) Release(f *Font) *Font {
	if f != nil {
		object.Unref(f)
	}
	return nil
}

// Get returns the font registered for an exact slot without taking a reference.
func (s *Store) Get(family string, style Style, weight Weight) *Font {
	return s.families[normalizeFamily(family)][slot{style, weight}]
}

// Builtin returns the builtin font, or nil after Close.
func (s *Store) Builtin() *Font {
	return s.builtin
}

// Fonts returns the registered fonts ordered by key, without the builtin font.
func (s *Store) Fonts() []*Font {
	var out []*Font
	for _, slots := range s.families {
		for _, f := range slots {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b *Font) int { return strings.Compare(a.Key(), b.Key()) })
	return out
}

// Close releases every registered font and the builtin font. Fonts still
// referenced by callers stay usable until released.
func (s *Store) Close() {
	if s.fonts.Closed() {
		return
	}
	for _, f := range s.Fonts() {
		s.fonts.Release(f)
	}
	s.fonts.Release(s.builtin)
	s.builtin = nil
	clear(s.families)
	s.fonts.Close()
}

func (s *Store) resolve(family string, style Style, weight Weight) *Font {
	slots := s.families[normalizeFamily(family)]
	if f := slots[slot{style, weight}]; f != nil && f.State() != resource.StateError {
		return f
	}

	var best *Font
	bestScore := -1
	for sl, f := range slots {
		if f.State() == resource.StateError {
			continue
		}
		score := abs(int(sl.weight) - int(weight))
		if sl.style != style {
			score += 1000
		}
		if best == nil || score < bestScore || (score == bestScore && f.Key() < best.Key()) {
			best, bestScore = f, score
		}
	}
	if best != nil {
		return best
	}
	return s.builtin
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
