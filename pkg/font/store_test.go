package font

import (
	stderrors "errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/lightsource/lse/pkg/errors"
	"github.com/lightsource/lse/pkg/object"
	"github.com/lightsource/lse/pkg/resource"
)

type countingHandler struct{ errs int }

func (h *countingHandler) HandleError(*errors.ResourceError) { h.errs++ }
func (h *countingHandler) HandlePanic(*errors.PanicError)    {}

func newTestStore(t *testing.T, opts ...resource.Option) *Store {
	t.Helper()
	fs := memoryfs.New()
	if err := fs.MkdirAll("fonts", 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	for name, data := range map[string][]byte{
		"fonts/regular.ttf": goregular.TTF,
		"fonts/bold.ttf":    gobold.TTF,
		"fonts/broken.ttf":  []byte("broken"),
	} {
		if err := vfs.WriteFile(fs, name, data, 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	h := &countingHandler{}
	errors.SetHandler(h)
	t.Cleanup(func() { errors.SetHandler(nil) })

	opts = append([]resource.Option{resource.WithName(t.Name())}, opts...)
	s := NewStore(NewDecoder(fs, "fonts"), opts...)
	t.Cleanup(s.Close)
	return s
}

func addTestFonts(t *testing.T, s *Store) (regular, bold *Font) {
	t.Helper()
	regular, err := s.AddFont(Info{URI: "regular.ttf", Family: "Sans", Weight: WeightNormal}, resource.ModeSync)
	if err != nil {
		t.Fatalf("AddFont regular: %v", err)
	}
	bold, err = s.AddFont(Info{URI: "bold.ttf", Family: "Sans", Weight: WeightBold}, resource.ModeSync)
	if err != nil {
		t.Fatalf("AddFont bold: %v", err)
	}
	return regular, bold
}

func TestStoreBuiltin(t *testing.T) {
	s := newTestStore(t)
	b := s.Builtin()
	if b == nil || !b.IsReady() {
		t.Fatalf("builtin font not ready: %v", b)
	}
	if b.Family() != BuiltinFamily {
		t.Errorf("builtin family = %q", b.Family())
	}
}

func TestStoreAddFont(t *testing.T) {
	s := newTestStore(t)
	regular, bold := addTestFonts(t, s)

	if !regular.IsReady() || !bold.IsReady() {
		t.Fatalf("states = %s, %s; want ready", regular.State(), bold.State())
	}
	if s.Get("sans", StyleNormal, WeightBold) != bold {
		t.Error("Get did not return the bold font")
	}
	if got := len(s.Fonts()); got != 2 {
		t.Errorf("len(Fonts) = %d, want 2", got)
	}

	_, err := s.AddFont(Info{URI: "bold.ttf", Family: "SANS", Weight: WeightBold}, resource.ModeSync)
	if !stderrors.Is(err, ErrDuplicateFont) {
		t.Errorf("duplicate AddFont error = %v, want ErrDuplicateFont", err)
	}
}

func TestStoreAddFontInvalid(t *testing.T) {
	s := newTestStore(t)
	tests := []struct {
		name string
		info Info
	}{
		{"no uri", Info{Family: "Sans", Weight: WeightNormal}},
		{"no family", Info{URI: "regular.ttf", Weight: WeightNormal}},
		{"no weight", Info{URI: "regular.ttf", Family: "Sans"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.AddFont(tt.info, resource.ModeSync); !stderrors.Is(err, ErrInvalidFont) {
				t.Errorf("AddFont error = %v, want ErrInvalidFont", err)
			}
		})
	}
}

func TestStoreAddFonts(t *testing.T) {
	s := newTestStore(t)
	err := s.AddFonts([]Info{
		{URI: "regular.ttf", Family: "Sans", Weight: WeightNormal},
		{URI: "regular.ttf", Family: "Sans", Weight: WeightNormal},
		{URI: "missing.ttf", Family: "Missing", Weight: WeightNormal},
		{Family: "Sans", Weight: WeightBold},
	}, resource.ModeSync)

	var merr *multierror.Error
	if !stderrors.As(err, &merr) {
		t.Fatalf("AddFonts error = %v, want a multierror", err)
	}
	if len(merr.Errors) != 2 {
		t.Errorf("got %d errors, want 2: %v", len(merr.Errors), merr)
	}
	if f := s.Get("missing", StyleNormal, WeightNormal); f == nil || f.State() != resource.StateError {
		t.Error("a missing file should leave the font registered in error")
	}

	if err := s.AddFonts([]Info{{URI: "bold.ttf", Family: "Sans", Weight: WeightBold}}, resource.ModeSync); err != nil {
		t.Errorf("AddFonts = %v, want nil", err)
	}
}

func TestStoreAcquireFallback(t *testing.T) {
	s := newTestStore(t)
	regular, bold := addTestFonts(t, s)
	if _, err := s.AddFont(Info{URI: "broken.ttf", Family: "Broken", Weight: WeightNormal}, resource.ModeSync); err != nil {
		t.Fatalf("AddFont broken: %v", err)
	}

	tests := []struct {
		name   string
		family string
		style  Style
		weight Weight
		want   *Font
	}{
		{"exact", "Sans", StyleNormal, WeightNormal, regular},
		{"case insensitive", "sans", StyleNormal, WeightBold, bold},
		{"closest weight", "Sans", StyleNormal, WeightBlack, bold},
		{"other style", "Sans", StyleItalic, WeightLight, regular},
		{"unknown family", "Serif", StyleNormal, WeightNormal, s.Builtin()},
		{"failed load", "Broken", StyleNormal, WeightNormal, s.Builtin()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := object.RefCount(tt.want)
			f := s.Acquire(tt.family, tt.style, tt.weight)
			if f != tt.want {
				t.Fatalf("Acquire = %s, want %s", f.Key(), tt.want.Key())
			}
			if object.RefCount(f) != before+1 {
				t.Errorf("RefCount = %d, want %d", object.RefCount(f), before+1)
			}
			if got := s.Release(f); got != nil {
				t.Errorf("Release = %v, want nil", got)
			}
			if object.RefCount(f) != before {
				t.Errorf("RefCount after Release = %d, want %d", object.RefCount(f), before)
			}
		})
	}
}

func TestStoreClose(t *testing.T) {
	s := newTestStore(t)
	regular, bold := addTestFonts(t, s)
	held := s.Acquire("Sans", StyleNormal, WeightNormal)

	s.Close()
	if bold.State() != resource.StateDone {
		t.Errorf("unheld font state = %s, want done", bold.State())
	}
	if held != regular || !held.IsReady() || !held.UseFontSize(10) {
		t.Error("a held font should stay usable after Close")
	}
	if s.Acquire("Sans", StyleNormal, WeightNormal) != nil {
		t.Error("Acquire after Close should return nil")
	}
	if _, err := s.AddFont(Info{URI: "bold.ttf", Family: "Sans", Weight: WeightBold}, resource.ModeSync); !stderrors.Is(err, ErrStoreClosed) {
		t.Errorf("AddFont after Close = %v, want ErrStoreClosed", err)
	}
	s.Release(held)
	if held.State() != resource.StateDone {
		t.Errorf("state = %s after last release, want done", held.State())
	}
}

func TestStoreAddFontAsync(t *testing.T) {
	queue := resource.NewQueue()
	pool := resource.NewPool(1)
	s := newTestStore(t, resource.WithScheduler(pool), resource.WithDispatcher(queue.Post))

	f, err := s.AddFont(Info{URI: "bold.ttf", Family: "Sans", Weight: WeightBold}, resource.ModeAsync)
	if err != nil {
		t.Fatalf("AddFont: %v", err)
	}
	if f.State() != resource.StateLoading {
		t.Fatalf("state = %s, want loading", f.State())
	}
	var got resource.State
	f.AddObserver("obs", func(e *Event, _ any) {
		got = e.State
		if e.Face == nil || e.Face != f.Face() {
			t.Error("READY event should carry the parsed face")
		}
	})

	pool.Wait()
	queue.RunPending()
	if got != resource.StateReady || !f.IsReady() {
		t.Errorf("event state = %s, font state = %s", got, f.State())
	}
}
