package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lightsource/lse/pkg/errors"
	"github.com/lightsource/lse/pkg/font"
	"github.com/lightsource/lse/pkg/resource"
)

type fontsOptions struct {
	*globalOptions
	size   float64
	sample string
}

func newFontsCommand(g *globalOptions) *cobra.Command {
	o := &fontsOptions{globalOptions: g}
	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "Load the configured fonts and report their metrics",
		Long: `Register every font listed under fonts in lse.yaml, plus the builtin
font, and print their state and metrics at --size.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd.OutOrStdout())
		},
	}
	cmd.Flags().Float64Var(&o.size, "size", 16, "font size in pixels")
	cmd.Flags().StringVar(&o.sample, "text", "Hello, world", "sample text to measure")
	return cmd
}

func (o *fontsOptions) run(out io.Writer) error {
	if o.size <= 0 {
		return fmt.Errorf("--size must be positive (got %v)", o.size)
	}
	store := font.NewStore(font.NewDecoder(o.fs, o.cfg.AssetsRoot),
		resource.WithLogger(o.logger.Named("font")),
	)
	defer store.Close()

	if err := store.AddFonts(o.cfg.Fonts, resource.ModeSync); err != nil {
		errors.Report(&errors.ResourceError{Op: "fonts.add", Kind: errors.KindConfig, Err: err})
	}

	fonts := append([]*font.Font{store.Builtin()}, store.Fonts()...)
	rows := make([][]string, 0, len(fonts))
	for _, f := range fonts {
		rows = append(rows, o.fontRow(f))
	}
	return renderTable(out, []string{"Family", "Style", "Weight", "URI", "State", "Ascent", "Line height", "Width"}, rows)
}

func (o *fontsOptions) fontRow(f *font.Font) []string {
	ascent, height, width := "-", "-", "-"
	if f.UseFontSize(o.size) {
		ascent = formatFloat(f.Ascent())
		height = formatFloat(f.LineHeight())
		width = formatFloat(measure(f, o.sample))
	}
	return []string{
		f.Family(),
		f.Style().String(),
		f.Weight().String(),
		f.URI(),
		stateCell(f.State()),
		ascent,
		height,
		width,
	}
}

func measure(f *font.Font, text string) float64 {
	var width float64
	prev := rune(-1)
	for _, r := range text {
		width += f.AdvanceAndKerning(prev, r)
		prev = r
	}
	return width
}
