package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lightsource/lse/pkg/image"
	"github.com/lightsource/lse/pkg/object"
	"github.com/lightsource/lse/pkg/resource"
)

type inspectOptions struct {
	*globalOptions
	async   bool
	metrics bool
}

func newInspectCommand(g *globalOptions) *cobra.Command {
	o := &inspectOptions{globalOptions: g}
	cmd := &cobra.Command{
		Use:   "inspect <uri>...",
		Short: "Load images and report their state",
		Long: `Load each image through an image store and print its state, size and
pixel format. URIs are resolved against assets.root. Inline SVG can be
passed as data:image/svg+xml,<markup>.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
	cmd.Flags().BoolVar(&o.async, "async", false, "decode on the worker pool")
	cmd.Flags().BoolVar(&o.metrics, "metrics", false, "print store metrics after loading")
	return cmd
}

func (o *inspectOptions) run(ctx context.Context, out io.Writer, uris []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	reg := prometheus.NewRegistry()
	if o.metrics {
		resource.RegisterMetrics(reg)
	}

	pool := resource.NewPool(o.cfg.Workers)
	queue := resource.NewQueue()
	decoder := image.NewDecoder(o.fs,
		image.WithRoot(o.cfg.AssetsRoot),
		image.WithFormat(o.cfg.Format),
		image.WithSVGScale(o.cfg.SVGScale),
	)
	store := image.NewStore(decoder,
		resource.WithScheduler(pool),
		resource.WithDispatcher(queue.Post),
		resource.WithLogger(o.logger.Named("image")),
	)
	defer store.Close()

	mode := resource.ModeSync
	if o.async {
		mode = resource.ModeAsync
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	pending := 0
	images := make([]*image.Image, 0, len(uris))
	for i, uri := range uris {
		img := store.Acquire(uri, mode)
		if img == nil {
			return fmt.Errorf("invalid uri %q", uri)
		}
		images = append(images, img)
		if img.State() == resource.StateLoading {
			pending++
			img.AddObserver(i, func(*image.Event, any) {
				if pending--; pending == 0 {
					cancel()
				}
			})
		}
	}
	if pending > 0 {
		o.logger.Debug("waiting for async loads", zap.Int("pending", pending))
		if err := queue.Run(ctx); err != nil && pending > 0 {
			return err
		}
	}

	rows := make([][]string, 0, len(images))
	for _, img := range images {
		rows = append(rows, imageRow(img))
	}
	for _, img := range images {
		store.Release(img)
	}
	if err := renderTable(out, []string{"URI", "State", "Size", "Format", "Refs", "Error"}, rows); err != nil {
		return err
	}

	if o.metrics {
		return writeMetrics(out, reg)
	}
	return nil
}

func imageRow(img *image.Image) []string {
	size := "-"
	if img.IsReady() {
		size = fmt.Sprintf("%dx%d", img.Width(), img.Height())
	}
	errText := ""
	if err := img.Err(); err != nil {
		errText = err.Error()
	}
	return []string{
		shortURI(img.URI()),
		stateCell(img.State()),
		size,
		img.Format().String(),
		fmt.Sprint(object.RefCount(img)),
		errText,
	}
}

func shortURI(uri string) string {
	if strings.HasPrefix(uri, image.SVGDataPrefix) && len(uri) > 40 {
		return uri[:40] + "..."
	}
	return uri
}

// writeMetrics prints the lse_ series of reg as "name{labels} value" lines.
func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			value := m.GetCounter().GetValue()
			if g := m.GetGauge(); g != nil {
				value = g.GetValue()
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), value))
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
