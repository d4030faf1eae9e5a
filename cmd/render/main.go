// Command twpics-render applies the editor's filters to an image file
// without a browser and writes the edited copy next to it (or to --out-dir).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gogpu/gg"
	"github.com/spf13/cobra"

	"thirdcoast.systems/twpics/pkg/canvas"
	"thirdcoast.systems/twpics/pkg/editor"
	"thirdcoast.systems/twpics/pkg/filters"
	"thirdcoast.systems/twpics/pkg/imageload"
	"thirdcoast.systems/twpics/pkg/render"
)

type options struct {
	values      map[string]*string
	outDir      string
	format      string
	quality     int
	maxSize     string
	maxPixels   int64
	printFilter bool
}

func newRootCmd() *cobra.Command {
	opts := &options{values: make(map[string]*string)}

	cmd := &cobra.Command{
		Use:   "twpics-render [flags] <image>",
		Short: "Apply photo filters to an image file",
		Long: `Loads an image, applies the same filter chain as the web editor and
writes edited_<name> to the output directory. Filter values are clamped
into range and snapped to their step exactly as the editor sliders are.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, opts, args[0])
		},
	}

	defaults := filters.Defaults()
	for _, name := range filters.Names() {
		d := defaults[name]
		opts.values[name] = cmd.Flags().String(name, d.Value,
			fmt.Sprintf("%s (%s..%s)", filters.LabelForFilter(name), d.Min, d.Max))
	}
	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "o", "", "output directory (default: next to the input)")
	cmd.Flags().StringVar(&opts.format, "format", "png", "output format: png or jpeg")
	cmd.Flags().IntVar(&opts.quality, "jpeg-quality", canvas.DefaultJPEGQuality, "jpeg quality, 1-100")
	cmd.Flags().StringVar(&opts.maxSize, "max-size", "25MB", "largest input file accepted")
	cmd.Flags().Int64Var(&opts.maxPixels, "max-pixels", imageload.DefaultMaxPixels, "largest decoded image area accepted, in pixels")
	cmd.Flags().BoolVar(&opts.printFilter, "print-filter", false, "print the composed filter expression and exit")

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, opts *options, path string) error {
	store := filters.NewStore()
	for _, name := range filters.Names() {
		if !cmd.Flags().Changed(name) {
			continue
		}
		if err := store.Set(name, *opts.values[name]); err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
	}
	set := store.Get()

	if opts.printFilter {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), filters.Compose(set))
		return err
	}

	format, err := canvas.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.quality < 1 || opts.quality > 100 {
		return fmt.Errorf("--jpeg-quality must be within 1..100, got %d", opts.quality)
	}
	maxBytes, err := humanize.ParseBytes(opts.maxSize)
	if err != nil {
		return fmt.Errorf("--max-size: %w", err)
	}
	if opts.maxPixels < 1 {
		return fmt.Errorf("--max-pixels must be positive, got %d", opts.maxPixels)
	}

	img, err := loadFile(path, imageload.Limits{MaxBytes: int64(maxBytes), MaxPixels: opts.maxPixels})
	if err != nil {
		return err
	}

	r := render.New(canvas.Encoding{Format: format, Quality: opts.quality})
	preview, err := r.Render(ctx, img, set)
	if err != nil {
		return err
	}

	d, ok := editor.Export(preview, img.Name)
	if !ok {
		return errors.New("render produced no output")
	}

	dir := opts.outDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	out := filepath.Join(dir, d.FileName)
	if err := os.WriteFile(out, d.Bytes, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	slog.Info("rendered image",
		"input", path,
		"output", out,
		"filter", preview.Filter,
		"size", humanize.Bytes(uint64(len(d.Bytes))),
		"elapsed", preview.Elapsed,
	)
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func loadFile(path string, lim imageload.Limits) (*imageload.LoadedImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := imageload.Load(filepath.Base(path), f, lim)
	if err != nil {
		if errors.Is(err, imageload.ErrNoFile) {
			return nil, fmt.Errorf("%s is empty", path)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)
	gg.SetLogger(logger)

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("render failed", "error", err)
		os.Exit(1)
	}
}
