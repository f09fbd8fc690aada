package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/familygraph/internal/config"
	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/pipeline"
	"github.com/matzehuels/familygraph/pkg/render/sink"
	"github.com/matzehuels/familygraph/pkg/settings"
	"github.com/matzehuels/familygraph/pkg/source"
)

const defaultOutputBase = "family"

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	output    string
	formats   string
	vizType   string
	title     string
	frame     string
	set       []string // key=value view settings
	theme     string
	layout    string
	width     float64
	height    float64
	seed      uint64
	maxTicks  int
	scale     float64
	noAvatars bool
	detailed  bool
	noCache   bool
	refresh   bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Settle the family tree layout and export it",
		Long: `Render fetches every member from the data source, settles the force layout
and writes it in each requested format.

View settings come from the config file and can be overridden per run:

  familygraph render -f svg,png --theme ivory
  familygraph render --set link_style=straight --set particles=true
  familygraph render -f png --frame vintage
  familygraph render -t nodelink -f dot,svg --detailed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (default \"family\")")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().StringVarP(&flags.vizType, "type", "t", pipeline.VizForce, "visualization type: force, nodelink")
	cmd.Flags().StringVar(&flags.title, "title", "", "graph title (default \"My Family Tree\")")
	cmd.Flags().StringVar(&flags.frame, "frame", "", "frame style: none, vintage, modern, floral, neon")
	cmd.Flags().StringArrayVar(&flags.set, "set", nil, "view setting as key=value (repeatable)")
	cmd.Flags().StringVar(&flags.theme, "theme", "", "theme: midnight, ivory, parchment")
	cmd.Flags().StringVar(&flags.layout, "layout", "", "layout mode: tree, organic")
	cmd.Flags().Float64Var(&flags.width, "width", 0, "viewport width (default from config)")
	cmd.Flags().Float64Var(&flags.height, "height", 0, "viewport height (default from config)")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "random seed for initial positions (default from config)")
	cmd.Flags().IntVar(&flags.maxTicks, "max-ticks", pipeline.DefaultMaxTicks, "simulation tick limit")
	cmd.Flags().Float64Var(&flags.scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")
	cmd.Flags().BoolVar(&flags.noAvatars, "no-avatars", false, "draw initials instead of avatar images")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "show role and age in nodelink labels")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached layouts and renders")

	return cmd
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// applySettingFlags layers --theme, --layout and every --set pair onto base.
func applySettingFlags(base settings.Settings, theme, layout string, set []string) (settings.Settings, error) {
	s := base
	var err error
	if theme != "" {
		if s, err = s.Parse("theme", theme); err != nil {
			return base, err
		}
	}
	if layout != "" {
		if s, err = s.Parse("layout", layout); err != nil {
			return base, err
		}
	}
	for _, kv := range set {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return base, errors.New(errors.ErrCodeInvalidSetting, "invalid --set %q (want key=value)", kv)
		}
		if s, err = s.Parse(strings.TrimSpace(key), value); err != nil {
			return base, err
		}
	}
	return s, nil
}

// outputPaths maps each format to the file it is written to. A single format
// with an explicit --output is written exactly there.
func outputPaths(output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" && filepath.Ext(output) != "" {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = defaultOutputBase
	}
	if ext := strings.TrimPrefix(filepath.Ext(base), "."); slices.Contains(pipeline.ValidFormats, ext) {
		base = strings.TrimSuffix(base, "."+ext)
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

func (c *CLI) runRender(ctx context.Context, flags renderFlags) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	opts := pipelineOptions(cfg)
	opts.VizType = flags.vizType
	opts.Formats = parseFormats(flags.formats)
	opts.Title = flags.title
	opts.MaxTicks = flags.maxTicks
	opts.Scale = flags.scale
	opts.NoAvatars = flags.noAvatars
	opts.Detailed = flags.detailed
	opts.Refresh = flags.refresh
	if flags.width > 0 {
		opts.Width = flags.width
	}
	if flags.height > 0 {
		opts.Height = flags.height
	}
	if flags.seed > 0 {
		opts.Seed = flags.seed
	}
	if opts.Title != "" {
		if err := errors.ValidateTitle(opts.Title); err != nil {
			return err
		}
	}
	if opts.Frame, err = sink.ParseFrameStyle(flags.frame); err != nil {
		return err
	}
	if opts.Settings, err = applySettingFlags(opts.Settings, flags.theme, flags.layout, flags.set); err != nil {
		return err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	snap, err := c.fetchSnapshot(ctx, cfg)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Settling layout...")
	spinner.Start()
	result, err := runner.Execute(ctx, snap, opts)
	if err != nil {
		if spinner.Stop(); spinner.Cancelled() {
			return ctx.Err()
		}
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	prog.done("Rendered family tree")

	for _, d := range result.Diagnostics {
		printWarning("%s", d.String())
	}

	paths := outputPaths(flags.output, opts.Formats)
	printSuccess("Rendered %s", opts.Title)
	for _, format := range opts.Formats {
		path := paths[format]
		if err := writeOutput(path, result.Artifacts[format]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Inferred, result.CacheInfo.LayoutHit)
	return nil
}

// fetchSnapshot reads every member once. A failed fetch falls back to the
// example tree with a warning rather than aborting the render.
func (c *CLI) fetchSnapshot(ctx context.Context, cfg *config.Config) (source.Snapshot, error) {
	src, err := c.newSource(ctx, cfg)
	if err != nil {
		return source.Snapshot{}, err
	}
	defer src.Close()

	feed := source.NewFeed(src,
		source.WithFeedLogger(c.Logger),
		source.WithRetry(3, defaultRetryDelay),
		source.WithNotifier(source.NotifierFunc(func(n source.Notice) {
			printWarning("%s unavailable, rendering the example tree: %s", n.Backend, errors.UserMessage(n.Err))
		})),
	)
	snap, _ := feed.Refresh(ctx)
	if ctx.Err() != nil {
		return source.Snapshot{}, ctx.Err()
	}
	return snap, nil
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
