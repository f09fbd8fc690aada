package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/force"
	"github.com/matzehuels/familygraph/pkg/render"
	"github.com/matzehuels/familygraph/pkg/render/nodelink"
	"github.com/matzehuels/familygraph/pkg/render/sink"
)

// FrameDocument is the JSON export of a projected frame.
type FrameDocument struct {
	Frame   render.Frame   `json:"frame"`
	Palette render.Palette `json:"palette"`
}

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, layout force.Snapshot, g family.Graph, opts Options) (map[string][]byte, error) {
	opts.SetDefaults()
	if opts.IsNodelink() {
		return renderNodelink(ctx, g, opts)
	}
	return renderForce(layout, g, opts)
}

// ProjectLayout projects a settled layout under the view settings. The
// particle overlay, when enabled, is the field's initial state.
func ProjectLayout(layout force.Snapshot, opts Options) (render.Frame, render.Palette) {
	var particles []render.Particle
	if opts.Settings.Particles {
		particles = render.NewParticleField(layout.Width, layout.Height, opts.Seed).Particles()
	}
	return render.Project(layout, opts.Settings, particles), render.ThemePalette(opts.Settings.Theme)
}

// svgOptions builds SVG rendering options.
func svgOptions(opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{sink.WithTitle(opts.Title), sink.WithFrame(opts.Frame)}
	if opts.NoAvatars {
		svgOpts = append(svgOpts, sink.WithoutAvatars())
	}
	return svgOpts
}

func renderForce(layout force.Snapshot, g family.Graph, opts Options) (map[string][]byte, error) {
	frame, palette := ProjectLayout(layout, opts)
	svgOpts := svgOptions(opts)
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(frame, palette, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(frame, palette, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
		case FormatPDF:
			data, err = sink.RenderPDF(frame, palette, svgOpts...)
		case FormatJSON:
			data, err = json.MarshalIndent(FrameDocument{Frame: frame, Palette: palette}, "", "  ")
		case FormatDOT:
			data = []byte(nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed, Palette: palette}))
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func renderNodelink(ctx context.Context, g family.Graph, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(g, nodelink.Options{
		Detailed: opts.Detailed,
		Palette:  render.ThemePalette(opts.Settings.Theme),
	})
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		case FormatDOT:
			data = []byte(dot)
		case FormatJSON:
			data, err = json.MarshalIndent(g, "", "  ")
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
