package sink

import (
	"github.com/matzehuels/familygraph/pkg/render"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithPNGSVGOptions passes options through to the underlying SVG renderer.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG renders the frame as PNG via SVG conversion. Remote avatar
// images are omitted because rsvg-convert does not fetch them.
func RenderPNG(f render.Frame, p render.Palette, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	svg := RenderSVG(f, p, append([]SVGOption{WithoutAvatars()}, r.svgOpts...)...)
	return render.ToPNG(svg, r.scale)
}

// RenderPDF renders the frame as a single-page PDF via SVG conversion.
func RenderPDF(f render.Frame, p render.Palette, opts ...SVGOption) ([]byte, error) {
	svg := RenderSVG(f, p, append([]SVGOption{WithoutAvatars()}, opts...)...)
	return render.ToPDF(svg)
}
