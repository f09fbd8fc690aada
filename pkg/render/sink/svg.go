// Package sink writes projected frames to output formats.
package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/familygraph/pkg/render"
	"github.com/matzehuels/familygraph/pkg/settings"
)

// DefaultTitle is the heading drawn when no title is given.
const DefaultTitle = "My Family Tree"

const nodeCSS = `
    .node { cursor: grab; }
    .node:active { cursor: grabbing; }
    .node text { font-family: system-ui, sans-serif; font-size: 12px; pointer-events: none; }
    .title { font-family: system-ui, sans-serif; font-size: 24px; font-weight: 600; }`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title      string
	avatars    bool
	background bool
	frame      FrameStyle
}

// WithTitle sets the heading drawn at the top of the frame. An empty title
// hides the heading.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithoutAvatars skips photo images, for outputs that cannot fetch them.
func WithoutAvatars() SVGOption { return func(r *svgRenderer) { r.avatars = false } }

// WithoutBackground leaves the canvas transparent.
func WithoutBackground() SVGOption { return func(r *svgRenderer) { r.background = false } }

// RenderSVG writes f as a standalone SVG document painted with p.
func RenderSVG(f render.Frame, p render.Palette, opts ...SVGOption) []byte {
	r := svgRenderer{title: DefaultTitle, avatars: true, background: true, frame: FrameNone}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %s %s" width="%s" height="%s" data-theme="%s">`+"\n",
		render.Num(f.Width), render.Num(f.Height), render.Num(f.Width), render.Num(f.Height), p.Theme)

	renderDefs(&buf, f, p, r.frame)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", nodeCSS)
	if r.background {
		fmt.Fprintf(&buf, `  <rect class="background" width="100%%" height="100%%" fill="url(#bg-gradient)"/>`+"\n")
	}
	renderParticles(&buf, f.Particles, p)
	renderLinks(&buf, f.Links, p)
	renderNodes(&buf, f.Nodes, p, r.avatars)
	if r.title != "" {
		fmt.Fprintf(&buf, `  <text class="title" x="%s" y="40" text-anchor="middle" fill="%s">%s</text>`+"\n",
			render.Num(f.Width/2), p.TextPrimary, escape(r.title))
	}
	renderFrame(&buf, r.frame, f.Width, f.Height, p)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer, f render.Frame, p render.Palette, frame FrameStyle) {
	buf.WriteString("  <defs>\n")
	fmt.Fprintf(buf, `    <radialGradient id="bg-gradient" cx="50%%" cy="50%%" r="71%%">`+
		`<stop offset="0%%" stop-color="%s"/><stop offset="100%%" stop-color="%s"/></radialGradient>`+"\n",
		p.GradientFrom, p.GradientTo)
	frameDefs(buf, frame)
	buf.WriteString(`    <filter id="glow"><feGaussianBlur stdDeviation="2" result="coloredBlur"/>` +
		`<feMerge><feMergeNode in="coloredBlur"/><feMergeNode in="SourceGraphic"/></feMerge></filter>` + "\n")
	for i, n := range f.Nodes {
		fmt.Fprintf(buf, `    <clipPath id="%s">`, clipID(i))
		writeShape(buf, n, "")
		buf.WriteString("</clipPath>\n")
	}
	buf.WriteString("  </defs>\n")
}

func renderParticles(buf *bytes.Buffer, ps []render.Particle, p render.Palette) {
	if len(ps) == 0 {
		return
	}
	buf.WriteString(`  <g class="particles">` + "\n")
	for _, pt := range ps {
		fmt.Fprintf(buf, `    <circle cx="%s" cy="%s" r="%s" fill="%s" opacity="%s"/>`+"\n",
			render.Num(pt.X), render.Num(pt.Y), render.Num(pt.Size), p.AccentPrimary, render.Num(render.ParticleOpacity))
	}
	buf.WriteString("  </g>\n")
}

func renderLinks(buf *bytes.Buffer, links []render.LinkPath, p render.Palette) {
	buf.WriteString(`  <g class="links" fill="none">` + "\n")
	for _, l := range links {
		fmt.Fprintf(buf, `    <path id="link-%s" class="link %s" d="%s" stroke="%s" stroke-width="%s" stroke-opacity="%s"`,
			escape(l.ID), escape(string(l.Type)), l.D, p.Stroke(l.Tone), render.Num(l.Width), render.Num(l.Opacity))
		if l.Dash != "" {
			fmt.Fprintf(buf, ` stroke-dasharray="%s"`, l.Dash)
		}
		buf.WriteString("/>\n")
	}
	buf.WriteString("  </g>\n")
}

func renderNodes(buf *bytes.Buffer, nodes []render.Glyph, p render.Palette, avatars bool) {
	buf.WriteString(`  <g class="nodes">` + "\n")
	for i, n := range nodes {
		fmt.Fprintf(buf, `    <g class="node %s" data-id="%s" transform="translate(%s,%s)">`,
			escape(string(n.Role)), escape(string(n.ID)), render.Num(n.X), render.Num(n.Y))
		fmt.Fprintf(buf, "<title>%s</title>", escape(n.Name))

		attrs := fmt.Sprintf(` fill="%s" stroke="%s" stroke-width="%s"`, p.BgDeep, p.Border(n.Border), render.Num(render.BorderWidth))
		if n.Glow {
			attrs += ` filter="url(#glow)"`
		}
		writeShape(buf, n, attrs)

		if avatars && n.Image != "" {
			s := render.Num(n.Size)
			fmt.Fprintf(buf, `<image href="%s" x="-%s" y="-%s" width="%s" height="%s" clip-path="url(#%s)" preserveAspectRatio="xMidYMid slice"/>`,
				escape(n.Image), s, s, render.Num(2*n.Size), render.Num(2*n.Size), clipID(i))
		}
		fmt.Fprintf(buf, `<text y="%s" text-anchor="middle" fill="%s">%s</text>`,
			render.Num(n.LabelY), p.TextPrimary, escape(n.Label))
		buf.WriteString("</g>\n")
	}
	buf.WriteString("  </g>\n")
}

func writeShape(buf *bytes.Buffer, n render.Glyph, attrs string) {
	if n.Shape == settings.ShapeHexagon {
		points := n.Points
		if points == "" {
			points = render.HexagonPoints(n.Size)
		}
		fmt.Fprintf(buf, `<polygon points="%s"%s/>`, points, attrs)
		return
	}
	fmt.Fprintf(buf, `<circle r="%s"%s/>`, render.Num(n.Size), attrs)
}

// clipID is positional; node ids are free text and not safe as XML ids.
func clipID(i int) string { return fmt.Sprintf("clip-%d", i) }

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
