package sink

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/render"
)

// FrameStyle is a decorative border drawn over an exported picture.
type FrameStyle string

const (
	FrameNone    FrameStyle = "none"
	FrameVintage FrameStyle = "vintage"
	FrameModern  FrameStyle = "modern"
	FrameFloral  FrameStyle = "floral"
	FrameNeon    FrameStyle = "neon"
)

// FrameStyles lists every frame style in display order.
var FrameStyles = []FrameStyle{FrameNone, FrameVintage, FrameModern, FrameFloral, FrameNeon}

// ParseFrameStyle returns the style named s. The empty string is FrameNone.
func ParseFrameStyle(s string) (FrameStyle, error) {
	f := FrameStyle(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FrameNone, nil
	}
	if !slices.Contains(FrameStyles, f) {
		names := make([]string, len(FrameStyles))
		for i, v := range FrameStyles {
			names[i] = string(v)
		}
		return FrameNone, errors.New(errors.ErrCodeInvalidInput, "invalid frame %q (allowed: %s)", s, strings.Join(names, ", "))
	}
	return f, nil
}

// WithFrame draws style around the picture. Unknown styles draw nothing.
func WithFrame(style FrameStyle) SVGOption { return func(r *svgRenderer) { r.frame = style } }

const (
	vintageOuter = "#8b5a2b"
	vintageInner = "#d4a373"
	vintageTint  = "#704214"
	floralStem   = "#f9a8d4"
	floralPetal  = "#f472b6"
	floralHeart  = "#fde68a"
	neonCyan     = "#22d3ee"
	neonMagenta  = "#e879f9"
)

func frameDefs(buf *bytes.Buffer, style FrameStyle) {
	if style == FrameNeon {
		buf.WriteString(`    <filter id="neon-glow" x="-10%" y="-10%" width="120%" height="120%">` +
			`<feGaussianBlur stdDeviation="6" result="blur"/>` +
			`<feMerge><feMergeNode in="blur"/><feMergeNode in="blur"/><feMergeNode in="SourceGraphic"/></feMerge></filter>` + "\n")
	}
}

func renderFrame(buf *bytes.Buffer, style FrameStyle, w, h float64, p render.Palette) {
	rect := func(inset, width float64, stroke, extra string) {
		fmt.Fprintf(buf, `    <rect x="%s" y="%s" width="%s" height="%s" fill="none" stroke="%s" stroke-width="%s"%s/>`+"\n",
			render.Num(inset), render.Num(inset), render.Num(w-2*inset), render.Num(h-2*inset), stroke, render.Num(width), extra)
	}

	switch style {
	case FrameVintage:
		buf.WriteString(`  <g class="frame frame-vintage">` + "\n")
		fmt.Fprintf(buf, `    <rect width="100%%" height="100%%" fill="%s" opacity="0.08"/>`+"\n", vintageTint)
		rect(8, 10, vintageOuter, "")
		rect(22, 2, vintageInner, ` stroke-dasharray="12,4"`)
	case FrameModern:
		buf.WriteString(`  <g class="frame frame-modern">` + "\n")
		rect(16, 4, p.TextPrimary, "")
		rect(28, 1, p.TextSecondary, ` opacity="0.6"`)
	case FrameFloral:
		buf.WriteString(`  <g class="frame frame-floral">` + "\n")
		rect(14, 3, floralStem, ` rx="24"`)
		for _, c := range [][2]float64{{14, 14}, {w - 14, 14}, {14, h - 14}, {w - 14, h - 14}} {
			writeFlower(buf, c[0], c[1])
		}
	case FrameNeon:
		buf.WriteString(`  <g class="frame frame-neon">` + "\n")
		rect(12, 4, neonCyan, ` rx="16" filter="url(#neon-glow)"`)
		rect(22, 2, neonMagenta, ` rx="12" filter="url(#neon-glow)"`)
	default:
		return
	}
	buf.WriteString("  </g>\n")
}

// writeFlower draws five petals around (cx, cy).
func writeFlower(buf *bytes.Buffer, cx, cy float64) {
	fmt.Fprintf(buf, `    <g transform="translate(%s,%s)">`, render.Num(cx), render.Num(cy))
	for i := range 5 {
		fmt.Fprintf(buf, `<circle r="6" cx="0" cy="-9" fill="%s" transform="rotate(%d)"/>`, floralPetal, i*72)
	}
	fmt.Fprintf(buf, `<circle r="4" fill="%s"/></g>`+"\n", floralHeart)
}
