package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds role, age and life status to node labels.
	Detailed bool
	// Palette colours the diagram. The zero value uses the midnight theme.
	Palette render.Palette
}

// ToDOT converts a family graph to Graphviz DOT source.
func ToDOT(g family.Graph, opts Options) string {
	p := opts.Palette
	if p.BgDeep == "" {
		p = render.ThemePalette("")
	}

	var buf bytes.Buffer
	buf.WriteString("digraph family {\n")
	buf.WriteString("  rankdir=TB;\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", p.BgDeep)
	fmt.Fprintf(&buf, "  node [shape=ellipse, style=filled, fillcolor=%q, fontcolor=%q, penwidth=3, fontname=\"Helvetica\"];\n",
		p.BgDeep, p.TextPrimary)
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.5;\n\n")

	ranks := map[int][]family.NodeID{}
	for _, n := range g.Nodes {
		attrs := []string{
			fmt.Sprintf("label=%q", label(n, opts.Detailed)),
			fmt.Sprintf("color=%q", p.Border(render.BorderTierOf(n))),
		}
		if n.IsPet() {
			attrs = append(attrs, "shape=hexagon")
		}
		if n.LifeStatus == family.Deceased {
			attrs = append(attrs, `style="filled,dashed"`)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
		r := n.Role.Generation()
		ranks[r] = append(ranks[r], n.ID)
	}

	buf.WriteString("\n")
	for _, r := range sortedKeys(ranks) {
		ids := ranks[r]
		quoted := make([]string, len(ids))
		for i, id := range ids {
			quoted[i] = strconv.Quote(string(id))
		}
		fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(quoted, "; "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(edgeAttrs(e, p), ", "))
	}
	buf.WriteString("}\n")
	return buf.String()
}

func label(n family.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}
	parts := []string{n.Name, string(n.Role)}
	if n.Age > 0 {
		parts = append(parts, fmt.Sprintf("age %d", n.Age))
	}
	if n.LifeStatus == family.Deceased {
		parts = append(parts, "deceased")
	}
	return strings.Join(parts, "\n")
}

func edgeAttrs(e family.Edge, p render.Palette) []string {
	switch {
	case e.Type == family.EdgeSpouse:
		return []string{fmt.Sprintf("color=%q", p.Gold), "penwidth=3", "dir=none", "constraint=false"}
	case e.Type.IsSibling():
		style := "dashed"
		if e.Inferred() {
			style = "dotted"
		}
		return []string{fmt.Sprintf("color=%q", p.AccentPrimary), "penwidth=2", "style=" + style, "dir=none", "constraint=false"}
	default:
		return []string{fmt.Sprintf("color=%q", p.TextSecondary), "penwidth=1.5"}
	}
}

func sortedKeys(m map[int][]family.NodeID) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG, true)
}

// RenderPNG renders DOT source to PNG using Graphviz directly.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG, false)
}

// RenderPDF renders DOT source as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format, isSVG bool) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if isSVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg tag with one whose
// viewBox starts at the origin, so the diagram scales like the frame SVG.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
