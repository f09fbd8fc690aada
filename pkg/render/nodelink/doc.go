// Package nodelink renders family graphs as static Graphviz diagrams.
//
// Unlike the force layout, which settles interactively, a node-link diagram
// is ranked by generation: each role band becomes one Graphviz rank, parent
// edges point downward, and spouse and sibling edges join nodes within a
// rank without constraining it.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Palette: render.ThemePalette(theme)})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// PDF and PNG output go through rsvg-convert, see [render.ToPDF].
package nodelink
