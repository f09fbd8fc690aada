// Package render turns simulation state into drawable primitives.
//
// # Projection
//
// [Project] maps a [force.Snapshot] and the current view settings to a
// [Frame]: link paths (straight or arced), node glyphs (circle or hexagon),
// border and stroke tiers, labels and the optional particle overlay. A Frame
// carries no colours. Colours come from a [Palette] when a sink writes the
// frame, so switching themes re-skins an existing frame without touching the
// simulation:
//
//	frame := render.Project(sim.Snapshot(), view, field.Particles())
//	svg := sink.RenderSVG(frame, render.ThemePalette(view.Theme))
//
// # Particles
//
// [ParticleField] is a purely decorative set of drifting points that wrap
// around the viewport edges. It never reads or writes simulation state.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert SVG via the external rsvg-convert tool.
// The [nodelink] subpackage produces a static Graphviz diagram instead.
//
// [nodelink]: github.com/matzehuels/familygraph/pkg/render/nodelink
package render
