// Package pkg provides the core libraries for familygraph.
//
// # Overview
//
// Familygraph turns a flat list of people, pets and relationships into a
// force-directed family tree. The pkg directory is organized by stage:
//
//	Data source (file, memory, Supabase, MongoDB)
//	         ↓
//	    [source] package (snapshots, change notices, retry)
//	         ↓
//	    [family] package (normalize records into a graph + diagnostics)
//	         ↓
//	    [family/transform] package (infer sibling links)
//	         ↓
//	    [force] package (tree or organic force simulation)
//	         ↓
//	    [render] package (project positions into draw instructions)
//	         ↓
//	    SVG/PNG/PDF/JSON/DOT output
//
// # Main Packages
//
// [family] - Node, Edge and Graph types, the record normalizer and the
// generation ranks used by the tree layout.
//
// [family/transform] - Sibling inference: siblings that share a parent but
// have no explicit link get a weak inferred edge.
//
// [force] - A deterministic velocity-Verlet simulation with link, charge,
// collision and generation forces. Supports pinned nodes for dragging.
//
// [settings] - The five view settings, their defaults, the [settings.Store]
// and [settings.Diff], which tells a re-skin apart from a rebuild.
//
// [render] - Themes, particle pulses and the projector from simulation
// state to shapes. [render/sink] writes SVG and raster output,
// [render/nodelink] writes Graphviz diagrams.
//
// [scene] - The live view: owns one simulation, rebuilds or re-skins when
// settings change and publishes frames.
//
// [pipeline] - Fetch, normalize, settle and render in one call, with the
// layout and every artifact cached under content-addressed keys in [cache].
//
// [observability] - Hooks for the simulation, data sources and cache, with
// a Prometheus implementation.
//
// [errors] - Coded errors shared by every layer, mapped to HTTP statuses by
// the server.
//
// # Testing
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/force/...     # Specific package
//	go test -run Example ./...  # Examples only
//
// [family]: https://pkg.go.dev/github.com/matzehuels/familygraph/pkg/family
// [family/transform]: https://pkg.go.dev/github.com/matzehuels/familygraph/pkg/family/transform
// [force]: https://pkg.go.dev/github.com/matzehuels/familygraph/pkg/force
// [settings]: https://pkg.go.dev/github.com/matzehuels/familygraph/pkg/settings
// [settings.Store]: https://pkg.go.dev/github.com/matzehuels/familygraph/pkg/settings#Store
// [settings.Diff]: https://pkg.go.dev/github.com/matzehuels/familygraph/pkg/settings#Diff
// [render]: https://pkg.go.dev/github.com/matzehuels/familygraph/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/familygraph/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/familygraph/pkg/render/nodelink
// [scene]: https://pkg.go.dev/github.com/matzehuels/familygraph/pkg/scene
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/familygraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/familygraph/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/familygraph/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/familygraph/pkg/errors
//
// [source]: https://pkg.go.dev/github.com/matzehuels/familygraph/pkg/source
package pkg
