// Package force lays out a family graph with a force-directed simulation.
//
// The integrator follows the velocity-Verlet scheme popularized by d3-force:
// each tick decays alpha toward its target, lets every force adjust node
// velocities in proportion to alpha, damps velocities, and moves nodes. Pinned
// nodes are snapped to their pin and have their velocity zeroed.
//
// # Forces
//
//   - link: pulls linked nodes toward a rest length chosen by edge type
//     (spouse short, siblings long, everything else medium)
//   - charge: every node repels every other node
//   - collide: keeps node centres at least two collision radii apart
//   - center: shifts the whole graph toward the viewport centre
//   - band: in tree layout, pulls each node toward the vertical band of its
//     generation, great-grandparents at the top and children at the bottom
//
// The "me" node is pinned at the viewport centre for the life of a
// simulation, and dragging never releases that pin.
//
// # Lifecycle
//
// A [Simulation] moves through Uninitialized, Running and Stopped. [New]
// copies the graph into the simulation's own body buffer; the caller's graph
// is never touched. [Simulation.Start] runs a frame loop that calls back with a
// [Snapshot] after each tick; [Simulation.Stop] cancels the loop and waits
// for it, so no callback fires once Stop has returned.
//
// Batch callers skip the loop entirely:
//
//	sim, diags := force.New(g, force.Config{Width: 1200, Height: 800})
//	sim.Settle(force.DefaultMaxTicks)
//	snap := sim.Snapshot()
package force
