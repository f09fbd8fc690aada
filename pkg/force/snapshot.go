package force

import (
	"slices"

	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/settings"
)

// Snapshot is a copy of simulation state, safe to read after the simulation
// moves on or is stopped.
type Snapshot struct {
	Width   float64
	Height  float64
	Layout  settings.Layout
	Tick    int
	Alpha   float64
	Settled bool
	Bodies  []Body
	Links   []LinkState
}

// LinkState is an edge with its endpoint positions resolved.
type LinkState struct {
	Edge           family.Edge
	X1, Y1, X2, Y2 float64
}

// Snapshot returns the current state.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Simulation) snapshot() Snapshot {
	snap := Snapshot{
		Width:   s.cfg.Width,
		Height:  s.cfg.Height,
		Layout:  s.cfg.Layout,
		Tick:    s.ticks,
		Alpha:   s.alpha,
		Settled: s.settled,
		Bodies:  slices.Clone(s.bodies),
		Links:   make([]LinkState, len(s.links)),
	}
	for i, l := range s.links {
		src, tgt := s.bodies[l.source], s.bodies[l.target]
		snap.Links[i] = LinkState{Edge: s.edges[i], X1: src.X, Y1: src.Y, X2: tgt.X, Y2: tgt.Y}
	}
	return snap
}

// Body returns the body for id.
func (snap Snapshot) Body(id family.NodeID) (Body, bool) {
	for _, b := range snap.Bodies {
		if b.Node.ID == id {
			return b, true
		}
	}
	return Body{}, false
}

// Bounds returns the bounding box of all body centres.
func (snap Snapshot) Bounds() (minX, minY, maxX, maxY float64) {
	if len(snap.Bodies) == 0 {
		return 0, 0, snap.Width, snap.Height
	}
	minX, minY = snap.Bodies[0].X, snap.Bodies[0].Y
	maxX, maxY = minX, minY
	for _, b := range snap.Bodies[1:] {
		minX, maxX = min(minX, b.X), max(maxX, b.X)
		minY, maxY = min(minY, b.Y), max(maxY, b.Y)
	}
	return minX, minY, maxX, maxY
}
