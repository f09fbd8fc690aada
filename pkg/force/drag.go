package force

import (
	"math"

	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/family"
)

// Drag phases reported to observability hooks.
const (
	DragPhaseStart = "start"
	DragPhaseMove  = "move"
	DragPhaseEnd   = "end"
)

func (s *Simulation) lookup(id family.NodeID) (int, error) {
	i, ok := s.index[id]
	if !ok {
		return 0, errors.New(errors.ErrCodeNotFound, "no member %q in layout", id)
	}
	return i, nil
}

// DragStart pins id at its current position. The first active drag raises
// the alpha target so the layout keeps responding, and wakes a settled loop.
func (s *Simulation) DragStart(id family.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.lookup(id)
	if err != nil {
		return err
	}
	if len(s.dragging) == 0 {
		s.alphaTarget = DragAlphaTarget
		s.restart()
	}
	s.dragging[i] = struct{}{}

	b := &s.bodies[i]
	b.FX, b.FY = b.X, b.Y
	b.Pinned = true
	s.hooks.OnDrag(DragPhaseStart)
	return nil
}

// DragMove moves the pin of id to (x, y).
func (s *Simulation) DragMove(id family.NodeID, x, y float64) error {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "drag position must be finite")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.lookup(id)
	if err != nil {
		return err
	}
	if _, active := s.dragging[i]; !active {
		return errors.New(errors.ErrCodeInvalidInput, "member %q is not being dragged", id)
	}
	b := &s.bodies[i]
	b.FX, b.FY = x, y
	s.hooks.OnDrag(DragPhaseMove)
	return nil
}

// DragEnd releases id. The me node is never released; its pin returns to
// the viewport centre. Once no drag remains the alpha target drops back to
// zero so the simulation cools and settles again.
func (s *Simulation) DragEnd(id family.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.lookup(id)
	if err != nil {
		return err
	}
	if _, active := s.dragging[i]; !active {
		return errors.New(errors.ErrCodeInvalidInput, "member %q is not being dragged", id)
	}
	delete(s.dragging, i)
	if len(s.dragging) == 0 {
		s.alphaTarget = 0
	}

	b := &s.bodies[i]
	if b.Node.IsMe() {
		s.pinCentre(i)
	} else {
		b.FX, b.FY = 0, 0
		b.Pinned = false
	}
	s.hooks.OnDrag(DragPhaseEnd)
	return nil
}

// Dragging reports the number of active drags.
func (s *Simulation) Dragging() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dragging)
}
