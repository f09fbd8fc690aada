package force

import "math"

// force adjusts body velocities (or, for centering, positions) for one tick.
type force interface {
	apply(s *Simulation, alpha float64)
}

// =============================================================================
// Link
// =============================================================================

type link struct {
	source, target int
	distance       float64
	strength       float64
	bias           float64
}

type linkForce struct {
	links []link
}

func newLinkForce(bodies []Body, links []link) *linkForce {
	count := make([]int, len(bodies))
	for _, l := range links {
		count[l.source]++
		count[l.target]++
	}
	for i := range links {
		l := &links[i]
		cs, ct := count[l.source], count[l.target]
		l.strength = 1 / float64(min(cs, ct))
		l.bias = float64(cs) / float64(cs+ct)
	}
	return &linkForce{links: links}
}

func (f *linkForce) apply(s *Simulation, alpha float64) {
	for _, l := range f.links {
		src, tgt := &s.bodies[l.source], &s.bodies[l.target]
		x := tgt.X + tgt.VX - src.X - src.VX
		if x == 0 {
			x = s.jiggle()
		}
		y := tgt.Y + tgt.VY - src.Y - src.VY
		if y == 0 {
			y = s.jiggle()
		}
		d := math.Sqrt(x*x + y*y)
		k := (d - l.distance) / d * alpha * l.strength
		x, y = x*k, y*k
		tgt.VX -= x * l.bias
		tgt.VY -= y * l.bias
		src.VX += x * (1 - l.bias)
		src.VY += y * (1 - l.bias)
	}
}

// =============================================================================
// Charge
// =============================================================================

// chargeForce is an exact pairwise many-body force. Family graphs stay in the
// tens to low hundreds of nodes, where the quadratic loop beats building a
// quadtree every tick.
type chargeForce struct {
	strength float64
}

func (f chargeForce) apply(s *Simulation, alpha float64) {
	n := len(s.bodies)
	for i := 0; i < n; i++ {
		bi := &s.bodies[i]
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			bj := &s.bodies[j]
			x, y := bj.X-bi.X, bj.Y-bi.Y
			l := x*x + y*y
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}
			if l < 1 {
				l = math.Sqrt(l)
			}
			w := f.strength * alpha / l
			bi.VX += x * w
			bi.VY += y * w
		}
	}
}

// =============================================================================
// Collide
// =============================================================================

type collideForce struct {
	radius   float64
	strength float64
}

func (f collideForce) apply(s *Simulation, _ float64) {
	n := len(s.bodies)
	r := 2 * f.radius
	r2 := r * r
	for i := 0; i < n; i++ {
		bi := &s.bodies[i]
		xi, yi := bi.X+bi.VX, bi.Y+bi.VY
		for j := i + 1; j < n; j++ {
			bj := &s.bodies[j]
			x := xi - bj.X - bj.VX
			y := yi - bj.Y - bj.VY
			l := x*x + y*y
			if l >= r2 {
				continue
			}
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}
			l = math.Sqrt(l)
			k := (r - l) / l * f.strength
			x, y = x*k, y*k
			// Equal radii split the correction evenly.
			bi.VX += x * 0.5
			bi.VY += y * 0.5
			bj.VX -= x * 0.5
			bj.VY -= y * 0.5
		}
	}
}

// =============================================================================
// Center
// =============================================================================

type centerForce struct {
	x, y     float64
	strength float64
}

func (f centerForce) apply(s *Simulation, _ float64) {
	n := len(s.bodies)
	if n == 0 {
		return
	}
	var sx, sy float64
	for i := range s.bodies {
		sx += s.bodies[i].X
		sy += s.bodies[i].Y
	}
	sx = (sx/float64(n) - f.x) * f.strength
	sy = (sy/float64(n) - f.y) * f.strength
	for i := range s.bodies {
		s.bodies[i].X -= sx
		s.bodies[i].Y -= sy
	}
}

// =============================================================================
// Band
// =============================================================================

// bandForce pulls each body toward its generational row.
type bandForce struct {
	targets  []float64
	strength float64
}

func newBandForce(bodies []Body, height, strength float64) bandForce {
	targets := make([]float64, len(bodies))
	for i, b := range bodies {
		targets[i] = BandY(b.Node.Role, height)
	}
	return bandForce{targets: targets, strength: strength}
}

func (f bandForce) apply(s *Simulation, alpha float64) {
	for i := range s.bodies {
		b := &s.bodies[i]
		b.VY += (f.targets[i] - b.Y) * f.strength * alpha
	}
}
