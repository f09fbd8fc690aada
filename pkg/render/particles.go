package render

import (
	"math/rand/v2"
	"slices"
)

const (
	// ParticleCount is the size of a particle field.
	ParticleCount = 20
	// ParticleOpacity is the fill opacity particles are drawn with.
	ParticleOpacity = 0.3
)

// Particle is a decorative point with its own velocity.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Size   float64
}

// ParticleField is a fixed set of particles drifting across a viewport with
// toroidal wrap. It is not safe for concurrent use.
type ParticleField struct {
	width, height float64
	particles     []Particle
}

// NewParticleField scatters ParticleCount particles uniformly over a
// width x height viewport. Velocity components fall in [-0.25, 0.25) and
// sizes in [1, 3).
func NewParticleField(width, height float64, seed uint64) *ParticleField {
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	ps := make([]Particle, ParticleCount)
	for i := range ps {
		ps[i] = Particle{
			X:    rng.Float64() * width,
			Y:    rng.Float64() * height,
			VX:   (rng.Float64() - 0.5) * 0.5,
			VY:   (rng.Float64() - 0.5) * 0.5,
			Size: rng.Float64()*2 + 1,
		}
	}
	return &ParticleField{width: width, height: height, particles: ps}
}

// Advance moves every particle by its velocity. A particle leaving one edge
// reappears at the opposite edge; each axis wraps independently.
func (f *ParticleField) Advance() {
	for i := range f.particles {
		p := &f.particles[i]
		p.X += p.VX
		p.Y += p.VY
		if p.X > f.width {
			p.X = 0
		} else if p.X < 0 {
			p.X = f.width
		}
		if p.Y > f.height {
			p.Y = 0
		} else if p.Y < 0 {
			p.Y = f.height
		}
	}
}

// Particles returns a copy of the current particles.
func (f *ParticleField) Particles() []Particle {
	if f == nil {
		return nil
	}
	return slices.Clone(f.particles)
}
