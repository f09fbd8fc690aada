// Package scene owns the live simulation behind an interactive view.
//
// A Scene holds the current family graph and view settings, runs one
// [force.Simulation] at a time, and turns its ticks into [render.Frame]
// values. Any settings change other than the theme rebuilds the simulation:
// the old one is stopped before the new one is built, and a generation
// counter drops frames from a simulation that has been replaced. A theme-only
// change re-emits the last frame under the new palette.
package scene

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/family/transform"
	"github.com/matzehuels/familygraph/pkg/force"
	"github.com/matzehuels/familygraph/pkg/render"
	"github.com/matzehuels/familygraph/pkg/settings"
)

// FrameFunc receives every frame. It runs on the simulation goroutine, or on
// the caller's goroutine for a re-skin, and must not call Load,
// ApplySettings, Close or the drag methods.
type FrameFunc func(render.Frame, render.Palette)

// Options configures a Scene.
type Options struct {
	Width    float64
	Height   float64
	Params   force.Params
	Seed     uint64
	Interval time.Duration
	Settings settings.Settings
	OnFrame  FrameFunc
	Logger   *log.Logger
}

func (o *Options) setDefaults() {
	if o.Seed == 0 {
		o.Seed = force.DefaultSeed
	}
	if o.Interval <= 0 {
		o.Interval = force.DefaultInterval
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.OnFrame == nil {
		o.OnFrame = func(render.Frame, render.Palette) {}
	}
	o.Settings = o.Settings.Normalized()
}

// Scene runs the simulation for one view.
type Scene struct {
	opts Options

	mu       sync.Mutex // serialises Load, ApplySettings, Close and drags
	ctx      context.Context
	graph    family.Graph
	settings settings.Settings
	sim      *force.Simulation
	diags    []family.Diagnostic
	inferred int
	closed   bool

	gen atomic.Uint64

	frameMu   sync.Mutex // guards the fields below; taken on the tick path
	particles *render.ParticleField
	palette   render.Palette
	theme     settings.Theme
	last      render.Frame
	hasFrame  bool
}

// New returns an empty scene. Nothing runs until Load.
func New(opts Options) *Scene {
	opts.setDefaults()
	return &Scene{
		opts:     opts,
		settings: opts.Settings,
		palette:  render.ThemePalette(opts.Settings.Theme),
	}
}

// Load replaces the graph and rebuilds the simulation. The context bounds the
// lifetime of this and every later simulation.
func (s *Scene) Load(ctx context.Context, g family.Graph) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New(errors.ErrCodeInvalidInput, "scene closed")
	}
	s.ctx = ctx
	s.graph = g.Clone()
	return s.rebuildLocked()
}

// ApplySettings switches to next. It reports whether the simulation was
// rebuilt.
func (s *Scene) ApplySettings(next settings.Settings) (rebuilt bool, err error) {
	if err := next.Validate(); err != nil {
		return false, err
	}
	next = next.Normalized()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, errors.New(errors.ErrCodeInvalidInput, "scene closed")
	}

	change := settings.Diff(s.settings, next)
	s.settings = next
	switch {
	case change.None():
		return false, nil
	case change.ThemeOnly() || s.ctx == nil:
		s.reskin(next)
		return false, nil
	}

	s.opts.Logger.Debug("settings changed, rebuilding", "change", change.String())
	return true, s.rebuildLocked()
}

// Bind applies every settings change published by store. The returned
// function stops listening.
func (s *Scene) Bind(store *settings.Store) (unsubscribe func()) {
	return store.Subscribe(func(_, next settings.Settings) {
		if _, err := s.ApplySettings(next); err != nil {
			s.opts.Logger.Warn("apply settings", "err", err)
		}
	})
}

func (s *Scene) reskin(next settings.Settings) {
	p := render.ThemePalette(next.Theme)

	s.frameMu.Lock()
	s.palette = p
	s.theme = next.Theme
	frame, ok := s.last, s.hasFrame
	if ok {
		frame.Settings = next
		s.last = frame
	}
	s.frameMu.Unlock()

	if ok {
		s.opts.OnFrame(frame, p)
	}
}

// rebuildLocked stops the current simulation and starts one for the current
// graph and settings. s.mu must be held.
func (s *Scene) rebuildLocked() error {
	gen := s.gen.Add(1)
	if s.sim != nil {
		s.sim.Stop()
		s.sim = nil
	}

	g, res := transform.WithInferred(s.graph)
	sim, diags := force.New(g, force.Config{
		Width:  s.opts.Width,
		Height: s.opts.Height,
		Layout: s.settings.Layout,
		Params: s.opts.Params,
		Seed:   s.opts.Seed,
		Logger: s.opts.Logger,
	})
	s.diags = diags
	s.inferred = res.Inferred

	cfg := sim.Config()
	s.frameMu.Lock()
	s.palette = render.ThemePalette(s.settings.Theme)
	s.theme = s.settings.Theme
	s.hasFrame = false
	s.particles = nil
	if s.settings.Particles {
		s.particles = render.NewParticleField(cfg.Width, cfg.Height, s.opts.Seed)
	}
	s.frameMu.Unlock()

	current := s.settings
	if err := sim.Start(s.ctx, s.opts.Interval, func(snap force.Snapshot) {
		s.onTick(gen, current, snap)
	}); err != nil {
		return err
	}
	s.sim = sim

	s.opts.Logger.Debug("scene rebuilt", "generation", gen, "nodes", len(g.Nodes),
		"edges", len(g.Edges), "inferred", s.inferred, "layout", current.Layout)
	return nil
}

func (s *Scene) onTick(gen uint64, cur settings.Settings, snap force.Snapshot) {
	s.frameMu.Lock()
	if s.gen.Load() != gen {
		s.frameMu.Unlock()
		return
	}
	cur.Theme = s.theme
	var particles []render.Particle
	if s.particles != nil {
		s.particles.Advance()
		particles = s.particles.Particles()
	}
	frame := render.Project(snap, cur, particles)
	s.last, s.hasFrame = frame, true
	p := s.palette
	s.frameMu.Unlock()

	s.opts.OnFrame(frame, p)
}

// Frame returns the most recent frame and its palette.
func (s *Scene) Frame() (render.Frame, render.Palette, bool) {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	return s.last, s.palette, s.hasFrame
}

// Settings returns the settings the scene currently renders with.
func (s *Scene) Settings() settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Generation counts simulations built so far.
func (s *Scene) Generation() uint64 { return s.gen.Load() }

// Diagnostics returns the problems found while building the simulation.
func (s *Scene) Diagnostics() []family.Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]family.Diagnostic(nil), s.diags...)
}

// Inferred returns the number of sibling edges added to the current graph.
func (s *Scene) Inferred() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inferred
}

// DragStart pins a node under the pointer.
func (s *Scene) DragStart(id family.NodeID) error {
	return s.withSim(func(sim *force.Simulation) error { return sim.DragStart(id) })
}

// DragMove moves a dragged node.
func (s *Scene) DragMove(id family.NodeID, x, y float64) error {
	return s.withSim(func(sim *force.Simulation) error { return sim.DragMove(id, x, y) })
}

// DragEnd releases a dragged node.
func (s *Scene) DragEnd(id family.NodeID) error {
	return s.withSim(func(sim *force.Simulation) error { return sim.DragEnd(id) })
}

func (s *Scene) withSim(fn func(*force.Simulation) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sim == nil {
		return errors.New(errors.ErrCodeInvalidInput, "no graph loaded")
	}
	return fn(s.sim)
}

// Close stops the simulation. The scene cannot be reused.
func (s *Scene) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.gen.Add(1)
	if s.sim != nil {
		s.sim.Stop()
		s.sim = nil
	}
}
