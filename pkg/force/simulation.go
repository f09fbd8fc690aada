package force

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/observability"
	"github.com/matzehuels/familygraph/pkg/settings"
)

// DefaultInterval is the frame loop period used when Start gets zero.
const DefaultInterval = 16 * time.Millisecond

// State is the lifecycle position of a Simulation.
type State int

const (
	Uninitialized State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Body is a node together with its simulation state.
type Body struct {
	Node   family.Node
	X, Y   float64
	VX, VY float64
	// FX and FY hold the pin when Pinned is set.
	FX, FY float64
	Pinned bool
}

// Simulation owns a copy of a graph and moves it toward equilibrium.
// All methods are safe for concurrent use.
type Simulation struct {
	mu sync.Mutex

	cfg    Config
	logger *log.Logger
	hooks  observability.SimulationHooks

	bodies []Body
	index  map[family.NodeID]int
	edges  []family.Edge
	links  []link
	forces []force
	me     int // -1 without a me node

	alpha       float64
	alphaTarget float64
	ticks       int
	settled     bool
	dragging    map[int]struct{}
	rng         *rand.Rand

	state  State
	cancel context.CancelFunc
	done   chan struct{}
	wake   chan struct{}
}

// New builds a simulation over a private copy of g.
//
// Edges whose endpoints are missing from g, and self loops, are excluded
// from the simulation and reported; the remaining graph is laid out as usual.
func New(g family.Graph, cfg Config) (*Simulation, []family.Diagnostic) {
	cfg.SetDefaults()

	s := &Simulation{
		cfg:      cfg,
		logger:   cfg.Logger,
		hooks:    observability.Simulation(),
		index:    make(map[family.NodeID]int, len(g.Nodes)),
		me:       -1,
		alpha:    1,
		dragging: make(map[int]struct{}),
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0xdeadbeef)),
		wake:     make(chan struct{}, 1),
	}

	cx, cy := cfg.Width/2, cfg.Height/2
	s.bodies = make([]Body, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := s.index[n.ID]; dup {
			continue
		}
		i := len(s.bodies)
		s.index[n.ID] = i
		// Phyllotaxis spiral around the viewport centre.
		radius := 10 * math.Sqrt(0.5+float64(i))
		angle := float64(i) * math.Pi * (3 - math.Sqrt(5))
		s.bodies = append(s.bodies, Body{
			Node: n,
			X:    cx + radius*math.Cos(angle),
			Y:    cy + radius*math.Sin(angle),
		})
		if n.IsMe() && s.me < 0 {
			s.me = i
		}
	}
	if s.me >= 0 {
		s.pinCentre(s.me)
	}

	var diags []family.Diagnostic
	for _, e := range g.Edges {
		si, okS := s.index[e.Source]
		ti, okT := s.index[e.Target]
		if !okS || !okT {
			diags = append(diags, family.Diagnostic{
				Code:    family.DiagUnresolvedEdge,
				EdgeID:  e.ID,
				Message: fmt.Sprintf("endpoint %s -> %s not in simulation", e.Source, e.Target),
			})
			continue
		}
		if si == ti {
			diags = append(diags, family.Diagnostic{
				Code:    family.DiagSelfLoop,
				EdgeID:  e.ID,
				Message: fmt.Sprintf("%s joins %s to itself", e.Type, e.Source),
			})
			continue
		}
		s.edges = append(s.edges, e)
		s.links = append(s.links, link{source: si, target: ti, distance: cfg.Params.Distance(e.Type)})
	}
	for _, d := range diags {
		s.logger.Warn("edge excluded from layout", "edge", d.EdgeID, "reason", d.Message)
	}

	p := cfg.Params
	s.forces = []force{
		newLinkForce(s.bodies, s.links),
		chargeForce{strength: p.Charge},
		collideForce{radius: p.CollideRadius, strength: 1},
		centerForce{x: cx, y: cy, strength: p.CenterStrength(cfg.Layout, s.me >= 0)},
	}
	if cfg.Layout == settings.LayoutTree {
		s.forces = append(s.forces, newBandForce(s.bodies, cfg.Height, p.BandStrength))
	}

	s.logger.Debug("simulation initialized",
		"layout", cfg.Layout, "nodes", len(s.bodies), "links", len(s.links), "anchored", s.me >= 0)
	return s, diags
}

func (s *Simulation) pinCentre(i int) {
	b := &s.bodies[i]
	b.FX, b.FY = s.cfg.Width/2, s.cfg.Height/2
	b.X, b.Y = b.FX, b.FY
	b.VX, b.VY = 0, 0
	b.Pinned = true
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

// Config returns the effective configuration.
func (s *Simulation) Config() Config { return s.cfg }

// State returns the lifecycle state.
func (s *Simulation) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Alpha returns the current alpha.
func (s *Simulation) Alpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha
}

// Settled reports whether alpha has dropped below AlphaMin and no drag is
// keeping the simulation warm.
func (s *Simulation) Settled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settled
}

// Step advances the simulation by one tick and returns the new alpha.
func (s *Simulation) Step() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step()
	return s.alpha
}

func (s *Simulation) step() {
	s.alpha += (s.alphaTarget - s.alpha) * AlphaDecay
	for _, f := range s.forces {
		f.apply(s, s.alpha)
	}
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.Pinned {
			b.X, b.Y = b.FX, b.FY
			b.VX, b.VY = 0, 0
			continue
		}
		b.VX *= 1 - VelocityDecay
		b.VY *= 1 - VelocityDecay
		b.X += b.VX
		b.Y += b.VY
	}
	s.ticks++
	s.settled = s.alpha < AlphaMin
	s.hooks.OnTick(string(s.cfg.Layout), s.alpha)
}

// Settle steps until the simulation settles or maxTicks steps have run, and
// returns the number of steps taken. A non-positive maxTicks uses
// DefaultMaxTicks.
func (s *Simulation) Settle(maxTicks int) int {
	n, _ := s.SettleContext(context.Background(), maxTicks)
	return n
}

// SettleContext is Settle with cancellation. ctx is checked before every
// step; on cancellation the steps taken so far are kept and ctx.Err() is
// returned.
func (s *Simulation) SettleContext(ctx context.Context, maxTicks int) (int, error) {
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTicks
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for n < maxTicks && !(s.settled && len(s.dragging) == 0) {
		if err := ctx.Err(); err != nil {
			s.logger.Debug("settle cancelled", "ticks", n, "alpha", s.alpha)
			return n, err
		}
		s.step()
		n++
	}
	s.logger.Debug("simulation settled", "ticks", n, "alpha", s.alpha)
	return n, nil
}

// Start launches the frame loop. Every interval it steps once and passes the
// resulting Snapshot to onTick. Once settled, the loop idles until a drag
// wakes it. The loop ends when ctx is cancelled or Stop is called.
//
// onTick runs on the loop goroutine and must not call Stop.
func (s *Simulation) Start(ctx context.Context, interval time.Duration, onTick func(Snapshot)) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	s.mu.Lock()
	switch s.state {
	case Running:
		s.mu.Unlock()
		return errors.New(errors.ErrCodeInvalidInput, "simulation already running")
	case Stopped:
		s.mu.Unlock()
		return errors.New(errors.ErrCodeInvalidInput, "simulation was stopped; build a new one")
	}
	ctx, cancel := context.WithCancel(ctx)
	s.state = Running
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.hooks.OnSimulationStart(string(s.cfg.Layout), len(s.bodies), len(s.links))
	go s.loop(ctx, interval, onTick)
	return nil
}

func (s *Simulation) loop(ctx context.Context, interval time.Duration, onTick func(Snapshot)) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		if s.settled && len(s.dragging) == 0 {
			s.mu.Unlock()
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
			}
			continue
		}
		s.step()
		snap := s.snapshot()
		s.mu.Unlock()

		// A Stop racing with this tick wins: never hand out a frame after
		// cancellation was requested.
		if ctx.Err() != nil {
			return
		}
		if onTick != nil {
			onTick(snap)
		}
	}
}

// Stop ends the frame loop and waits for it to exit. It is safe to call more
// than once and from several goroutines; every call returns only after the
// loop has exited.
func (s *Simulation) Stop() {
	s.mu.Lock()
	prev := s.state
	s.state = Stopped
	cancel, done := s.cancel, s.done
	ticks := s.ticks
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	if prev == Running {
		s.hooks.OnSimulationStop(string(s.cfg.Layout), ticks)
		s.logger.Debug("simulation stopped", "ticks", ticks)
	}
}

// restart wakes an idle frame loop.
func (s *Simulation) restart() {
	if !s.settled {
		return
	}
	s.settled = false
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
