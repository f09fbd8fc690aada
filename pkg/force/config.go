package force

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/settings"
)

const (
	DefaultWidth    = 1200.0
	DefaultHeight   = 800.0
	DefaultSeed     = uint64(42)
	DefaultMaxTicks = 1000

	// AlphaMin is the alpha below which a simulation counts as settled.
	AlphaMin = 0.001
	// DragAlphaTarget keeps the simulation warm while any node is dragged.
	DragAlphaTarget = 0.3
	// VelocityDecay is the fraction of velocity removed each tick.
	VelocityDecay = 0.4
)

// AlphaDecay brings alpha from 1 to AlphaMin in 300 ticks.
var AlphaDecay = 1 - math.Pow(AlphaMin, 1.0/300)

// Params holds the tunable force constants. Zero fields take the defaults.
type Params struct {
	SpouseDistance  float64 `toml:"spouse_distance" json:"spouse_distance,omitempty"`
	SiblingDistance float64 `toml:"sibling_distance" json:"sibling_distance,omitempty"`
	LinkDistance    float64 `toml:"link_distance" json:"link_distance,omitempty"`
	Charge          float64 `toml:"charge" json:"charge,omitempty"`
	CollideRadius   float64 `toml:"collide_radius" json:"collide_radius,omitempty"`
	BandStrength    float64 `toml:"band_strength" json:"band_strength,omitempty"`
	CenterWeak      float64 `toml:"center_weak" json:"center_weak,omitempty"`
	CenterStrong    float64 `toml:"center_strong" json:"center_strong,omitempty"`
}

// DefaultParams returns the standard force constants.
func DefaultParams() Params {
	return Params{
		SpouseDistance:  60,
		SiblingDistance: 180,
		LinkDistance:    120,
		Charge:          -1000,
		CollideRadius:   70,
		BandStrength:    1,
		CenterWeak:      0.05,
		CenterStrong:    0.8,
	}
}

func (p *Params) setDefaults() {
	d := DefaultParams()
	if p.SpouseDistance == 0 {
		p.SpouseDistance = d.SpouseDistance
	}
	if p.SiblingDistance == 0 {
		p.SiblingDistance = d.SiblingDistance
	}
	if p.LinkDistance == 0 {
		p.LinkDistance = d.LinkDistance
	}
	if p.Charge == 0 {
		p.Charge = d.Charge
	}
	if p.CollideRadius == 0 {
		p.CollideRadius = d.CollideRadius
	}
	if p.BandStrength == 0 {
		p.BandStrength = d.BandStrength
	}
	if p.CenterWeak == 0 {
		p.CenterWeak = d.CenterWeak
	}
	if p.CenterStrong == 0 {
		p.CenterStrong = d.CenterStrong
	}
}

// Distance returns the link rest length for an edge type.
func (p Params) Distance(t family.EdgeType) float64 {
	switch {
	case t == family.EdgeSpouse:
		return p.SpouseDistance
	case t.IsSibling():
		return p.SiblingDistance
	default:
		return p.LinkDistance
	}
}

// CenterStrength returns the centering strength for a layout. Organic
// layouts without a pinned anchor pull harder so the graph still coheres.
func (p Params) CenterStrength(layout settings.Layout, hasMe bool) float64 {
	if layout == settings.LayoutOrganic && !hasMe {
		return p.CenterStrong
	}
	return p.CenterWeak
}

// Config configures a Simulation.
type Config struct {
	Width  float64
	Height float64
	Layout settings.Layout
	Params Params

	// Seed drives the jitter applied when two nodes coincide.
	Seed uint64

	Logger *log.Logger
}

// SetDefaults fills zero values. A non-positive viewport takes the default
// size and an unknown layout becomes tree.
func (c *Config) SetDefaults() {
	if !(c.Width > 0) {
		c.Width = DefaultWidth
	}
	if !(c.Height > 0) {
		c.Height = DefaultHeight
	}
	c.Layout = settings.Settings{Layout: c.Layout}.Normalized().Layout
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
	c.Params.setDefaults()
}

// Validate checks the viewport and layout mode.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 || math.IsNaN(c.Width) || math.IsNaN(c.Height) {
		return errors.New(errors.ErrCodeInvalidInput, "viewport must be positive, got %vx%v", c.Width, c.Height)
	}
	if c.Layout != settings.LayoutTree && c.Layout != settings.LayoutOrganic {
		return errors.New(errors.ErrCodeInvalidSetting, "unknown layout %q", c.Layout)
	}
	return nil
}

// BandFraction returns the vertical target for a role as a fraction of the
// viewport height. Smaller is higher on screen.
func BandFraction(r family.Role) float64 {
	switch r {
	case family.RoleGreatGrandparent:
		return 0.10
	case family.RoleGrandparent:
		return 0.20
	case family.RoleParent:
		return 0.35
	case family.RoleMe, family.RoleSpouse, family.RoleSibling, family.RolePet:
		return 0.55
	case family.RoleChild:
		return 0.80
	default:
		return 0.50
	}
}

// BandY returns the vertical target for a role in a viewport of height h.
func BandY(r family.Role, h float64) float64 {
	return BandFraction(r) * h
}
