package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/force"
	"github.com/matzehuels/familygraph/pkg/settings"
)

// Node glyph geometry.
const (
	HumanSize   = 35.0
	PetSize     = 25.0
	HumanLabelY = 52.0
	PetLabelY   = 40.0
	BorderWidth = 2.0
	// ArcFactor scales the chord length into the radius of curved links.
	ArcFactor = 1.5
)

// BorderTier selects a node border colour from the palette.
type BorderTier int

const (
	BorderDefault BorderTier = iota
	BorderMe
	BorderPet
	BorderAncestor
)

// LinkTone selects a link stroke colour from the palette.
type LinkTone int

const (
	ToneMuted LinkTone = iota
	ToneAccent
	ToneGold
)

// Frame is one projected, colour-free picture of the graph.
type Frame struct {
	Width     float64
	Height    float64
	Settings  settings.Settings
	Tick      int
	Settled   bool
	Links     []LinkPath
	Nodes     []Glyph
	Particles []Particle
}

// LinkPath is a drawable edge.
type LinkPath struct {
	ID      string
	Type    family.EdgeType
	D       string
	Width   float64
	Opacity float64
	Dash    string
	Tone    LinkTone
}

// Glyph is a drawable node, centred at (X, Y).
type Glyph struct {
	ID     family.NodeID
	Name   string
	Label  string
	Role   family.Role
	X, Y   float64
	Shape  settings.NodeShape
	Size   float64
	Points string // hexagon vertices relative to the centre
	Border BorderTier
	Glow   bool
	Image  string
	LabelY float64
	Pinned bool
}

// Project maps a snapshot to a Frame under the given settings. Missing or
// unknown settings take their defaults. Particles are copied into the frame
// only when the particle overlay is enabled.
func Project(snap force.Snapshot, s settings.Settings, particles []Particle) Frame {
	s = s.Normalized()
	f := Frame{
		Width:    snap.Width,
		Height:   snap.Height,
		Settings: s,
		Tick:     snap.Tick,
		Settled:  snap.Settled,
		Links:    make([]LinkPath, 0, len(snap.Links)),
		Nodes:    make([]Glyph, 0, len(snap.Bodies)),
	}
	for _, l := range snap.Links {
		f.Links = append(f.Links, projectLink(l, s.LinkStyle))
	}
	for _, b := range snap.Bodies {
		f.Nodes = append(f.Nodes, projectNode(b, s.NodeShape))
	}
	if s.Particles && len(particles) > 0 {
		f.Particles = append([]Particle(nil), particles...)
	}
	return f
}

func projectLink(l force.LinkState, style settings.LinkStyle) LinkPath {
	p := LinkPath{ID: l.Edge.ID, Type: l.Edge.Type}
	if style == settings.LinkStraight {
		p.D = LinePath(l.X1, l.Y1, l.X2, l.Y2)
	} else {
		p.D = ArcPath(l.X1, l.Y1, l.X2, l.Y2)
	}

	switch {
	case l.Edge.Type == family.EdgeSpouse:
		p.Width, p.Tone = 3, ToneGold
	case l.Edge.Type.IsSibling():
		p.Width, p.Tone, p.Dash = 2, ToneAccent, "4,4"
	default:
		p.Width, p.Tone = 1.5, ToneMuted
	}
	p.Opacity = 0.8
	if l.Edge.Inferred() {
		p.Opacity = 0.6
	}
	return p
}

func projectNode(b force.Body, shape settings.NodeShape) Glyph {
	n := b.Node
	g := Glyph{
		ID:     n.ID,
		Name:   n.Name,
		Label:  n.ShortName(),
		Role:   n.Role,
		X:      b.X,
		Y:      b.Y,
		Shape:  shape,
		Size:   HumanSize,
		LabelY: HumanLabelY,
		Image:  n.AvatarURL(),
		Pinned: b.Pinned,
		Border: BorderTierOf(n),
		Glow:   n.IsMe(),
	}
	if n.IsPet() {
		g.Size, g.LabelY = PetSize, PetLabelY
	}
	if shape == settings.ShapeHexagon {
		g.Points = HexagonPoints(g.Size)
	}
	return g
}

// BorderTierOf returns the border tier of a node. Type decides pets; role
// decides everything else.
func BorderTierOf(n family.Node) BorderTier {
	switch {
	case n.IsMe():
		return BorderMe
	case n.IsPet():
		return BorderPet
	case n.Role.IsAncestor():
		return BorderAncestor
	default:
		return BorderDefault
	}
}

// LinePath returns a straight SVG path between two points.
func LinePath(x1, y1, x2, y2 float64) string {
	var b strings.Builder
	b.WriteString("M")
	writePoint(&b, x1, y1)
	b.WriteString(" L")
	writePoint(&b, x2, y2)
	return b.String()
}

// ArcPath returns a circular arc between two points with radius ArcFactor
// times their distance. The sweep flag is fixed so redraws never flip to the
// mirrored arc.
func ArcPath(x1, y1, x2, y2 float64) string {
	r := ArcFactor * math.Hypot(x2-x1, y2-y1)
	var b strings.Builder
	b.WriteString("M")
	writePoint(&b, x1, y1)
	b.WriteString(" A")
	writePoint(&b, r, r)
	b.WriteString(" 0 0,1 ")
	writePoint(&b, x2, y2)
	return b.String()
}

// HexagonPoints returns the six vertices of a regular hexagon of the given
// radius, at 60 degree steps starting on the positive x axis.
func HexagonPoints(size float64) string {
	var b strings.Builder
	for i := range 6 {
		if i > 0 {
			b.WriteByte(' ')
		}
		a := float64(i) * math.Pi / 3
		writePoint(&b, size*math.Cos(a), size*math.Sin(a))
	}
	return b.String()
}

func writePoint(b *strings.Builder, x, y float64) {
	b.WriteString(Num(x))
	b.WriteByte(',')
	b.WriteString(Num(y))
}

// Num formats a coordinate with at most two decimals and no trailing zeros.
func Num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
