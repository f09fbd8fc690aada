package force

import (
	"math"
	"testing"

	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/settings"
)

func TestBandFraction_Ordering(t *testing.T) {
	order := []family.Role{
		family.RoleGreatGrandparent,
		family.RoleGrandparent,
		family.RoleParent,
		family.RoleMe,
		family.RoleChild,
	}
	for i := 1; i < len(order); i++ {
		if BandY(order[i-1], 600) >= BandY(order[i], 600) {
			t.Errorf("band of %s (%v) not above %s (%v)",
				order[i-1], BandY(order[i-1], 600), order[i], BandY(order[i], 600))
		}
	}
	for _, r := range []family.Role{family.RoleSpouse, family.RoleSibling, family.RolePet} {
		if BandFraction(r) != BandFraction(family.RoleMe) {
			t.Errorf("%s should share the me band", r)
		}
	}
	if BandFraction("cousin") != 0.5 {
		t.Errorf("unknown role band = %v, want 0.5", BandFraction("cousin"))
	}
}

func TestParams_Distance(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		typ  family.EdgeType
		want float64
	}{
		{family.EdgeSpouse, 60},
		{family.EdgeSibling, 180},
		{family.EdgeSiblingInferred, 180},
		{family.EdgeParentChild, 120},
		{family.EdgePetOwner, 120},
		{family.EdgeGrandparentGrandkid, 120},
	}
	for _, tt := range tests {
		if got := p.Distance(tt.typ); got != tt.want {
			t.Errorf("Distance(%s) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestParams_CenterStrength(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		layout settings.Layout
		hasMe  bool
		want   float64
	}{
		{settings.LayoutTree, true, 0.05},
		{settings.LayoutTree, false, 0.05},
		{settings.LayoutOrganic, true, 0.05},
		{settings.LayoutOrganic, false, 0.8},
	}
	for _, tt := range tests {
		if got := p.CenterStrength(tt.layout, tt.hasMe); got != tt.want {
			t.Errorf("CenterStrength(%s, %v) = %v, want %v", tt.layout, tt.hasMe, got, tt.want)
		}
	}
}

func TestNew_BandOnlyInTree(t *testing.T) {
	tree, _ := New(familyOf(), Config{Layout: settings.LayoutTree})
	organic, _ := New(familyOf(), Config{Layout: settings.LayoutOrganic})

	hasBand := func(s *Simulation) bool {
		for _, f := range s.forces {
			if _, ok := f.(bandForce); ok {
				return true
			}
		}
		return false
	}
	if !hasBand(tree) {
		t.Error("tree layout lacks the band force")
	}
	if hasBand(organic) {
		t.Error("organic layout has the band force")
	}
}

// bare returns a simulation with the given bodies and no forces.
func bare(bodies ...Body) *Simulation {
	s, _ := New(family.Graph{}, Config{})
	s.bodies = bodies
	return s
}

func TestLinkForce_PullsTowardRestLength(t *testing.T) {
	s := bare(Body{X: 0, Y: 0}, Body{X: 300, Y: 0})
	f := newLinkForce(s.bodies, []link{{source: 0, target: 1, distance: 100}})

	f.apply(s, 1)

	if !(s.bodies[0].VX > 0 && s.bodies[1].VX < 0) {
		t.Errorf("stretched link should pull together, got v = %v, %v", s.bodies[0].VX, s.bodies[1].VX)
	}
	if f.links[0].strength != 1 || f.links[0].bias != 0.5 {
		t.Errorf("strength/bias = %v/%v, want 1/0.5", f.links[0].strength, f.links[0].bias)
	}
}

func TestLinkForce_StrengthFromDegree(t *testing.T) {
	bodies := make([]Body, 4)
	f := newLinkForce(bodies, []link{
		{source: 0, target: 1},
		{source: 0, target: 2},
		{source: 0, target: 3},
	})
	// Hub has degree 3, leaves degree 1.
	if f.links[0].strength != 1 {
		t.Errorf("strength = %v, want 1", f.links[0].strength)
	}
	if f.links[0].bias != 0.75 {
		t.Errorf("bias = %v, want 0.75", f.links[0].bias)
	}
}

func TestChargeForce_Repels(t *testing.T) {
	s := bare(Body{X: 0, Y: 0}, Body{X: 10, Y: 0})
	chargeForce{strength: -1000}.apply(s, 1)

	if !(s.bodies[0].VX < 0 && s.bodies[1].VX > 0) {
		t.Errorf("charge should push apart, got v = %v, %v", s.bodies[0].VX, s.bodies[1].VX)
	}
	if math.Abs(s.bodies[0].VX+s.bodies[1].VX) > 1e-9 {
		t.Error("charge should be symmetric")
	}
}

func TestChargeForce_CoincidentNodes(t *testing.T) {
	s := bare(Body{X: 5, Y: 5}, Body{X: 5, Y: 5})
	chargeForce{strength: -1000}.apply(s, 1)
	for _, b := range s.bodies {
		if math.IsNaN(b.VX) || math.IsNaN(b.VY) || math.IsInf(b.VX, 0) {
			t.Fatalf("coincident nodes produced invalid velocity %v, %v", b.VX, b.VY)
		}
	}
}

func TestCollideForce(t *testing.T) {
	s := bare(Body{X: 0, Y: 0}, Body{X: 50, Y: 0}, Body{X: 1000, Y: 0})
	collideForce{radius: 70, strength: 1}.apply(s, 1)

	if !(s.bodies[0].VX < 0 && s.bodies[1].VX > 0) {
		t.Errorf("overlapping bodies should separate, got %v, %v", s.bodies[0].VX, s.bodies[1].VX)
	}
	// Full separation: each moves half of the overlap.
	if got := s.bodies[1].VX - s.bodies[0].VX; math.Abs(got-90) > 1e-9 {
		t.Errorf("relative push = %v, want 90", got)
	}
	if s.bodies[2].VX != 0 {
		t.Error("distant body should be untouched")
	}
}

func TestCenterForce(t *testing.T) {
	s := bare(Body{X: 0, Y: 0}, Body{X: 100, Y: 100})
	centerForce{x: 100, y: 100, strength: 1}.apply(s, 1)

	if s.bodies[0].X != 50 || s.bodies[1].Y != 150 {
		t.Errorf("bodies = %+v, want mean moved to (100, 100)", s.bodies)
	}
}

func TestBandForce(t *testing.T) {
	bodies := []Body{
		{Node: family.Node{Role: family.RoleParent}, Y: 300},
		{Node: family.Node{Role: family.RoleChild}, Y: 300},
	}
	s := bare(bodies...)
	newBandForce(s.bodies, 1000, 1).apply(s, 0.5)

	if math.Abs(s.bodies[0].VY-25) > 1e-9 {
		t.Errorf("parent vy = %v", s.bodies[0].VY)
	}
	if math.Abs(s.bodies[1].VY-250) > 1e-9 {
		t.Errorf("child vy = %v", s.bodies[1].VY)
	}
}
