package settings

import "strings"

// Change is a set of settings aspects that differ between two values.
type Change uint8

const (
	ChangeLayout Change = 1 << iota
	ChangeLinkStyle
	ChangeTheme
	ChangeNodeShape
	ChangeParticles
)

var changeNames = []struct {
	c    Change
	name string
}{
	{ChangeLayout, "layout"},
	{ChangeLinkStyle, "link_style"},
	{ChangeTheme, "theme"},
	{ChangeNodeShape, "node_shape"},
	{ChangeParticles, "particles"},
}

// Diff compares the normalized forms of prev and next.
func Diff(prev, next Settings) Change {
	prev, next = prev.Normalized(), next.Normalized()
	var c Change
	if prev.Layout != next.Layout {
		c |= ChangeLayout
	}
	if prev.LinkStyle != next.LinkStyle {
		c |= ChangeLinkStyle
	}
	if prev.Theme != next.Theme {
		c |= ChangeTheme
	}
	if prev.NodeShape != next.NodeShape {
		c |= ChangeNodeShape
	}
	if prev.Particles != next.Particles {
		c |= ChangeParticles
	}
	return c
}

// None reports whether nothing changed.
func (c Change) None() bool { return c == 0 }

// Has reports whether every aspect in other changed.
func (c Change) Has(other Change) bool { return c&other == other }

// ThemeOnly reports whether the theme is the only changed aspect. Such a
// change re-skins the current frame without rebuilding the layout.
func (c Change) ThemeOnly() bool { return c == ChangeTheme }

func (c Change) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	for _, n := range changeNames {
		if c.Has(n.c) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ",")
}
