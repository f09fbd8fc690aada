package render

import "github.com/matzehuels/familygraph/pkg/settings"

// Palette is the set of colours a sink paints a Frame with.
type Palette struct {
	Theme           settings.Theme
	BgDeep          string
	TextPrimary     string
	TextSecondary   string
	AccentPrimary   string
	AccentSecondary string
	Gold            string
	Me              string
	GradientFrom    string
	GradientTo      string
}

var palettes = map[settings.Theme]Palette{
	settings.ThemeMidnight: {
		BgDeep:        "#0f172a",
		TextPrimary:   "#f8fafc",
		AccentPrimary: "#38bdf8",
		GradientFrom:  "#1e293b",
		GradientTo:    "#0f172a",
	},
	settings.ThemeIvory: {
		BgDeep:        "#fdfbf7",
		TextPrimary:   "#1e293b",
		AccentPrimary: "#0ea5e9",
		GradientFrom:  "#ffffff",
		GradientTo:    "#f1f5f9",
	},
	settings.ThemeParchment: {
		BgDeep:        "#f5e6d3",
		TextPrimary:   "#4a3b2a",
		AccentPrimary: "#d97706",
		GradientFrom:  "#faebd7",
		GradientTo:    "#deb887",
	},
}

// ThemePalette returns the palette for theme. Unknown themes get midnight.
func ThemePalette(theme settings.Theme) Palette {
	theme = settings.Settings{Theme: theme}.Normalized().Theme
	p := palettes[theme]
	p.Theme = theme
	p.TextSecondary = "#94a3b8"
	p.AccentSecondary = "#a78bfa"
	p.Gold = "#fbbf24"
	p.Me = "#fff"
	return p
}

// Border returns the stroke colour of a node border tier.
func (p Palette) Border(t BorderTier) string {
	switch t {
	case BorderMe:
		return p.Me
	case BorderPet:
		return p.Gold
	case BorderAncestor:
		return p.AccentSecondary
	default:
		return p.AccentPrimary
	}
}

// Stroke returns the colour of a link tone.
func (p Palette) Stroke(t LinkTone) string {
	switch t {
	case ToneGold:
		return p.Gold
	case ToneAccent:
		return p.AccentPrimary
	default:
		return p.TextSecondary
	}
}
