// Package settings holds the view configuration of a family graph.
//
// [Settings] is a plain value: layout mode, link style, theme, node shape and
// the particle toggle. It is never mutated in place. A [Store] holds the
// current value, replaces it wholesale and tells subscribers what changed so
// they can decide between a re-skin ([Change.ThemeOnly]) and a full rebuild.
package settings

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/familygraph/pkg/errors"
)

type Layout string

const (
	LayoutTree    Layout = "tree"
	LayoutOrganic Layout = "organic"
)

type LinkStyle string

const (
	LinkCurved   LinkStyle = "curved"
	LinkStraight LinkStyle = "straight"
)

type Theme string

const (
	ThemeMidnight  Theme = "midnight"
	ThemeIvory     Theme = "ivory"
	ThemeParchment Theme = "parchment"
)

type NodeShape string

const (
	ShapeCircle  NodeShape = "circle"
	ShapeHexagon NodeShape = "hexagon"
)

var (
	Layouts    = []Layout{LayoutTree, LayoutOrganic}
	LinkStyles = []LinkStyle{LinkCurved, LinkStraight}
	Themes     = []Theme{ThemeMidnight, ThemeIvory, ThemeParchment}
	NodeShapes = []NodeShape{ShapeCircle, ShapeHexagon}
)

// Keys accepted by Parse, in display order.
var Keys = []string{"layout", "link_style", "theme", "node_shape", "particles"}

// Settings is the live view configuration.
type Settings struct {
	Layout    Layout    `toml:"layout" json:"layout"`
	LinkStyle LinkStyle `toml:"link_style" json:"linkStyle"`
	Theme     Theme     `toml:"theme" json:"theme"`
	NodeShape NodeShape `toml:"node_shape" json:"nodeShape"`
	Particles bool      `toml:"particles" json:"particles"`
}

// Default returns tree layout, curved links, midnight theme, circles and no
// particles.
func Default() Settings {
	return Settings{
		Layout:    LayoutTree,
		LinkStyle: LinkCurved,
		Theme:     ThemeMidnight,
		NodeShape: ShapeCircle,
	}
}

// Normalized replaces every missing or unknown field with its default.
func (s Settings) Normalized() Settings {
	d := Default()
	if !slices.Contains(Layouts, s.Layout) {
		s.Layout = d.Layout
	}
	if !slices.Contains(LinkStyles, s.LinkStyle) {
		s.LinkStyle = d.LinkStyle
	}
	if !slices.Contains(Themes, s.Theme) {
		s.Theme = d.Theme
	}
	if !slices.Contains(NodeShapes, s.NodeShape) {
		s.NodeShape = d.NodeShape
	}
	return s
}

// Validate reports the first unknown value. Empty fields are allowed and
// mean "use the default".
func (s Settings) Validate() error {
	if s.Layout != "" && !slices.Contains(Layouts, s.Layout) {
		return invalid("layout", string(s.Layout), Layouts)
	}
	if s.LinkStyle != "" && !slices.Contains(LinkStyles, s.LinkStyle) {
		return invalid("link_style", string(s.LinkStyle), LinkStyles)
	}
	if s.Theme != "" && !slices.Contains(Themes, s.Theme) {
		return invalid("theme", string(s.Theme), Themes)
	}
	if s.NodeShape != "" && !slices.Contains(NodeShapes, s.NodeShape) {
		return invalid("node_shape", string(s.NodeShape), NodeShapes)
	}
	return nil
}

func invalid[T ~string](key, value string, allowed []T) error {
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return errors.New(errors.ErrCodeInvalidSetting, "invalid %s %q (allowed: %s)", key, value, strings.Join(names, ", "))
}

// Parse returns a copy of s with key set to value. Keys accept either the
// snake_case or camelCase spelling.
func (s Settings) Parse(key, value string) (Settings, error) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.ReplaceAll(key, "_", "")) {
	case "layout":
		s.Layout = Layout(value)
	case "linkstyle", "links":
		s.LinkStyle = LinkStyle(value)
	case "theme":
		s.Theme = Theme(value)
	case "nodeshape", "shape":
		s.NodeShape = NodeShape(value)
	case "particles":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return s, errors.New(errors.ErrCodeInvalidSetting, "invalid particles %q (want true or false)", value)
		}
		s.Particles = b
		return s, nil
	default:
		return s, errors.New(errors.ErrCodeInvalidSetting, "unknown setting %q (allowed: %s)", key, strings.Join(Keys, ", "))
	}
	return s, s.Validate()
}

// Get returns the string form of key.
func (s Settings) Get(key string) (string, bool) {
	switch key {
	case "layout":
		return string(s.Layout), true
	case "link_style":
		return string(s.LinkStyle), true
	case "theme":
		return string(s.Theme), true
	case "node_shape":
		return string(s.NodeShape), true
	case "particles":
		return strconv.FormatBool(s.Particles), true
	}
	return "", false
}

// Options returns the allowed values of key.
func Options(key string) []string {
	var out []string
	switch key {
	case "layout":
		for _, v := range Layouts {
			out = append(out, string(v))
		}
	case "link_style":
		for _, v := range LinkStyles {
			out = append(out, string(v))
		}
	case "theme":
		for _, v := range Themes {
			out = append(out, string(v))
		}
	case "node_shape":
		for _, v := range NodeShapes {
			out = append(out, string(v))
		}
	case "particles":
		out = []string{"false", "true"}
	}
	return out
}

func (s Settings) String() string {
	return fmt.Sprintf("layout=%s links=%s theme=%s shape=%s particles=%t",
		s.Layout, s.LinkStyle, s.Theme, s.NodeShape, s.Particles)
}

// Decode reads TOML settings. Unknown values are rejected; missing keys keep
// their defaults.
func Decode(r io.Reader) (Settings, error) {
	s := Default()
	if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
		return Default(), errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode settings")
	}
	if err := s.Validate(); err != nil {
		return Default(), err
	}
	return s.Normalized(), nil
}

// Encode writes s as TOML.
func Encode(w io.Writer, s Settings) error {
	return toml.NewEncoder(w).Encode(s.Normalized())
}
