package sink

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/family/transform"
	"github.com/matzehuels/familygraph/pkg/force"
	"github.com/matzehuels/familygraph/pkg/render"
	"github.com/matzehuels/familygraph/pkg/settings"
)

func settledFrame(t *testing.T, s settings.Settings) render.Frame {
	t.Helper()
	g := family.Fallback()
	g.Nodes = append(g.Nodes,
		family.Node{ID: "sis", Name: "Sis <Example>", Role: family.RoleSibling, Type: family.TypeHuman},
		family.Node{ID: "rex", Name: "Rex", Role: family.RolePet, Type: family.TypePet},
	)
	g.Edges = append(g.Edges,
		family.Edge{ID: "l4", Source: "dummy-father", Target: "sis", Type: family.EdgeParentChild},
		family.Edge{ID: "l5", Source: "dummy-me", Target: "rex", Type: family.EdgePetOwner},
	)
	g, _ = transform.WithInferred(g)
	sim, _ := force.New(g, force.Config{Width: 800, Height: 600, Layout: s.Layout})
	sim.Settle(0)
	return render.Project(sim.Snapshot(), s, render.NewParticleField(800, 600, 1).Particles())
}

func TestRenderSVG_WellFormed(t *testing.T) {
	s := settings.Default()
	s.Particles = true
	svg := RenderSVG(settledFrame(t, s), render.ThemePalette(s.Theme))

	dec := xml.NewDecoder(bytes.NewReader(svg))
	for {
		_, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			t.Fatalf("invalid XML: %v\n%s", err, svg)
		}
	}
}

func TestRenderSVG_Content(t *testing.T) {
	s := settings.Default()
	s.Particles = true
	svg := string(RenderSVG(settledFrame(t, s), render.ThemePalette(s.Theme), WithTitle("The Lees")))

	checks := []struct {
		name string
		want string
	}{
		{"viewbox", `viewBox="0 0 800 600"`},
		{"radial gradient", `<radialGradient id="bg-gradient" cx="50%" cy="50%"`},
		{"gradient", `<stop offset="0%" stop-color="#1e293b"/>`},
		{"border width", `stroke-width="2"`},
		{"glow filter", `<feGaussianBlur stdDeviation="2"`},
		{"glow applied", `filter="url(#glow)"`},
		{"me border", `stroke="#fff"`},
		{"pet border", `stroke="#fbbf24"`},
		{"sibling dash", `stroke-dasharray="4,4"`},
		{"inferred opacity", `stroke-opacity="0.6"`},
		{"circle glyph", `<circle r="35"`},
		{"pet glyph", `<circle r="25"`},
		{"clipped avatar", `clip-path="url(#clip-0)"`},
		{"escaped label", `Sis`},
		{"escaped name", `Sis &lt;Example&gt;`},
		{"title", `>The Lees</text>`},
		{"particles", `<g class="particles">`},
	}
	for _, c := range checks {
		if !strings.Contains(svg, c.want) {
			t.Errorf("%s: missing %q", c.name, c.want)
		}
	}
	if got := strings.Count(svg, `opacity="0.3"`); got != render.ParticleCount {
		t.Errorf("particle circles = %d, want %d", got, render.ParticleCount)
	}
}

func TestRenderSVG_Hexagon(t *testing.T) {
	s := settings.Default()
	s.NodeShape = settings.ShapeHexagon
	svg := string(RenderSVG(settledFrame(t, s), render.ThemePalette(s.Theme)))

	if !strings.Contains(svg, `<polygon points="35,0 17.5,30.31`) {
		t.Error("hexagon glyph missing")
	}
	if strings.Contains(svg, `<circle r="35"`) {
		t.Error("circle glyph drawn in hexagon mode")
	}
}

func TestRenderSVG_ThemeReskinKeepsGeometry(t *testing.T) {
	f := settledFrame(t, settings.Default())

	midnight := string(RenderSVG(f, render.ThemePalette(settings.ThemeMidnight)))
	parchment := string(RenderSVG(f, render.ThemePalette(settings.ThemeParchment)))

	if !strings.Contains(parchment, `stop-color="#faebd7"`) || strings.Contains(parchment, `stop-color="#1e293b"`) {
		t.Error("parchment palette not applied")
	}
	pathsOf := func(svg string) []string {
		var out []string
		for _, line := range strings.Split(svg, "\n") {
			if i := strings.Index(line, ` d="`); i >= 0 {
				out = append(out, line[i:i+strings.Index(line[i+4:], `"`)+4])
			}
		}
		return out
	}
	a, b := pathsOf(midnight), pathsOf(parchment)
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("paths = %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("path %d changed with theme", i)
		}
	}
}

func TestRenderSVG_Options(t *testing.T) {
	f := settledFrame(t, settings.Default())
	svg := string(RenderSVG(f, render.ThemePalette(settings.ThemeIvory), WithTitle(""), WithoutAvatars(), WithoutBackground()))

	if strings.Contains(svg, "<image") {
		t.Error("avatars rendered despite WithoutAvatars")
	}
	if strings.Contains(svg, `class="title"`) {
		t.Error("title rendered despite empty title")
	}
	if strings.Contains(svg, `class="background"`) {
		t.Error("background rendered despite WithoutBackground")
	}
	if !strings.Contains(string(RenderSVG(f, render.ThemePalette(settings.ThemeIvory))), DefaultTitle) {
		t.Error("default title missing")
	}
}

func TestRenderSVG_Frames(t *testing.T) {
	f := settledFrame(t, settings.Default())
	p := render.ThemePalette(settings.ThemeMidnight)

	plain := string(RenderSVG(f, p))
	if strings.Contains(plain, `class="frame`) {
		t.Error("frame drawn without WithFrame")
	}
	if none := string(RenderSVG(f, p, WithFrame(FrameNone))); none != plain {
		t.Error("FrameNone should match the unframed output")
	}

	for _, style := range FrameStyles[1:] {
		t.Run(string(style), func(t *testing.T) {
			svg := RenderSVG(f, p, WithFrame(style))
			if !strings.Contains(string(svg), `class="frame frame-`+string(style)+`"`) {
				t.Errorf("frame group for %s missing", style)
			}
			if got := strings.Contains(string(svg), `id="neon-glow"`); got != (style == FrameNeon) {
				t.Errorf("neon-glow filter present = %v", got)
			}
			if i, j := strings.Index(string(svg), `class="frame`), strings.Index(string(svg), `class="title"`); i < j {
				t.Error("frame should be drawn over the title")
			}
			dec := xml.NewDecoder(bytes.NewReader(svg))
			for {
				if _, err := dec.Token(); err != nil {
					if err != io.EOF {
						t.Fatalf("invalid XML: %v", err)
					}
					break
				}
			}
		})
	}

	if got := strings.Count(string(RenderSVG(f, p, WithFrame(FrameFloral))), `fill="#fde68a"`); got != 4 {
		t.Errorf("floral corners = %d, want 4", got)
	}
}

func TestParseFrameStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    FrameStyle
		wantErr bool
	}{
		{"", FrameNone, false},
		{"vintage", FrameVintage, false},
		{" Neon ", FrameNeon, false},
		{"none", FrameNone, false},
		{"gold", FrameNone, true},
	}
	for _, tt := range tests {
		got, err := ParseFrameStyle(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFrameStyle(%q) = %q, %v", tt.in, got, err)
		}
		if tt.wantErr && !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("ParseFrameStyle(%q) err = %v, want INVALID_INPUT", tt.in, err)
		}
	}
}
