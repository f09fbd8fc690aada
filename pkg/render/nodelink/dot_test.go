package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/render"
	"github.com/matzehuels/familygraph/pkg/settings"
)

func sampleGraph() family.Graph {
	return family.Graph{
		Nodes: []family.Node{
			{ID: "me", Name: "Ada Lovelace", Role: family.RoleMe, Type: family.TypeHuman},
			{ID: "dad", Name: "George", Role: family.RoleParent, Type: family.TypeHuman, Age: 61, LifeStatus: family.Deceased},
			{ID: "mom", Name: "Anne", Role: family.RoleParent, Type: family.TypeHuman},
			{ID: "bro", Name: "Ben", Role: family.RoleSibling, Type: family.TypeHuman},
			{ID: "rex", Name: "Rex", Role: family.RolePet, Type: family.TypePet},
		},
		Edges: []family.Edge{
			{ID: "e1", Source: "dad", Target: "me", Type: family.EdgeParentChild},
			{ID: "e2", Source: "dad", Target: "mom", Type: family.EdgeSpouse},
			{ID: "e3", Source: "me", Target: "bro", Type: family.EdgeSiblingInferred},
			{ID: "e4", Source: "me", Target: "rex", Type: family.EdgePetOwner},
		},
	}
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{})

	for _, want := range []string{
		"digraph family",
		"rankdir=TB",
		`"me" [label="Ada Lovelace"`,
		`"dad" -> "me"`,
		`"rex" [label="Rex"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q", want)
		}
	}
}

func TestToDOT_Ranks(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{})

	parents := strings.Index(dot, `{ rank=same; "dad"; "mom"; }`)
	self := strings.Index(dot, `{ rank=same; "me"; "bro"; "rex"; }`)
	if parents < 0 || self < 0 {
		t.Fatalf("ToDOT() missing rank groups:\n%s", dot)
	}
	if parents > self {
		t.Error("parent rank should precede the me rank")
	}
}

func TestToDOT_EdgeStyles(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{})
	lines := strings.Split(dot, "\n")

	find := func(prefix string) string {
		for _, l := range lines {
			if strings.Contains(l, prefix) {
				return l
			}
		}
		t.Fatalf("no line containing %q", prefix)
		return ""
	}

	if l := find(`"dad" -> "mom"`); !strings.Contains(l, "dir=none") || !strings.Contains(l, "constraint=false") {
		t.Errorf("spouse edge attrs = %q", l)
	}
	if l := find(`"me" -> "bro"`); !strings.Contains(l, "style=dotted") {
		t.Errorf("inferred sibling attrs = %q", l)
	}
	if l := find(`"dad" -> "me"`); strings.Contains(l, "dir=none") {
		t.Errorf("parent edge should be directed: %q", l)
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{Detailed: true})
	if !strings.Contains(dot, `George\nparent\nage 61\ndeceased`) {
		t.Errorf("ToDOT() detailed label missing:\n%s", dot)
	}
	if !strings.Contains(dot, `style="filled,dashed"`) {
		t.Error("deceased node should be dashed")
	}
}

func TestToDOT_Palette(t *testing.T) {
	p := render.ThemePalette(settings.ThemeIvory)
	dot := ToDOT(sampleGraph(), Options{Palette: p})
	if !strings.Contains(dot, `bgcolor="`+p.BgDeep+`"`) {
		t.Errorf("ToDOT() background not taken from palette")
	}
	if !strings.Contains(dot, `"rex" [label="Rex", color="`+p.Border(render.BorderPet)+`", shape=hexagon]`) {
		t.Errorf("pet node not styled:\n%s", dot)
	}
}

func TestToDOT_Empty(t *testing.T) {
	dot := ToDOT(family.Graph{}, Options{})
	if !strings.HasPrefix(dot, "digraph family {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("ToDOT(empty) = %q", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sampleGraph(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), `not valid DOT {{{`); err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
