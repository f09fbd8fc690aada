package family

import (
	"strings"
	"testing"
)

func TestNode_ShortName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Jane Mary Doe", "Jane"},
		{"  Leading Space", "Leading"},
		{"Solo", "Solo"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := (Node{Name: tt.name}).ShortName(); got != tt.want {
			t.Errorf("ShortName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNode_AvatarURL(t *testing.T) {
	withPhoto := Node{Name: "Ann", PhotoURL: "https://img.example/ann.png"}
	if got := withPhoto.AvatarURL(); got != withPhoto.PhotoURL {
		t.Errorf("AvatarURL() = %q, want photo", got)
	}

	generated := Node{Name: "Ann Lee"}.AvatarURL()
	if !strings.HasPrefix(generated, avatarBaseURL) {
		t.Errorf("AvatarURL() = %q, want generated avatar", generated)
	}
	if generated != (Node{Name: "Ann Lee"}).AvatarURL() {
		t.Error("generated avatar is not deterministic")
	}
	if strings.Contains(generated, " ") {
		t.Errorf("AvatarURL() = %q, seed not escaped", generated)
	}
}

func TestRole_Generation(t *testing.T) {
	order := []Role{RoleGreatGrandparent, RoleGrandparent, RoleParent, RoleMe, RoleChild}
	for i := 1; i < len(order); i++ {
		if order[i-1].Generation() >= order[i].Generation() {
			t.Errorf("%s should rank above %s", order[i-1], order[i])
		}
	}
	if !RoleGrandparent.IsAncestor() || RoleSibling.IsAncestor() {
		t.Error("IsAncestor mismatch")
	}
}

func TestEdge_Direction(t *testing.T) {
	e := Edge{Source: "a", Target: "b", Type: EdgeSpouse}
	if _, ok := e.Parent(); ok {
		t.Error("Parent() should not apply to spouse edges")
	}
	if !e.Connects("b", "a") || e.Connects("a", "c") {
		t.Error("Connects mismatch")
	}
	if (Edge{Type: EdgeSiblingInferred}).Inferred() != true {
		t.Error("sibling_inferred should report Inferred")
	}
}

func TestGraph_Clone(t *testing.T) {
	g := Fallback()
	c := g.Clone()
	c.Nodes[0].Name = "changed"
	c.Edges[0].Strength = 9
	if g.Nodes[0].Name == "changed" || g.Edges[0].Strength == 9 {
		t.Error("Clone shares backing arrays")
	}
	if me, ok := g.Me(); !ok || me.ID != "dummy-me" {
		t.Errorf("Me() = %+v, %v", me, ok)
	}
}
