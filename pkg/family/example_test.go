package family_test

import (
	"fmt"

	"github.com/matzehuels/familygraph/pkg/family"
)

func ExampleNormalize() {
	profiles := []family.Profile{
		{ID: "ann", Name: "Ann Lee", Role: "me"},
		{ID: "bob", Name: "Bob Lee", Role: "parent"},
	}
	rels := []family.Relationship{
		{ID: "r1", SourceID: "bob", TargetID: "ann", Type: "parent_child", Strength: 1.2},
		{ID: "r2", SourceID: "bob", TargetID: "carl", Type: "parent_child", Strength: 1.2},
	}

	g, diags := family.Normalize(profiles, rels)
	fmt.Println("nodes:", g.NodeCount(), "edges:", g.EdgeCount())
	for _, d := range diags {
		fmt.Println(d)
	}
	// Output:
	// nodes: 2 edges: 1
	// unresolved_edge [edge r2]: target "carl" is not a known member
}

func ExampleFallback() {
	g := family.Fallback()
	me, _ := g.Me()
	fmt.Println(me.ShortName(), len(g.Nodes), len(g.Edges))
	// Output: You 3 3
}
