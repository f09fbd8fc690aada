package transform

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/familygraph/pkg/family"
)

func pc(parent, child family.NodeID) family.Edge {
	return family.Edge{ID: string(parent) + "->" + string(child), Source: parent, Target: child, Type: family.EdgeParentChild}
}

// pairs returns the inferred edges as a set of unordered pairs.
func pairs(edges []family.Edge) map[pairKey]int {
	out := make(map[pairKey]int, len(edges))
	for _, e := range edges {
		out[keyOf(e.Source, e.Target)]++
	}
	return out
}

func TestInferSiblings_TwoChildren(t *testing.T) {
	got := InferSiblings([]family.Edge{pc("P", "A"), pc("P", "B")})

	if len(got) != 1 {
		t.Fatalf("InferSiblings() = %d edges, want 1", len(got))
	}
	e := got[0]
	if !e.Connects("A", "B") || e.Type != family.EdgeSiblingInferred {
		t.Errorf("edge = %+v, want A-B sibling_inferred", e)
	}
	if e.ID != "inferred-A-B" {
		t.Errorf("ID = %q, want inferred-A-B", e.ID)
	}
}

func TestInferSiblings_ThreeChildren(t *testing.T) {
	got := pairs(InferSiblings([]family.Edge{pc("P", "C"), pc("P", "A"), pc("P", "B")}))

	want := []pairKey{keyOf("A", "B"), keyOf("A", "C"), keyOf("B", "C")}
	if len(got) != len(want) {
		t.Fatalf("pairs = %v, want %v", got, want)
	}
	for _, k := range want {
		if got[k] != 1 {
			t.Errorf("pair %v emitted %d times, want 1", k, got[k])
		}
	}
}

func TestInferSiblings_SkipsConnectedPairs(t *testing.T) {
	tests := []struct {
		name  string
		extra family.Edge
	}{
		{"explicit sibling", family.Edge{ID: "s", Source: "A", Target: "B", Type: family.EdgeSibling}},
		{"reverse direction", family.Edge{ID: "s", Source: "B", Target: "A", Type: family.EdgeSibling}},
		{"any edge type", family.Edge{ID: "s", Source: "B", Target: "A", Type: family.EdgeSpouse}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res := inferSiblings([]family.Edge{pc("P", "A"), pc("P", "B"), tt.extra})
			if res.Inferred != 0 || res.Skipped != 1 {
				t.Errorf("Result = %+v, want 0 inferred 1 skipped", res)
			}
		})
	}
}

func TestInferSiblings_SharedChildrenAcrossParents(t *testing.T) {
	edges := []family.Edge{
		pc("Mom", "A"), pc("Mom", "B"),
		pc("Dad", "A"), pc("Dad", "B"),
	}
	got, res := inferSiblings(edges)

	if len(got) != 1 {
		t.Fatalf("InferSiblings() = %d edges, want 1 (second parent reuses the pair)", len(got))
	}
	if res.Parents != 2 || res.Skipped != 1 {
		t.Errorf("Result = %+v", res)
	}
}

func TestInferSiblings_NoParentChild(t *testing.T) {
	got := InferSiblings([]family.Edge{{Source: "a", Target: "b", Type: family.EdgeSpouse}})
	if len(got) != 0 {
		t.Errorf("InferSiblings() = %v, want empty", got)
	}
	if got := InferSiblings(nil); len(got) != 0 {
		t.Errorf("InferSiblings(nil) = %v, want empty", got)
	}
}

func TestInferSiblings_DuplicateParentEdges(t *testing.T) {
	got := InferSiblings([]family.Edge{pc("P", "A"), pc("P", "A"), pc("P", "B")})
	if len(got) != 1 {
		t.Errorf("InferSiblings() = %d edges, want 1", len(got))
	}
}

func TestWithInferred_AppendsAfterExplicit(t *testing.T) {
	g := family.Fallback()
	g.Nodes = append(g.Nodes, family.Node{ID: "sis", Role: family.RoleSibling})
	g.Edges = append(g.Edges, pc("dummy-father", "sis"))

	out, res := WithInferred(g)

	if len(out.Edges) != len(g.Edges)+1 {
		t.Fatalf("edges = %d, want %d", len(out.Edges), len(g.Edges)+1)
	}
	for i := range g.Edges {
		if out.Edges[i] != g.Edges[i] {
			t.Errorf("explicit edge %d changed", i)
		}
	}
	last := out.Edges[len(out.Edges)-1]
	if !last.Inferred() || last.ID != InferredID("sis", "dummy-me") {
		t.Errorf("last edge = %+v", last)
	}
	if res.Inferred != 1 || res.Parents != 2 {
		t.Errorf("Result = %+v", res)
	}
	if len(g.Edges) != 4 {
		t.Error("WithInferred modified its input")
	}
}

func TestInferredID_OrderIndependent(t *testing.T) {
	if InferredID("x", "y") != InferredID("y", "x") {
		t.Error("InferredID depends on argument order")
	}
}

func TestInferSiblings_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	build := func(n int, seed uint64) []family.Edge {
		edges := make([]family.Edge, n)
		for i := range n {
			edges[i] = pc("P", family.NodeID(fmt.Sprintf("c%d", i)))
		}
		r := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
		r.Shuffle(len(edges), func(i, j int) { edges[i], edges[j] = edges[j], edges[i] })
		return edges
	}

	properties.Property("every child pair inferred exactly once regardless of order", prop.ForAll(
		func(n int, seed uint64) bool {
			got := pairs(InferSiblings(build(n, seed)))
			if len(got) != n*(n-1)/2 {
				return false
			}
			for _, count := range got {
				if count != 1 {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 12),
		gen.UInt64(),
	))

	properties.Property("inference is idempotent", prop.ForAll(
		func(n int, seed uint64) bool {
			edges := build(n, seed)
			a, b := pairs(InferSiblings(edges)), pairs(InferSiblings(edges))
			if len(a) != len(b) {
				return false
			}
			for k := range a {
				if _, ok := b[k]; !ok {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 12),
		gen.UInt64(),
	))

	properties.Property("rerunning on the augmented set adds nothing", prop.ForAll(
		func(n int, seed uint64) bool {
			edges := build(n, seed)
			augmented := append(edges, InferSiblings(edges)...)
			return len(InferSiblings(augmented)) == 0
		},
		gen.IntRange(0, 12),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
