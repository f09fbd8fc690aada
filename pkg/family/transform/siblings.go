package transform

import (
	"github.com/matzehuels/familygraph/pkg/family"
)

// Result summarizes one inference pass.
type Result struct {
	Parents  int // distinct sources of parent_child edges
	Inferred int // sibling_inferred edges emitted
	Skipped  int // child pairs already joined by an edge
}

type pairKey struct{ lo, hi family.NodeID }

func keyOf(a, b family.NodeID) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a, b}
}

// InferredID returns the id of the inferred sibling edge joining a and b.
// The id does not depend on argument order.
func InferredID(a, b family.NodeID) string {
	k := keyOf(a, b)
	return "inferred-" + string(k.lo) + "-" + string(k.hi)
}

// InferSiblings returns the sibling_inferred edges implied by the
// parent_child edges in edges. The input is not modified.
//
// Parents are visited in order of first appearance, and each parent's
// children in order of first appearance, emitting pairs i < j. A pair is
// skipped when any edge, explicit or already inferred, joins it in either
// direction.
func InferSiblings(edges []family.Edge) []family.Edge {
	inferred, _ := inferSiblings(edges)
	return inferred
}

// WithInferred returns a copy of g whose edge list is the explicit edges
// followed by the inferred sibling edges.
func WithInferred(g family.Graph) (family.Graph, Result) {
	inferred, res := inferSiblings(g.Edges)
	out := g.Clone()
	out.Edges = append(out.Edges, inferred...)
	return out, res
}

func inferSiblings(edges []family.Edge) ([]family.Edge, Result) {
	var res Result

	connected := make(map[pairKey]struct{}, len(edges))
	var parents []family.NodeID
	children := make(map[family.NodeID][]family.NodeID)
	seen := make(map[pairKey]struct{})

	for _, e := range edges {
		connected[keyOf(e.Source, e.Target)] = struct{}{}

		parent, ok := e.Parent()
		if !ok {
			continue
		}
		child, _ := e.Child()
		if _, known := children[parent]; !known {
			parents = append(parents, parent)
		}
		// parent->child pairs are directional here, so keyOf would conflate
		// a->b with b->a.
		pc := pairKey{parent, child}
		if _, dup := seen[pc]; dup {
			continue
		}
		seen[pc] = struct{}{}
		children[parent] = append(children[parent], child)
	}
	res.Parents = len(parents)

	var inferred []family.Edge
	for _, p := range parents {
		kids := children[p]
		for i := 0; i < len(kids); i++ {
			for j := i + 1; j < len(kids); j++ {
				k := keyOf(kids[i], kids[j])
				if _, ok := connected[k]; ok {
					res.Skipped++
					continue
				}
				connected[k] = struct{}{}
				inferred = append(inferred, family.Edge{
					ID:     InferredID(kids[i], kids[j]),
					Source: kids[i],
					Target: kids[j],
					Type:   family.EdgeSiblingInferred,
				})
			}
		}
	}
	res.Inferred = len(inferred)
	return inferred, res
}
