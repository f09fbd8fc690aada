package family

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/matzehuels/familygraph/pkg/errors"
)

// DiagnosticCode classifies a problem found while building a graph.
type DiagnosticCode string

const (
	DiagUnresolvedEdge   DiagnosticCode = "unresolved_edge"
	DiagSelfLoop         DiagnosticCode = "self_loop"
	DiagDuplicateNode    DiagnosticCode = "duplicate_node"
	DiagDirectionSuspect DiagnosticCode = "direction_suspect"
)

// Diagnostic records a configuration problem. Excluded records are reported
// here rather than failing the whole graph.
type Diagnostic struct {
	Code    DiagnosticCode `json:"code"`
	EdgeID  string         `json:"edge_id,omitempty"`
	NodeID  NodeID         `json:"node_id,omitempty"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	switch {
	case d.EdgeID != "":
		return fmt.Sprintf("%s [edge %s]: %s", d.Code, d.EdgeID, d.Message)
	case d.NodeID != "":
		return fmt.Sprintf("%s [node %s]: %s", d.Code, d.NodeID, d.Message)
	default:
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
}

// Err converts the diagnostic into a coded error.
func (d Diagnostic) Err() error {
	code := errors.ErrCodeInvalidInput
	if d.Code == DiagUnresolvedEdge || d.Code == DiagSelfLoop {
		code = errors.ErrCodeUnresolvedEdge
	}
	return errors.New(code, "%s", d.String())
}

// Excluded reports whether the record the diagnostic refers to was dropped.
func (d Diagnostic) Excluded() bool {
	return d.Code != DiagDirectionSuspect
}

var anonymousNamespace = uuid.MustParse("6f1c2d2e-2f0b-4a8e-9a57-4a8f1b3f2c10")

// Normalize converts raw records into a Graph.
//
// Every node and edge is a fresh value. Relationships whose endpoints do not
// name a profile, and self loops, are excluded and reported. parent_child
// relationships are kept even when the endpoint roles suggest the source is
// the child, but they are flagged with DiagDirectionSuspect.
//
// An empty profile list yields Fallback.
func Normalize(profiles []Profile, rels []Relationship) (Graph, []Diagnostic) {
	if len(profiles) == 0 {
		return Fallback(), nil
	}

	var diags []Diagnostic
	g := Graph{Nodes: make([]Node, 0, len(profiles))}
	index := make(map[NodeID]int, len(profiles))

	for i, p := range profiles {
		n := nodeFromProfile(i, p)
		if _, dup := index[n.ID]; dup {
			diags = append(diags, Diagnostic{
				Code:    DiagDuplicateNode,
				NodeID:  n.ID,
				Message: fmt.Sprintf("profile %q reuses an existing id", p.Name),
			})
			continue
		}
		index[n.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, n)
	}

	g.Edges = make([]Edge, 0, len(rels))
	for i, r := range rels {
		e := edgeFromRelationship(i, r)
		si, okS := index[e.Source]
		ti, okT := index[e.Target]
		switch {
		case !okS || !okT:
			diags = append(diags, Diagnostic{
				Code:    DiagUnresolvedEdge,
				EdgeID:  e.ID,
				Message: unresolvedMessage(e, okS, okT),
			})
			continue
		case e.Source == e.Target:
			diags = append(diags, Diagnostic{
				Code:    DiagSelfLoop,
				EdgeID:  e.ID,
				Message: fmt.Sprintf("%s relationship joins %s to itself", e.Type, e.Source),
			})
			continue
		}
		if e.Type == EdgeParentChild && directionSuspect(g.Nodes[si].Role, g.Nodes[ti].Role) {
			diags = append(diags, Diagnostic{
				Code:   DiagDirectionSuspect,
				EdgeID: e.ID,
				Message: fmt.Sprintf("source %s has role %s but target %s has role %s; source is treated as the parent",
					e.Source, g.Nodes[si].Role, e.Target, g.Nodes[ti].Role),
			})
		}
		g.Edges = append(g.Edges, e)
	}
	return g, diags
}

func nodeFromProfile(i int, p Profile) Node {
	id := NodeID(p.ID)
	if id == "" {
		id = NodeID(uuid.NewSHA1(anonymousNamespace, fmt.Appendf(nil, "%d:%s", i, p.Name)).String())
	}
	typ := NodeType(p.Type)
	if typ == "" {
		typ = TypeHuman
		if Role(p.Role) == RolePet {
			typ = TypePet
		}
	}
	status := LifeStatus(p.LifeStatus)
	if status == "" {
		status = Living
	}
	return Node{
		ID:         id,
		Name:       p.Name,
		Age:        p.Age,
		Role:       Role(p.Role),
		Type:       typ,
		LifeStatus: status,
		PhotoURL:   p.PhotoURL,
	}
}

func edgeFromRelationship(i int, r Relationship) Edge {
	id := r.ID
	if id == "" {
		id = fmt.Sprintf("rel-%d", i)
	}
	return Edge{
		ID:       id,
		Source:   NodeID(r.SourceID),
		Target:   NodeID(r.TargetID),
		Type:     EdgeType(r.Type),
		Strength: r.Strength,
	}
}

func unresolvedMessage(e Edge, okS, okT bool) string {
	switch {
	case !okS && !okT:
		return fmt.Sprintf("neither source %q nor target %q is a known member", e.Source, e.Target)
	case !okS:
		return fmt.Sprintf("source %q is not a known member", e.Source)
	default:
		return fmt.Sprintf("target %q is not a known member", e.Target)
	}
}

// directionSuspect reports whether a parent_child edge's source sits in a
// strictly lower generation than its target. Roles outside the banded set
// carry no generational information and are never flagged.
func directionSuspect(source, target Role) bool {
	if !source.Valid() || !target.Valid() {
		return false
	}
	return source.Generation() > target.Generation()
}

// Fallback returns the example tree shown when no members exist yet.
func Fallback() Graph {
	return Graph{
		Nodes: []Node{
			{ID: "dummy-me", Name: "You (Add someone!)", Role: RoleMe, Type: TypeHuman, LifeStatus: Living},
			{ID: "dummy-father", Name: "Father (Example)", Role: RoleParent, Type: TypeHuman, LifeStatus: Living},
			{ID: "dummy-mother", Name: "Mother (Example)", Role: RoleParent, Type: TypeHuman, LifeStatus: Living},
		},
		Edges: []Edge{
			{ID: "dummy-l1", Source: "dummy-father", Target: "dummy-me", Type: EdgeParentChild, Strength: 1.2},
			{ID: "dummy-l2", Source: "dummy-mother", Target: "dummy-me", Type: EdgeParentChild, Strength: 1.2},
			{ID: "dummy-l3", Source: "dummy-father", Target: "dummy-mother", Type: EdgeSpouse, Strength: 1.5},
		},
	}
}

// IsFallback reports whether g is the example tree.
func IsFallback(g Graph) bool {
	_, ok := g.Node("dummy-me")
	return ok && len(g.Nodes) == 3
}
