package family

import (
	"net/url"
	"slices"
	"strings"
)

// NodeID identifies a node within a [Graph]. IDs are opaque and unique.
type NodeID string

// Role is a node's generational position relative to the "me" node.
type Role string

const (
	RoleMe               Role = "me"
	RoleSpouse           Role = "spouse"
	RoleParent           Role = "parent"
	RoleGrandparent      Role = "grandparent"
	RoleGreatGrandparent Role = "great_grandparent"
	RoleChild            Role = "child"
	RoleSibling          Role = "sibling"
	RolePet              Role = "pet"
)

// Roles lists every known role, ancestors first.
var Roles = []Role{
	RoleGreatGrandparent, RoleGrandparent, RoleParent,
	RoleMe, RoleSpouse, RoleSibling, RolePet, RoleChild,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return slices.Contains(Roles, r) }

// IsAncestor reports whether r is a parent, grandparent or great-grandparent.
func (r Role) IsAncestor() bool {
	return r == RoleParent || r == RoleGrandparent || r == RoleGreatGrandparent
}

// Generation returns a rank that grows downward through the tree: great
// grandparents are 0, children 4. Unknown roles share the middle rank.
func (r Role) Generation() int {
	switch r {
	case RoleGreatGrandparent:
		return 0
	case RoleGrandparent:
		return 1
	case RoleParent:
		return 2
	case RoleChild:
		return 4
	default:
		return 3
	}
}

// NodeType distinguishes people from pets.
type NodeType string

const (
	TypeHuman NodeType = "human"
	TypePet   NodeType = "pet"
)

// LifeStatus is display-only.
type LifeStatus string

const (
	Living   LifeStatus = "living"
	Deceased LifeStatus = "deceased"
)

// EdgeType classifies a relationship.
type EdgeType string

const (
	EdgeParentChild         EdgeType = "parent_child"
	EdgeSpouse              EdgeType = "spouse"
	EdgeSibling             EdgeType = "sibling"
	EdgePetOwner            EdgeType = "pet_owner"
	EdgeGrandparentGrandkid EdgeType = "grandparent_grandchild"
	EdgeSiblingInferred     EdgeType = "sibling_inferred"
)

const avatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg?seed="

// IsSibling reports whether t is an explicit or inferred sibling edge.
func (t EdgeType) IsSibling() bool { return t == EdgeSibling || t == EdgeSiblingInferred }

// Node is a family member or pet.
type Node struct {
	ID         NodeID     `json:"id"`
	Name       string     `json:"name"`
	Age        int        `json:"age,omitempty"`
	Role       Role       `json:"role"`
	Type       NodeType   `json:"type"`
	LifeStatus LifeStatus `json:"life_status,omitempty"`
	PhotoURL   string     `json:"photo_url,omitempty"`
}

// IsMe reports whether the node is the tree's anchor.
func (n Node) IsMe() bool { return n.Role == RoleMe }

// IsPet reports whether the node is a pet, by type.
func (n Node) IsPet() bool { return n.Type == TypePet }

// ShortName returns the first whitespace-separated token of the name.
func (n Node) ShortName() string {
	fields := strings.Fields(n.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// AvatarURL returns the photo URL, or a generated avatar keyed by name.
func (n Node) AvatarURL() string {
	if n.PhotoURL != "" {
		return n.PhotoURL
	}
	return avatarBaseURL + url.QueryEscape(n.Name)
}

// Edge is a typed relationship between two nodes of the same Graph.
type Edge struct {
	ID       string   `json:"id"`
	Source   NodeID   `json:"source"`
	Target   NodeID   `json:"target"`
	Type     EdgeType `json:"type"`
	Strength float64  `json:"strength,omitempty"`
}

// Inferred reports whether the edge was synthesized rather than stored.
func (e Edge) Inferred() bool { return e.Type == EdgeSiblingInferred }

// Parent returns the parent endpoint of a parent_child edge.
// ok is false for any other edge type.
func (e Edge) Parent() (id NodeID, ok bool) {
	if e.Type != EdgeParentChild {
		return "", false
	}
	return e.Source, true
}

// Child returns the child endpoint of a parent_child edge.
// ok is false for any other edge type.
func (e Edge) Child() (id NodeID, ok bool) {
	if e.Type != EdgeParentChild {
		return "", false
	}
	return e.Target, true
}

// Connects reports whether the edge joins a and b in either direction.
func (e Edge) Connects(a, b NodeID) bool {
	return (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a)
}

// Graph is a normalized node/edge set. Every edge endpoint names a node in Nodes.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node returns the node with the given id.
func (g Graph) Node(id NodeID) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Me returns the first node with role me.
func (g Graph) Me() (Node, bool) {
	for _, n := range g.Nodes {
		if n.IsMe() {
			return n, true
		}
	}
	return Node{}, false
}

// NodeCount returns the number of nodes.
func (g Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g Graph) EdgeCount() int { return len(g.Edges) }

// Clone returns a deep copy. Node and Edge hold no references, so copying the
// slices is sufficient.
func (g Graph) Clone() Graph {
	return Graph{Nodes: slices.Clone(g.Nodes), Edges: slices.Clone(g.Edges)}
}

// Profile is a person or pet record as stored by a data source.
type Profile struct {
	ID         string `json:"id,omitempty" bson:"id"`
	Name       string `json:"name" bson:"name" validate:"required,max=200"`
	Age        int    `json:"age,omitempty" bson:"age,omitempty" validate:"gte=0,lte=200"`
	Type       string `json:"type" bson:"type" validate:"omitempty,oneof=human pet"`
	Role       string `json:"role" bson:"role" validate:"omitempty,oneof=me spouse parent grandparent great_grandparent child sibling pet"`
	LifeStatus string `json:"life_status,omitempty" bson:"life_status,omitempty" validate:"omitempty,oneof=living deceased"`
	PhotoURL   string `json:"photo_url,omitempty" bson:"photo_url,omitempty" validate:"omitempty,url"`
}

// Relationship is an edge record as stored by a data source.
type Relationship struct {
	ID       string  `json:"id,omitempty" bson:"id"`
	SourceID string  `json:"source_id" bson:"source_id" validate:"required"`
	TargetID string  `json:"target_id" bson:"target_id" validate:"required"`
	Type     string  `json:"type" bson:"type" validate:"required"`
	Strength float64 `json:"strength" bson:"strength"`
}
