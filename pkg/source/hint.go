package source

import (
	"slices"

	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/family"
)

// HintType names how a new member relates to an existing one.
type HintType string

const (
	HintSpouse      HintType = "spouse"
	HintChild       HintType = "child"
	HintParent      HintType = "parent"
	HintSibling     HintType = "sibling"
	HintPet         HintType = "pet"
	HintGrandparent HintType = "grandparent"
)

// HintTypes lists the recognised hint types.
var HintTypes = []HintType{HintSpouse, HintChild, HintParent, HintSibling, HintPet, HintGrandparent}

// Hint attaches a new member to an existing member TargetID.
type Hint struct {
	TargetID string   `json:"target_id"`
	Type     HintType `json:"type"`
}

// Validate rejects hints without a target. Unknown types are allowed and fall
// back to a plain parent_child link from the new member.
func (h Hint) Validate() error {
	if h.TargetID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "relationship hint has no target")
	}
	return nil
}

// Known reports whether the hint type is one of [HintTypes].
func (h Hint) Known() bool { return slices.Contains(HintTypes, h.Type) }

// RelationshipFor derives the relationship to store for a new member newID.
//
// parent_child edges always run parent to child, so a child hint makes the
// existing member the source. Every other hint uses the new member as source.
func RelationshipFor(newID string, h Hint) family.Relationship {
	r := family.Relationship{
		SourceID: newID,
		TargetID: h.TargetID,
		Type:     string(family.EdgeParentChild),
		Strength: 1.0,
	}
	switch h.Type {
	case HintSpouse:
		r.Type, r.Strength = string(family.EdgeSpouse), 1.5
	case HintChild:
		r.SourceID, r.TargetID = h.TargetID, newID
		r.Strength = 1.2
	case HintParent:
		r.Strength = 1.2
	case HintSibling:
		r.Type = string(family.EdgeSibling)
	case HintPet:
		r.Type, r.Strength = string(family.EdgePetOwner), 0.8
	case HintGrandparent:
		r.Type, r.Strength = string(family.EdgeGrandparentGrandkid), 0.5
	}
	return r
}
