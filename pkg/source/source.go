package source

import (
	"context"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/family"
)

// Snapshot is the full content of a source at one point in time.
type Snapshot struct {
	Profiles      []family.Profile      `json:"profiles"`
	Relationships []family.Relationship `json:"relationships"`
}

// Clone returns a copy that shares no slices with s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Profiles:      slices.Clone(s.Profiles),
		Relationships: slices.Clone(s.Relationships),
	}
}

// Empty reports whether the snapshot has no profiles.
func (s Snapshot) Empty() bool { return len(s.Profiles) == 0 }

// Graph normalizes the snapshot.
func (s Snapshot) Graph() (family.Graph, []family.Diagnostic) {
	return family.Normalize(s.Profiles, s.Relationships)
}

// Source is a store of family records.
type Source interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	// FetchAll returns every profile and relationship.
	FetchAll(ctx context.Context) (Snapshot, error)
	// AddProfile stores p and, if hint is non-nil, the relationship it implies.
	// The returned profile carries its assigned ID.
	AddProfile(ctx context.Context, p family.Profile, hint *Hint) (family.Profile, error)
	// Watch calls onChange after any change to either table until ctx is done.
	// It blocks; the returned error is nil when ctx was cancelled.
	Watch(ctx context.Context, onChange func()) error
	// Close releases the backend's resources.
	Close() error
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateProfile checks a profile before it is stored.
func ValidateProfile(p family.Profile) error {
	if err := validatorInstance().Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidProfile, err, "profile %q", p.Name)
	}
	return nil
}

// ValidateRelationship checks a relationship before it is stored.
func ValidateRelationship(r family.Relationship) error {
	if err := validatorInstance().Struct(r); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "relationship %s -> %s", r.SourceID, r.TargetID)
	}
	if r.SourceID == r.TargetID {
		return errors.New(errors.ErrCodeInvalidInput, "relationship %s links a member to itself", r.SourceID)
	}
	return nil
}

// Prepare validates p and fills in the defaults a backend stores: a random ID
// when none is set, human type, living status.
func Prepare(p family.Profile) (family.Profile, error) {
	if err := ValidateProfile(p); err != nil {
		return family.Profile{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Type == "" {
		p.Type = string(family.TypeHuman)
		if p.Role == string(family.RolePet) {
			p.Type = string(family.TypePet)
		}
	}
	if p.LifeStatus == "" {
		p.LifeStatus = string(family.Living)
	}
	return p, nil
}

// PrepareRelationship validates r and assigns an ID when none is set.
func PrepareRelationship(r family.Relationship) (family.Relationship, error) {
	if err := ValidateRelationship(r); err != nil {
		return family.Relationship{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return r, nil
}
