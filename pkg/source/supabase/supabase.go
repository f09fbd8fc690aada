// Package supabase reads family records from a Supabase project.
//
// Profiles and relationships live in the tables "profiles" and
// "relationships", with the columns of [family.Profile] and
// [family.Relationship]. Supabase realtime needs a websocket client that the
// Go SDK does not ship, so Watch polls and compares snapshots.
package supabase

import (
	"context"
	"io"
	"reflect"
	"time"

	"github.com/charmbracelet/log"
	supa "github.com/supabase-community/supabase-go"

	"github.com/matzehuels/familygraph/pkg/buildinfo"
	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/source"
)

const (
	ProfilesTable      = "profiles"
	RelationshipsTable = "relationships"

	// DefaultPollInterval is how often Watch re-reads both tables.
	DefaultPollInterval = 5 * time.Second
)

// Config holds the project URL and API key.
type Config struct {
	URL          string
	Key          string
	PollInterval time.Duration
	Logger       *log.Logger
}

// Store is a Supabase-backed [source.Source].
type Store struct {
	client *supa.Client
	poll   time.Duration
	logger *log.Logger
}

// New connects to the project described by cfg.
func New(cfg Config) (*Store, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "supabase source needs a URL and key")
	}
	client, err := supa.NewClient(cfg.URL, cfg.Key, &supa.ClientOptions{
		Headers: map[string]string{"User-Agent": buildinfo.UserAgent()},
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "create supabase client")
	}
	s := &Store{client: client, poll: cfg.PollInterval, logger: cfg.Logger}
	if s.poll <= 0 {
		s.poll = DefaultPollInterval
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s, nil
}

// Name returns "supabase".
func (s *Store) Name() string { return "supabase" }

// FetchAll selects every row of both tables.
func (s *Store) FetchAll(ctx context.Context) (source.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return source.Snapshot{}, err
	}
	var snap source.Snapshot
	if _, err := s.client.From(ProfilesTable).Select("*", "", false).ExecuteTo(&snap.Profiles); err != nil {
		return source.Snapshot{}, source.Retryable(errors.Wrap(errors.ErrCodeSourceUnavailable, err, "select %s", ProfilesTable))
	}
	if _, err := s.client.From(RelationshipsTable).Select("*", "", false).ExecuteTo(&snap.Relationships); err != nil {
		return source.Snapshot{}, source.Retryable(errors.Wrap(errors.ErrCodeSourceUnavailable, err, "select %s", RelationshipsTable))
	}
	return snap, nil
}

// AddProfile inserts p and then the relationship implied by hint. A failed
// relationship insert is logged and does not undo the profile.
func (s *Store) AddProfile(ctx context.Context, p family.Profile, hint *source.Hint) (family.Profile, error) {
	if err := ctx.Err(); err != nil {
		return family.Profile{}, err
	}
	if hint != nil {
		if err := hint.Validate(); err != nil {
			return family.Profile{}, err
		}
	}
	p, err := source.Prepare(p)
	if err != nil {
		return family.Profile{}, err
	}

	var inserted []family.Profile
	if _, err := s.client.From(ProfilesTable).
		Insert(p, false, "", "representation", "").
		ExecuteTo(&inserted); err != nil {
		return family.Profile{}, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "insert profile %q", p.Name)
	}
	if len(inserted) > 0 {
		p = inserted[0]
	}

	if hint == nil {
		return p, nil
	}
	rel, err := source.PrepareRelationship(source.RelationshipFor(p.ID, *hint))
	if err != nil {
		s.logger.Error("invalid relationship for new profile", "id", p.ID, "err", err)
		return p, nil
	}
	if _, _, err := s.client.From(RelationshipsTable).
		Insert(rel, false, "", "minimal", "").
		Execute(); err != nil {
		s.logger.Error("insert relationship", "source", rel.SourceID, "target", rel.TargetID, "err", err)
	}
	return p, nil
}

// Watch polls both tables and calls onChange when their content differs from
// the previous poll.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	prev, err := s.FetchAll(ctx)
	if err != nil && ctx.Err() == nil {
		s.logger.Warn("initial poll failed", "err", err)
	}

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			next, err := s.FetchAll(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Warn("poll failed", "err", err)
				continue
			}
			if !reflect.DeepEqual(prev, next) {
				prev = next
				onChange()
			}
		}
	}
}

// Close is a no-op; the client keeps no persistent connection.
func (s *Store) Close() error { return nil }

var _ source.Source = (*Store)(nil)
