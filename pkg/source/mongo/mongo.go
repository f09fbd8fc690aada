// Package mongo reads family records from two MongoDB collections.
//
// Documents carry the bson tags of [family.Profile] and [family.Relationship];
// the application-level "id" field is used instead of _id. Watch opens a
// change stream on the database, which needs a replica set.
package mongo

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/familygraph/pkg/buildinfo"
	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/source"
)

const (
	DefaultDatabase    = "familygraph"
	ProfilesCollection = "profiles"
	RelationshipsColl  = "relationships"

	connectTimeout = 10 * time.Second
)

// Config describes the MongoDB deployment.
type Config struct {
	URI      string
	Database string
	Logger   *log.Logger
}

// Store is a MongoDB-backed [source.Source].
type Store struct {
	client        *mongo.Client
	db            *mongo.Database
	profiles      *mongo.Collection
	relationships *mongo.Collection
	logger        *log.Logger
}

// New connects to cfg.URI and pings the server.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo source needs a URI")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetAppName(buildinfo.UserAgent()))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "ping mongo")
	}

	db := client.Database(cfg.Database)
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{
		client:        client,
		db:            db,
		profiles:      db.Collection(ProfilesCollection),
		relationships: db.Collection(RelationshipsColl),
		logger:        logger,
	}, nil
}

// Name returns "mongo".
func (s *Store) Name() string { return "mongo" }

// FetchAll reads both collections.
func (s *Store) FetchAll(ctx context.Context) (source.Snapshot, error) {
	var snap source.Snapshot
	if err := findAll(ctx, s.profiles, &snap.Profiles); err != nil {
		return source.Snapshot{}, err
	}
	if err := findAll(ctx, s.relationships, &snap.Relationships); err != nil {
		return source.Snapshot{}, err
	}
	return snap, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, out *[]T) error {
	cur, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return source.Retryable(errors.Wrap(errors.ErrCodeSourceUnavailable, err, "find %s", coll.Name()))
	}
	if err := cur.All(ctx, out); err != nil {
		return errors.Wrap(errors.ErrCodeSourceUnavailable, err, "decode %s", coll.Name())
	}
	return nil
}

// AddProfile inserts p and then the relationship implied by hint. A failed
// relationship insert is logged and does not undo the profile.
func (s *Store) AddProfile(ctx context.Context, p family.Profile, hint *source.Hint) (family.Profile, error) {
	if hint != nil {
		if err := hint.Validate(); err != nil {
			return family.Profile{}, err
		}
	}
	p, err := source.Prepare(p)
	if err != nil {
		return family.Profile{}, err
	}
	if _, err := s.profiles.InsertOne(ctx, p); err != nil {
		return family.Profile{}, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "insert profile %q", p.Name)
	}

	if hint == nil {
		return p, nil
	}
	rel, err := source.PrepareRelationship(source.RelationshipFor(p.ID, *hint))
	if err != nil {
		s.logger.Error("invalid relationship for new profile", "id", p.ID, "err", err)
		return p, nil
	}
	if _, err := s.relationships.InsertOne(ctx, rel); err != nil {
		s.logger.Error("insert relationship", "source", rel.SourceID, "target", rel.TargetID, "err", err)
	}
	return p, nil
}

// Watch follows a change stream over both collections.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "ns.coll", Value: bson.D{{Key: "$in", Value: bson.A{ProfilesCollection, RelationshipsColl}}}},
		}}},
	}
	stream, err := s.db.Watch(ctx, pipeline)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.Wrap(errors.ErrCodeSourceUnavailable, err, "open change stream")
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		onChange()
	}
	if ctx.Err() != nil {
		return nil
	}
	if err := stream.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeSourceUnavailable, err, "change stream")
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ source.Source = (*Store)(nil)
