// Package memory provides an in-process [source.Source] for tests and demos.
package memory

import (
	"context"
	"sync"

	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/source"
)

// Store holds profiles and relationships in memory.
type Store struct {
	mu       sync.Mutex
	snap     source.Snapshot
	watchers map[int]chan struct{}
	nextID   int
	failWith error
	closed   bool
}

// New returns a store seeded with snap.
func New(snap source.Snapshot) *Store {
	return &Store{snap: snap.Clone(), watchers: make(map[int]chan struct{})}
}

// Name returns "memory".
func (s *Store) Name() string { return "memory" }

// FetchAll returns a copy of the stored records.
func (s *Store) FetchAll(ctx context.Context) (source.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return source.Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return source.Snapshot{}, errors.New(errors.ErrCodeSourceUnavailable, "memory store closed")
	}
	if s.failWith != nil {
		return source.Snapshot{}, s.failWith
	}
	return s.snap.Clone(), nil
}

// AddProfile stores p and the relationship implied by hint.
func (s *Store) AddProfile(ctx context.Context, p family.Profile, hint *source.Hint) (family.Profile, error) {
	if err := ctx.Err(); err != nil {
		return family.Profile{}, err
	}
	p, err := source.Prepare(p)
	if err != nil {
		return family.Profile{}, err
	}

	var rel *family.Relationship
	if hint != nil {
		if err := hint.Validate(); err != nil {
			return family.Profile{}, err
		}
		r, err := source.PrepareRelationship(source.RelationshipFor(p.ID, *hint))
		if err != nil {
			return family.Profile{}, err
		}
		rel = &r
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return family.Profile{}, errors.New(errors.ErrCodeSourceUnavailable, "memory store closed")
	}
	s.snap.Profiles = append(s.snap.Profiles, p)
	if rel != nil {
		s.snap.Relationships = append(s.snap.Relationships, *rel)
	}
	s.mu.Unlock()

	s.notify()
	return p, nil
}

// Replace swaps the whole content and notifies watchers.
func (s *Store) Replace(snap source.Snapshot) {
	s.mu.Lock()
	s.snap = snap.Clone()
	s.mu.Unlock()
	s.notify()
}

// FailWith makes FetchAll return err until it is called again with nil.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *Store) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Watch calls onChange after every AddProfile or Replace.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
			onChange()
		}
	}
}

// Close marks the store closed. Further fetches fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ source.Source = (*Store)(nil)
