// Package file stores family records in a single JSON document.
//
// The document has the shape of [source.Snapshot]:
//
//	{"profiles": [...], "relationships": [...]}
//
// A missing file reads as an empty snapshot. Watch uses fsnotify on the
// containing directory so editors that replace the file on save are seen.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/source"
)

// DefaultDebounce coalesces bursts of write events into one change.
const DefaultDebounce = 200 * time.Millisecond

// Option configures a [Store].
type Option func(*Store)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithLogger sets the store's logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store is a file-backed [source.Source].
type Store struct {
	mu       sync.Mutex
	path     string
	debounce time.Duration
	logger   *log.Logger
}

// New returns a store for the document at path. The parent directory is
// created if needed; the file itself is created on first write.
func New(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "file source needs a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Store{path: path, debounce: DefaultDebounce, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name returns "file".
func (s *Store) Name() string { return "file" }

// Path returns the document path.
func (s *Store) Path() string { return s.path }

// FetchAll reads the document.
func (s *Store) FetchAll(ctx context.Context) (source.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return source.Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) read() (source.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return source.Snapshot{}, nil
		}
		return source.Snapshot{}, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "read %s", s.path)
	}
	var snap source.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return source.Snapshot{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", s.path)
	}
	return snap, nil
}

func (s *Store) write(snap source.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".familygraph-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// AddProfile appends p, and the relationship implied by hint, to the document.
func (s *Store) AddProfile(ctx context.Context, p family.Profile, hint *source.Hint) (family.Profile, error) {
	if err := ctx.Err(); err != nil {
		return family.Profile{}, err
	}
	p, err := source.Prepare(p)
	if err != nil {
		return family.Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.read()
	if err != nil {
		return family.Profile{}, err
	}
	snap.Profiles = append(snap.Profiles, p)

	if hint != nil {
		if err := hint.Validate(); err != nil {
			return family.Profile{}, err
		}
		rel, err := source.PrepareRelationship(source.RelationshipFor(p.ID, *hint))
		if err != nil {
			return family.Profile{}, err
		}
		snap.Relationships = append(snap.Relationships, rel)
	}

	if err := s.write(snap); err != nil {
		return family.Profile{}, err
	}
	s.logger.Debug("added profile", "id", p.ID, "name", p.Name, "path", s.path)
	return p, nil
}

// Watch reports writes, creations, renames and removals of the document.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	target := filepath.Clean(s.path)
	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			s.logger.Debug("data file changed", "file", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(s.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			onChange()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("file watcher error", "err", err)
		}
	}
}

// Close is a no-op; the store holds no open handles between calls.
func (s *Store) Close() error { return nil }

var _ source.Source = (*Store)(nil)
