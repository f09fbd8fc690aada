package settings

import (
	"sort"
	"sync"
)

// Listener receives the previous and the new value after every Replace.
type Listener func(prev, next Settings)

// Store holds the current Settings. It is safe for concurrent use.
//
// Notifications are delivered in commit order: a Replace does not commit
// until every listener has seen the previous commit. Listeners may read the
// store but must not write to it.
type Store struct {
	notifyMu sync.Mutex // held across commit and delivery

	mu      sync.RWMutex
	current Settings
	nextID  int
	subs    map[int]Listener
}

// NewStore returns a store holding initial, normalized.
func NewStore(initial Settings) *Store {
	return &Store{current: initial.Normalized(), subs: make(map[int]Listener)}
}

// Get returns the current value.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Replace swaps in v (normalized) and notifies every subscriber in
// subscription order.
func (s *Store) Replace(v Settings) {
	_, _ = s.Apply(func(Settings) (Settings, error) { return v, nil })
}

// Update replaces the value with fn applied to the current one.
func (s *Store) Update(fn func(Settings) Settings) {
	_, _ = s.Apply(func(cur Settings) (Settings, error) { return fn(cur), nil })
}

// Apply is Update for functions that can fail. On error the value is left
// unchanged and nobody is notified. It returns the committed value.
func (s *Store) Apply(fn func(Settings) (Settings, error)) (Settings, error) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	old := s.current
	v, err := fn(old)
	if err != nil {
		s.mu.Unlock()
		return old, err
	}
	s.current = v.Normalized()
	next := s.current
	listeners := s.listenersLocked()
	s.mu.Unlock()

	for _, l := range listeners {
		l(old, next)
	}
	return next, nil
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) listenersLocked() []Listener {
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Listener, len(ids))
	for i, id := range ids {
		out[i] = s.subs[id]
	}
	return out
}
