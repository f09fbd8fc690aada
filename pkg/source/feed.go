package source

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/observability"
)

// Notice reports a failed fetch. The feed keeps serving Snapshot.
type Notice struct {
	Backend string
	Err     error
	Time    time.Time
	// Stale is true when a previous good snapshot is still being served,
	// false when nothing was ever fetched.
	Stale bool
}

// Notifier receives notices about fetch failures.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) { f(n) }

// FeedOption configures a [Feed].
type FeedOption func(*Feed)

// WithNotifier sets the receiver of fetch failure notices.
func WithNotifier(n Notifier) FeedOption {
	return func(f *Feed) { f.notifier = n }
}

// WithFeedLogger sets the feed's logger.
func WithFeedLogger(l *log.Logger) FeedOption {
	return func(f *Feed) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithRetry retries fetches that fail with a [Retryable] error, up to
// attempts tries in total, starting at delay and doubling.
func WithRetry(attempts int, delay time.Duration) FeedOption {
	return func(f *Feed) {
		f.attempts = attempts
		f.delay = delay
	}
}

// Feed fetches snapshots from a Source and keeps the last good one.
type Feed struct {
	src      Source
	notifier Notifier
	logger   *log.Logger
	attempts int
	delay    time.Duration

	mu      sync.RWMutex
	last    Snapshot
	fetched bool
	fetchAt time.Time
}

// NewFeed returns a feed over src.
func NewFeed(src Source, opts ...FeedOption) *Feed {
	f := &Feed{
		src:      src,
		notifier: NotifierFunc(func(Notice) {}),
		logger:   log.New(io.Discard),
		attempts: 1,
		delay:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Source returns the underlying source.
func (f *Feed) Source() Source { return f.src }

// Refresh fetches a fresh snapshot. On failure it notifies, logs, and returns
// the last good snapshot (empty if none) together with the error, so the
// result is always safe to render.
func (f *Feed) Refresh(ctx context.Context) (Snapshot, error) {
	start := time.Now()
	var snap Snapshot
	err := RetryWithBackoff(ctx, f.attempts, f.delay, func() error {
		var err error
		snap, err = f.src.FetchAll(ctx)
		if err != nil && IsRetryable(err) {
			f.logger.Debug("fetch failed, retrying", "source", f.src.Name(), "err", err)
		}
		return err
	})
	observability.Source().OnFetch(ctx, f.src.Name(), len(snap.Profiles), len(snap.Relationships), time.Since(start), err)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		if !errors.Is(err, errors.ErrCodeSourceUnavailable) {
			err = errors.Wrap(errors.ErrCodeSourceUnavailable, err, "fetch from %s", f.src.Name())
		}
		f.logger.Warn("fetch failed, keeping previous snapshot", "source", f.src.Name(), "err", err)
		f.notifier.Notify(Notice{Backend: f.src.Name(), Err: err, Time: time.Now(), Stale: f.fetched})
		return f.last.Clone(), err
	}

	f.logger.Debug("fetched snapshot", "source", f.src.Name(),
		"profiles", len(snap.Profiles), "relationships", len(snap.Relationships))
	f.last = snap.Clone()
	f.fetched = true
	f.fetchAt = time.Now()
	return snap, nil
}

// Last returns the last good snapshot and when it was fetched.
// ok is false if no fetch has succeeded yet.
func (f *Feed) Last() (snap Snapshot, at time.Time, ok bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.last.Clone(), f.fetchAt, f.fetched
}

// Run delivers an initial snapshot to onSnapshot, then one more after every
// change reported by the source, until ctx is done. The initial delivery
// happens even if the fetch fails (the previous or empty snapshot). Later
// failed fetches only notify; onSnapshot is not called again until a fetch
// succeeds.
func (f *Feed) Run(ctx context.Context, onSnapshot func(Snapshot)) error {
	snap, _ := f.Refresh(ctx)
	onSnapshot(snap)

	return f.src.Watch(ctx, func() {
		observability.Source().OnChange(f.src.Name())
		if ctx.Err() != nil {
			return
		}
		snap, err := f.Refresh(ctx)
		if err != nil {
			return
		}
		onSnapshot(snap)
	})
}
