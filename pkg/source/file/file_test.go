package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/source"
)

func TestStore_MissingFileIsEmpty(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "data", "family.json"))
	require.NoError(t, err)

	snap, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Empty())
}

func TestStore_AddProfilePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "family.json")
	s, err := New(path)
	require.NoError(t, err)

	me, err := s.AddProfile(ctx, family.Profile{Name: "Ann", Role: "me"}, nil)
	require.NoError(t, err)
	_, err = s.AddProfile(ctx, family.Profile{Name: "Bob", Role: "spouse"},
		&source.Hint{TargetID: me.ID, Type: source.HintSpouse})
	require.NoError(t, err)

	reopened, err := New(path)
	require.NoError(t, err)
	snap, err := reopened.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Profiles, 2)
	require.Len(t, snap.Relationships, 1)
	assert.Equal(t, "spouse", snap.Relationships[0].Type)
	assert.Equal(t, me.ID, snap.Relationships[0].TargetID)
}

func TestStore_MalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "family.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := New(path)
	require.NoError(t, err)
	_, err = s.FetchAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestStore_WatchDebounces(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "family.json")
	s, err := New(path, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	changes := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, func() { changes <- struct{}{} })
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(`{"profiles":[]}`), 0o600)
		select {
		case <-changes:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)

	unrelated := filepath.Join(filepath.Dir(path), "other.json")
	drain(changes)
	require.NoError(t, os.WriteFile(unrelated, []byte("{}"), 0o600))
	select {
	case <-changes:
		t.Fatal("change reported for an unrelated file")
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	assert.NoError(t, <-done)
}

func drain(ch chan struct{}) {
	time.Sleep(60 * time.Millisecond)
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
