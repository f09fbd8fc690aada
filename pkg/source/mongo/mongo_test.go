package mongo

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/family"
)

func TestNew_RequiresURI(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

// TestStore_Integration runs against FAMILYGRAPH_TEST_MONGO_URI when set.
func TestStore_Integration(t *testing.T) {
	uri := os.Getenv("FAMILYGRAPH_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("FAMILYGRAPH_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := New(ctx, Config{URI: uri, Database: "familygraph_test"})
	require.NoError(t, err)
	defer s.Close()
	defer s.db.Drop(ctx)

	p, err := s.AddProfile(ctx, family.Profile{Name: "Ann", Role: "me"}, nil)
	require.NoError(t, err)

	snap, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Profiles, 1)
	assert.Equal(t, p.ID, snap.Profiles[0].ID)
}
