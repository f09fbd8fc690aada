package scene

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/render"
	"github.com/matzehuels/familygraph/pkg/settings"
)

type frames struct {
	mu   sync.Mutex
	list []render.Frame
	pals []render.Palette
}

func (f *frames) add(fr render.Frame, p render.Palette) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = append(f.list, fr)
	f.pals = append(f.pals, p)
}

func (f *frames) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.list)
}

func (f *frames) lastPalette() render.Palette {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pals[len(f.pals)-1]
}

func siblingsGraph() family.Graph {
	return family.Graph{
		Nodes: []family.Node{
			{ID: "me", Name: "Ann", Role: family.RoleMe, Type: family.TypeHuman},
			{ID: "mom", Name: "Mia", Role: family.RoleParent, Type: family.TypeHuman},
			{ID: "bro", Name: "Ben", Role: family.RoleSibling, Type: family.TypeHuman},
		},
		Edges: []family.Edge{
			{ID: "e1", Source: "mom", Target: "me", Type: family.EdgeParentChild},
			{ID: "e2", Source: "mom", Target: "bro", Type: family.EdgeParentChild},
		},
	}
}

func newScene(t *testing.T, s settings.Settings) (*Scene, *frames) {
	t.Helper()
	rec := &frames{}
	sc := New(Options{
		Width:    800,
		Height:   600,
		Interval: time.Millisecond,
		Settings: s,
		OnFrame:  rec.add,
	})
	t.Cleanup(sc.Close)
	return sc, rec
}

func TestScene_LoadProducesFrames(t *testing.T) {
	sc, rec := newScene(t, settings.Default())
	require.NoError(t, sc.Load(context.Background(), siblingsGraph()))

	require.Eventually(t, func() bool { return rec.len() > 3 }, 2*time.Second, 5*time.Millisecond)

	f, _, ok := sc.Frame()
	require.True(t, ok)
	assert.Len(t, f.Nodes, 3)
	assert.Len(t, f.Links, 3, "two stored edges plus one inferred sibling edge")
	assert.Equal(t, 1, sc.Inferred())
	assert.Empty(t, sc.Diagnostics())
}

func TestScene_ThemeOnlyReskins(t *testing.T) {
	sc, rec := newScene(t, settings.Default())
	require.NoError(t, sc.Load(context.Background(), siblingsGraph()))
	require.Eventually(t, func() bool { return rec.len() > 0 }, 2*time.Second, 5*time.Millisecond)

	gen := sc.Generation()
	next := sc.Settings()
	next.Theme = settings.ThemeIvory
	rebuilt, err := sc.ApplySettings(next)
	require.NoError(t, err)

	assert.False(t, rebuilt)
	assert.Equal(t, gen, sc.Generation())
	assert.Equal(t, render.ThemePalette(settings.ThemeIvory), rec.lastPalette())

	f, p, _ := sc.Frame()
	assert.Equal(t, settings.ThemeIvory, f.Settings.Theme)
	assert.Equal(t, settings.ThemeIvory, p.Theme)
}

func TestScene_LayoutChangeRebuilds(t *testing.T) {
	sc, rec := newScene(t, settings.Default())
	require.NoError(t, sc.Load(context.Background(), siblingsGraph()))
	require.Eventually(t, func() bool { return rec.len() > 0 }, 2*time.Second, 5*time.Millisecond)

	gen := sc.Generation()
	next := sc.Settings()
	next.Layout = settings.LayoutOrganic
	rebuilt, err := sc.ApplySettings(next)
	require.NoError(t, err)
	assert.True(t, rebuilt)
	assert.Equal(t, gen+1, sc.Generation())

	require.Eventually(t, func() bool {
		f, _, ok := sc.Frame()
		return ok && f.Settings.Layout == settings.LayoutOrganic
	}, 2*time.Second, 5*time.Millisecond)

	// No duplicates after a rebuild.
	f, _, _ := sc.Frame()
	assert.Len(t, f.Nodes, 3)
	assert.Len(t, f.Links, 3)
}

func TestScene_RepeatedRebuildsKeepCounts(t *testing.T) {
	sc, _ := newScene(t, settings.Default())
	require.NoError(t, sc.Load(context.Background(), siblingsGraph()))

	s := sc.Settings()
	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			s.NodeShape = settings.ShapeHexagon
		} else {
			s.NodeShape = settings.ShapeCircle
		}
		_, err := sc.ApplySettings(s)
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		f, _, ok := sc.Frame()
		return ok && f.Settings.NodeShape == settings.ShapeCircle
	}, 2*time.Second, 5*time.Millisecond)
	f, _, _ := sc.Frame()
	assert.Len(t, f.Nodes, 3)
	assert.Len(t, f.Links, 3)
}

func TestScene_Particles(t *testing.T) {
	s := settings.Default()
	s.Particles = true
	sc, rec := newScene(t, s)
	require.NoError(t, sc.Load(context.Background(), siblingsGraph()))
	require.Eventually(t, func() bool { return rec.len() > 0 }, 2*time.Second, 5*time.Millisecond)

	f, _, _ := sc.Frame()
	assert.Len(t, f.Particles, render.ParticleCount)

	s.Particles = false
	_, err := sc.ApplySettings(s)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		f, _, ok := sc.Frame()
		return ok && !f.Settings.Particles
	}, 2*time.Second, 5*time.Millisecond)
	f, _, _ = sc.Frame()
	assert.Empty(t, f.Particles)
}

func TestScene_InvalidSettings(t *testing.T) {
	sc, _ := newScene(t, settings.Default())
	s := sc.Settings()
	s.Theme = "neon"
	_, err := sc.ApplySettings(s)
	assert.Error(t, err)
	assert.Equal(t, settings.ThemeMidnight, sc.Settings().Theme)
}

func TestScene_DragPassthrough(t *testing.T) {
	sc, _ := newScene(t, settings.Default())
	assert.Error(t, sc.DragStart("me"), "no graph loaded")

	require.NoError(t, sc.Load(context.Background(), siblingsGraph()))
	require.NoError(t, sc.DragStart("bro"))
	require.NoError(t, sc.DragMove("bro", 10, 20))
	require.NoError(t, sc.DragEnd("bro"))
	assert.Error(t, sc.DragStart("nobody"))
}

func TestScene_Bind(t *testing.T) {
	sc, _ := newScene(t, settings.Default())
	require.NoError(t, sc.Load(context.Background(), siblingsGraph()))

	store := settings.NewStore(settings.Default())
	unsubscribe := sc.Bind(store)
	defer unsubscribe()

	gen := sc.Generation()
	store.Update(func(s settings.Settings) settings.Settings {
		s.LinkStyle = settings.LinkStraight
		return s
	})
	assert.Equal(t, settings.LinkStraight, sc.Settings().LinkStyle)
	assert.Equal(t, gen+1, sc.Generation())
}

func TestScene_BindConcurrentUpdatesConverge(t *testing.T) {
	sc, _ := newScene(t, settings.Default())
	require.NoError(t, sc.Load(context.Background(), siblingsGraph()))

	store := settings.NewStore(settings.Default())
	defer sc.Bind(store)()

	shapes := settings.NodeShapes
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Update(func(s settings.Settings) settings.Settings {
				s.Layout = settings.LayoutOrganic
				s.NodeShape = shapes[i%len(shapes)]
				return s
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, store.Get(), sc.Settings())
}

func TestScene_CloseStopsFrames(t *testing.T) {
	rec := &frames{}
	sc := New(Options{Interval: time.Millisecond, OnFrame: rec.add})
	require.NoError(t, sc.Load(context.Background(), family.Fallback()))
	require.Eventually(t, func() bool { return rec.len() > 0 }, 2*time.Second, 5*time.Millisecond)

	sc.Close()
	n := rec.len()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, rec.len())

	assert.Error(t, sc.Load(context.Background(), family.Fallback()))
	sc.Close()
}
