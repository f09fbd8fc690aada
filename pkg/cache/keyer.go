package cache

import (
	"fmt"
	"strings"
)

// LayoutKeyOpts holds the inputs that change a settled layout.
type LayoutKeyOpts struct {
	Layout string  `json:"layout"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Seed   uint64  `json:"seed"`
	// Params is a hash of the physics parameters.
	Params string `json:"params,omitempty"`
}

// ArtifactKeyOpts holds the inputs that change a rendered artifact but not
// the layout under it.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	Theme     string  `json:"theme"`
	NodeShape string  `json:"node_shape"`
	LinkStyle string  `json:"link_style"`
	Particles bool    `json:"particles"`
	Title     string  `json:"title,omitempty"`
	Avatars   bool    `json:"avatars"`
	Detailed  bool    `json:"detailed,omitempty"`
	Frame     string  `json:"frame,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	// SnapshotKey names the last snapshot fetched from a source.
	SnapshotKey(backend, location string) string
	// LayoutKey names a settled layout of the graph with hash graphHash.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	// ArtifactKey names a rendered artifact of the layout with hash layoutHash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces keys of the form kind:hash.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SnapshotKey returns "snapshot:backend:location".
func (DefaultKeyer) SnapshotKey(backend, location string) string {
	return fmt.Sprintf("snapshot:%s:%s", backend, location)
}

// LayoutKey hashes the graph hash and options.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey hashes the layout hash and options. The format stays readable
// so `cache` listings can tell artifacts apart.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+strings.ToLower(opts.Format), layoutHash, opts)
}

// ScopedKeyer prefixes every key of an inner Keyer, so several data sources
// can share one cache backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) SnapshotKey(backend, location string) string {
	return k.prefix + k.inner.SnapshotKey(backend, location)
}

func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
