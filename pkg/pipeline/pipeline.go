// Package pipeline runs the headless normalize → infer → layout → render
// pipeline shared by the CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Prepare: normalize a source snapshot into a [family.Graph] and add
//     inferred sibling edges
//  2. Layout: run the force simulation to equilibrium and keep the settled
//     [force.Snapshot]
//  3. Render: project the layout under the view settings and write it in
//     each requested format (SVG, PNG, PDF, JSON, DOT)
//
// The layout stage is cached by graph hash and layout inputs; the render
// stage by layout hash and styling inputs. A theme change therefore reuses
// the cached layout and only re-renders.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, snap, pipeline.Options{
//	    Settings: view,
//	    Formats:  []string{"svg", "png"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/familygraph/pkg/cache"
	"github.com/matzehuels/familygraph/pkg/errors"
	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/force"
	"github.com/matzehuels/familygraph/pkg/render/sink"
	"github.com/matzehuels/familygraph/pkg/settings"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = force.DefaultWidth

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = force.DefaultHeight

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = force.DefaultSeed

	// DefaultMaxTicks bounds the headless simulation. The layout normally
	// settles after about 300 ticks.
	DefaultMaxTicks = force.DefaultMaxTicks

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0

	// DefaultTitle is the header drawn on exported frames.
	DefaultTitle = "My Family Tree"
)

// Visualization types.
const (
	VizForce    = "force"
	VizNodelink = "nodelink"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatDOT}

// ValidVizTypes lists the supported visualization types.
var ValidVizTypes = []string{VizForce, VizNodelink}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	VizType  string            `json:"viz_type,omitempty"`
	Settings settings.Settings `json:"settings"`
	Width    float64           `json:"width,omitempty"`
	Height   float64           `json:"height,omitempty"`
	Seed     uint64            `json:"seed,omitempty"`
	MaxTicks int               `json:"max_ticks,omitempty"`
	Params   force.Params      `json:"params"`

	// Render options
	Formats   []string        `json:"formats,omitempty"`
	Title     string          `json:"title,omitempty"`
	NoAvatars bool            `json:"no_avatars,omitempty"`
	Scale     float64         `json:"scale,omitempty"`
	Frame     sink.FrameStyle `json:"frame,omitempty"`
	Detailed  bool            `json:"detailed,omitempty"` // nodelink labels with role and age
	Refresh   bool            `json:"refresh,omitempty"`  // skip cache reads

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the normalized graph including inferred edges.
	Graph family.Graph

	// Diagnostics lists records the normalizer or the layout had to drop.
	Diagnostics []family.Diagnostic

	// Inferred is the number of sibling edges added by inference.
	Inferred int

	// GraphHash is the content hash of Graph.
	GraphHash string

	// Layout is the settled simulation state. Empty for nodelink runs.
	Layout force.Snapshot

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Ticks      int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the settled layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: %v)", format, ValidFormats)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !slices.Contains(ValidVizTypes, vizType) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid viz_type: %q (must be one of: %v)", vizType, ValidVizTypes)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills zero values. It is idempotent.
func (o *Options) SetDefaults() {
	if o.VizType == "" {
		o.VizType = VizForce
	}
	o.Settings = o.Settings.Normalized()
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.MaxTicks == 0 {
		o.MaxTicks = DefaultMaxTicks
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Frame == "" {
		o.Frame = sink.FrameNone
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option values. Call after SetDefaults.
func (o *Options) Validate() error {
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := o.Settings.Validate(); err != nil {
		return err
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "viewport must be positive, got %gx%g", o.Width, o.Height)
	}
	if o.MaxTicks < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_ticks must be positive, got %d", o.MaxTicks)
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	if !slices.Contains(sink.FrameStyles, o.Frame) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid frame: %q (must be one of: %v)", o.Frame, sink.FrameStyles)
	}
	return nil
}

// ValidateAndSetDefaults applies defaults, then validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// IsNodelink returns true if this is a nodelink visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizNodelink
}

// ForceConfig returns the simulation configuration.
func (o *Options) ForceConfig() force.Config {
	return force.Config{
		Width:  o.Width,
		Height: o.Height,
		Layout: o.Settings.Layout,
		Params: o.Params,
		Seed:   o.Seed,
		Logger: o.Logger,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Layout: string(o.Settings.Layout),
		Width:  o.Width,
		Height: o.Height,
		Seed:   o.Seed,
		Params: cache.HashJSON(struct {
			Params   force.Params
			MaxTicks int
		}{o.Params, o.MaxTicks}),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:    o.VizType + "/" + format,
		Theme:     string(o.Settings.Theme),
		NodeShape: string(o.Settings.NodeShape),
		LinkStyle: string(o.Settings.LinkStyle),
		Particles: o.Settings.Particles,
		Title:     o.Title,
		Avatars:   !o.NoAvatars,
		Detailed:  o.Detailed,
	}
	if !o.IsNodelink() && o.Frame != sink.FrameNone && slices.Contains([]string{FormatSVG, FormatPNG, FormatPDF}, format) {
		k.Frame = string(o.Frame)
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
