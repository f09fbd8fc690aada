package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/family/transform"
	"github.com/matzehuels/familygraph/pkg/force"
	"github.com/matzehuels/familygraph/pkg/observability"
	"github.com/matzehuels/familygraph/pkg/source"
)

// =============================================================================
// Prepare
// =============================================================================

// Prepared is a normalized graph with inferred edges added.
type Prepared struct {
	Graph       family.Graph
	Diagnostics []family.Diagnostic
	Inferred    int
}

// Prepare normalizes a snapshot and adds inferred sibling edges.
func Prepare(ctx context.Context, snap source.Snapshot) Prepared {
	g, diags := snap.Graph()
	observability.Pipeline().OnNormalize(ctx, len(g.Nodes), len(g.Edges), len(diags))

	g, res := transform.WithInferred(g)
	return Prepared{Graph: g, Diagnostics: diags, Inferred: res.Inferred}
}

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout runs a simulation over g until it settles or opts.MaxTicks
// ticks have run, and returns the final state. It never starts the frame
// loop. Diagnostics report edges the simulation excluded.
func GenerateLayout(ctx context.Context, g family.Graph, opts Options) (force.Snapshot, []family.Diagnostic, error) {
	opts.SetDefaults()
	hooks := observability.Pipeline()
	layout := string(opts.Settings.Layout)

	hooks.OnLayoutStart(ctx, layout, len(g.Nodes))
	start := time.Now()

	sim, diags := force.New(g, opts.ForceConfig())
	ticks, err := sim.SettleContext(ctx, opts.MaxTicks)
	snap := sim.Snapshot()
	hooks.OnLayoutComplete(ctx, layout, ticks, time.Since(start), err)
	if err != nil {
		return force.Snapshot{}, diags, err
	}

	if !snap.Settled {
		opts.Logger.Warn("layout did not settle", "ticks", ticks, "alpha", snap.Alpha)
	}
	return snap, diags, nil
}
