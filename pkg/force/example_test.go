package force_test

import (
	"fmt"

	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/family/transform"
	"github.com/matzehuels/familygraph/pkg/force"
	"github.com/matzehuels/familygraph/pkg/settings"
)

func Example() {
	g, _ := transform.WithInferred(family.Fallback())

	sim, diags := force.New(g, force.Config{Width: 800, Height: 600, Layout: settings.LayoutTree})
	sim.Settle(force.DefaultMaxTicks)

	snap := sim.Snapshot()
	me, _ := snap.Body("dummy-me")
	fmt.Println("diagnostics:", len(diags))
	fmt.Println("settled:", snap.Settled)
	fmt.Printf("me: (%.0f, %.0f)\n", me.X, me.Y)
	// Output:
	// diagnostics: 0
	// settled: true
	// me: (400, 300)
}
