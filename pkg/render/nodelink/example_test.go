package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/render/nodelink"
)

func ExampleToDOT() {
	g := family.Fallback()
	dot := nodelink.ToDOT(g, nodelink.Options{})

	fmt.Println(strings.Count(dot, "rank=same"))
	fmt.Println(strings.Count(dot, "->"))
	// Output:
	// 2
	// 3
}
