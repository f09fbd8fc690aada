// Package family provides the data model for family-tree graphs.
//
// A family graph is a set of [Node] values (people and pets) connected by typed
// [Edge] values. Unlike the raw records stored by a data source ([Profile] and
// [Relationship]), graph edges reference their endpoints through a single typed
// [NodeID] that has already been checked against the node set: once a [Graph]
// leaves [Normalize], every edge endpoint is known to resolve.
//
// # Normalization
//
// [Normalize] is the only way raw records enter the layout pipeline. It copies
// every record into fresh values (the simulation later mutates its own copies,
// never the caller's), rewrites source_id/target_id foreign keys into NodeIDs,
// and reports anything it had to drop as a [Diagnostic]:
//
//	g, diags := family.Normalize(profiles, relationships)
//	for _, d := range diags {
//	    logger.Warn("skipped relationship", "edge", d.EdgeID, "reason", d.Message)
//	}
//
// An empty profile list yields [Fallback], a fixed three-node example tree so
// the visualization is never blank on first load.
//
// # Edge Direction
//
// For [EdgeParentChild] the source is always the parent and the target the
// child. [Edge.Parent] and [Edge.Child] make that explicit at call sites, and
// Normalize flags edges whose roles contradict it.
//
// # Related Packages
//
// The transform subpackage derives implicit edges (siblings) from a Graph.
// Package force lays out a Graph; package render projects the layout.
package family
