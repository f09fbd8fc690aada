// Package transform derives implicit relationships from a family graph.
//
// Stored relationships only say who is whose parent; siblinghood is implied.
// [InferSiblings] makes it explicit so the layout can hold siblings apart:
// every pair of children sharing a parent gets a sibling_inferred edge unless
// the pair is already connected.
//
// Inferred edges are recomputed from scratch whenever the explicit edge set
// changes and are never written back to a data source. [WithInferred] is the
// usual entry point; it returns a new graph with the inferred edges appended
// after the explicit ones and a [Result] suitable for logging.
package transform
