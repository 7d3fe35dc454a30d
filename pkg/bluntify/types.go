// Package bluntify implements the overlap-resolution pipeline: it rewrites a
// sequence graph whose edges carry non-empty overlaps into an equivalent
// blunt-ended graph, preserving every two-hop walk and introducing no new
// one-hop adjacencies.
//
// The pipeline stages are, in order: adjacency components, bipartite blocks,
// biclique covers, per-node overlap factoring, terminus duplication,
// per-biclique partial-order alignment and splicing, overlapping-overlap
// splicing, and provenance tracing. See Run on Bluntifier.
package bluntify

import (
	"fmt"

	"github.com/gfatools/getblunted/pkg/handlegraph"
	"github.com/gfatools/getblunted/pkg/poa"
)

// BicliqueEdgeIndex addresses one edge inside the deduplicated biclique
// store: the biclique's index and the edge's index within it.
type BicliqueEdgeIndex struct {
	Biclique int
	Edge     int
}

// Bicliques is the deduplicated biclique cover of the whole graph: a list of
// edge lists, each edge assigned to exactly one biclique.
type Bicliques struct {
	bicliques [][]handlegraph.Edge
}

// Len returns the number of bicliques.
func (b *Bicliques) Len() int { return len(b.bicliques) }

// Get returns the edges of one biclique.
func (b *Bicliques) Get(i int) []handlegraph.Edge { return b.bicliques[i] }

// Edge returns the edge at the given index pair.
func (b *Bicliques) Edge(idx BicliqueEdgeIndex) handlegraph.Edge {
	return b.bicliques[idx.Biclique][idx.Edge]
}

// SetEdge overwrites the edge at the given index pair.
func (b *Bicliques) SetEdge(idx BicliqueEdgeIndex, e handlegraph.Edge) {
	b.bicliques[idx.Biclique][idx.Edge] = e
}

// Append adds a biclique and returns its index.
func (b *Bicliques) Append(edges []handlegraph.Edge) int {
	b.bicliques = append(b.bicliques, edges)
	return len(b.bicliques) - 1
}

// OverlapInfo is one overlap a node participates in: the edge's index within
// its biclique and the overlap length on the node's side.
type OverlapInfo struct {
	EdgeIndex int
	Length    int
}

// ProvenanceInfo records the closed interval [Start, Stop] of a parent's
// sequence an output node derives from, and whether it reads reversed.
type ProvenanceInfo struct {
	Start    int
	Stop     int
	Reversal bool
}

// PathInfo locates the aligned path of one biclique terminus: the path's
// name and which side of the biclique the terminus sat on (0 = the edges'
// From side, 1 = the To side).
type PathInfo struct {
	PathName     string
	BicliqueSide int
}

// Subgraph is the aligned replacement for one biclique: the POA result plus
// the path bookkeeping for each participating terminus handle, per biclique
// side.
type Subgraph struct {
	POA            *poa.Graph
	PathsPerHandle [2]map[handlegraph.Handle]PathInfo
}

// OverlappingChild is a terminus child of an overlapping-overlap node.
type OverlappingChild struct {
	Handle handlegraph.Handle
	Length int
	Offset int // start offset of the child's interval on the parent
}

// OverlappingNodeInfo collects what the OO splicer needs for one node whose
// left and right overlaps collide: the left terminus children created by
// normal duplication and the free-standing right children whose intervals
// reach into the left termini.
type OverlappingNodeInfo struct {
	Parent       handlegraph.NodeID
	Length       int
	LeftChildren []OverlappingChild
	RightOverlap []OverlappingChild
}

// poaPathName is the path-name convention the splicer and the provenance
// tracer share: the terminus child's id and its biclique side.
func poaPathName(id handlegraph.NodeID, side int) string {
	return fmt.Sprintf("%d_%d", id, side)
}
