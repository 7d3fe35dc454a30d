package bluntify

import (
	"github.com/gfatools/getblunted/pkg/handlegraph"
)

// harmonizeBicliqueOrientations rewrites each biclique's stored edges so
// every node appears in a single orientation within the biclique. The POA
// inputs are read off the edge endpoints, so a consistent orientation puts
// all of a biclique's sequences in one reading direction; the flip recorded
// on the handle doubles as the per-input flip flag. Flipping a stored edge
// does not change the underlying graph edge, and the overlap map resolves
// either form.
//
// When a node genuinely appears in both orientations (a reversing overlap
// onto itself), one occurrence is flipped arbitrarily but consistently: the
// first-seen orientation wins where possible.
func (b *Bluntifier) harmonizeBicliqueOrientations() {
	for i := 0; i < b.Bicliques.Len(); i++ {
		orient := make(map[handlegraph.NodeID]bool)
		for j := range b.Bicliques.Get(i) {
			idx := BicliqueEdgeIndex{Biclique: i, Edge: j}
			e := b.Bicliques.Edge(idx)

			if conflicts(e, orient) > conflicts(e.Flipped(), orient) {
				e = e.Flipped()
				b.Bicliques.SetEdge(idx, e)
			}
			if _, ok := orient[e.From.ID]; !ok {
				orient[e.From.ID] = e.From.Reverse
			}
			if _, ok := orient[e.To.ID]; !ok {
				orient[e.To.ID] = e.To.Reverse
			}
		}
	}
}

// conflicts counts how many of the edge's endpoints disagree with an already
// chosen orientation.
func conflicts(e handlegraph.Edge, orient map[handlegraph.NodeID]bool) int {
	n := 0
	if r, ok := orient[e.From.ID]; ok && r != e.From.Reverse {
		n++
	}
	if r, ok := orient[e.To.ID]; ok && r != e.To.Reverse {
		n++
	}
	return n
}
