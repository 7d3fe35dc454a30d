// Package biclique computes biclique covers of bipartite blocks.
//
// Two algorithms back the cover. When the block is small enough, the exact
// construction for domino-free graphs of Amilhastre, Janssen and Preparata is
// attempted: the block is simplified without changing its maximal bicliques,
// per-centre Galois trees are built and merged into a Galois lattice, and a
// minimum biclique cover is read off a minimum node cut of the lattice's
// Menger expansion. If the block is not domino-free (or too large), a greedy
// heuristic in the style of Ene et al. 2008 covers the edges instead.
package biclique

import (
	"sort"

	"github.com/gfatools/getblunted/pkg/adjacency"
	"github.com/gfatools/getblunted/pkg/errors"
	"github.com/gfatools/getblunted/pkg/handlegraph"
)

// DefaultExactBound is the work bound under which the exact domino-free cover
// is attempted: edges * (left + right) must not exceed it.
const DefaultExactBound = 65536

// Bipartition is a biclique: every left side abuts every right side.
type Bipartition struct {
	Left  []handlegraph.Handle
	Right []handlegraph.Handle
}

// Size returns |Left| * |Right|, the number of edges the biclique covers.
func (b Bipartition) Size() int { return len(b.Left) * len(b.Right) }

// bigraph is the view of a bipartite block the cover algorithms need. It is
// satisfied by adjacency.BipartiteGraph and by the simplified copy produced
// by the Amilhastre preprocessing. Neighbour access is explicit about which
// partition the handle is addressed in, because a duplicated side may be a
// member of both.
type bigraph interface {
	Left() []handlegraph.Handle
	Right() []handlegraph.Handle
	LeftIndex(handlegraph.Handle) int
	RightIndex(handlegraph.Handle) int
	LeftNeighbors(handlegraph.Handle) []handlegraph.Handle
	RightNeighbors(handlegraph.Handle) []handlegraph.Handle
}

// Cover returns a set of bicliques whose edge union equals the block's edge
// set. exactBound gates the exact path; pass DefaultExactBound unless tuning.
func Cover(block *adjacency.BipartiteGraph, exactBound int) []Bipartition {
	edgeCount := block.EdgeCount()
	if edgeCount == 0 {
		return nil
	}
	if edgeCount*(block.LeftSize()+block.RightSize()) <= exactBound {
		cover, err := dominoFreeCover(block)
		if err == nil && coversAllEdges(block, cover) {
			return cover
		}
		// NOT_DOMINO_FREE (or an incomplete cover, which means a domino
		// survived the tree checks on the simplified graph) falls through
		// to the heuristic.
	}
	return heuristicCover(block)
}

// dominoFreeCover runs the exact Amilhastre construction. It fails with
// NOT_DOMINO_FREE when any centred Galois tree violates the neighbourhood
// ordering property. The lattice is built on the simplified graph, so each
// cut biclique is re-expanded to the maximal biclique of the original block
// containing it.
func dominoFreeCover(block *adjacency.BipartiteGraph) ([]Bipartition, error) {
	simplified := simplify(block)
	lattice, err := newGaloisLattice(simplified)
	if err != nil {
		return nil, err
	}
	cover := lattice.bicliqueCover()
	for i := range cover {
		cover[i] = expandInBlock(block, cover[i])
	}
	return cover, nil
}

// expandInBlock closes a biclique of the simplified graph in the original
// block: every left whose neighbourhood contains the right side joins, then
// the right side grows to the common neighbourhood of the joined lefts.
func expandInBlock(block *adjacency.BipartiteGraph, b Bipartition) Bipartition {
	rightSet := make(map[handlegraph.Handle]bool, len(b.Right))
	for _, r := range b.Right {
		rightSet[r] = true
	}
	var left []handlegraph.Handle
	for _, l := range block.Left() {
		if len(block.LeftNeighbors(l)) < len(rightSet) {
			continue
		}
		seen := 0
		for _, n := range block.LeftNeighbors(l) {
			if rightSet[n] {
				seen++
			}
		}
		if seen == len(rightSet) {
			left = append(left, l)
		}
	}
	common := make(map[handlegraph.Handle]int)
	for _, l := range left {
		for _, n := range block.LeftNeighbors(l) {
			common[n]++
		}
	}
	var right []handlegraph.Handle
	for h, c := range common {
		if c == len(left) {
			right = append(right, h)
		}
	}
	sortHandles(left)
	sortHandles(right)
	return Bipartition{Left: left, Right: right}
}

// coversAllEdges reports whether the union of the bicliques' edges equals
// the block's edge set.
func coversAllEdges(block *adjacency.BipartiteGraph, cover []Bipartition) bool {
	type edge struct{ l, r handlegraph.Handle }
	covered := make(map[edge]bool)
	for _, b := range cover {
		for _, l := range b.Left {
			for _, r := range b.Right {
				covered[edge{l, r}] = true
			}
		}
	}
	for _, l := range block.Left() {
		for _, r := range block.LeftNeighbors(l) {
			if !covered[edge{l, r}] {
				return false
			}
		}
	}
	return true
}

func sortHandles(hs []handlegraph.Handle) {
	sort.Slice(hs, func(i, j int) bool {
		if hs[i].ID != hs[j].ID {
			return hs[i].ID < hs[j].ID
		}
		return !hs[i].Reverse && hs[j].Reverse
	})
}

func notDominoFree(format string, args ...any) error {
	return errors.New(errors.ErrCodeNotDominoFree, format, args...)
}
