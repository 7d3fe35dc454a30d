package bluntify

import (
	"sort"

	"github.com/gfatools/getblunted/pkg/errors"
	"github.com/gfatools/getblunted/pkg/handlegraph"
)

// Side constants index per-side structures throughout the pipeline.
const (
	sideLeft  = 0
	sideRight = 1
)

// NodeInfo factors one node's overlaps by geometric side and biclique:
// FactoredOverlaps[side][biclique] lists the participating overlaps sorted
// by length descending. The side of an edge endpoint follows orientation:
// a forward From (or reversed To) endpoint overlaps the node's right side, a
// forward To (or reversed From) endpoint its left.
type NodeInfo struct {
	NodeID           handlegraph.NodeID
	FactoredOverlaps [2]map[int][]OverlapInfo
}

// newNodeInfo factors the node's overlaps from the current biclique store.
// When childToParent is non-nil, edge endpoints are mapped through it so a
// terminus child counts as its parent; this is how factoring is re-run for
// provenance after the graph has been edited, and it canonicalises each edge
// first because harmonisation may have flipped the stored forms.
func newNodeInfo(
	nodeID handlegraph.NodeID,
	nodeToBicliqueEdge map[handlegraph.NodeID][]BicliqueEdgeIndex,
	bicliques *Bicliques,
	overlaps *handlegraph.OverlapMap,
	childToParent map[handlegraph.NodeID]handlegraph.NodeID,
) (*NodeInfo, error) {
	info := &NodeInfo{NodeID: nodeID}
	for s := range info.FactoredOverlaps {
		info.FactoredOverlaps[s] = make(map[int][]OverlapInfo)
	}

	for _, idx := range nodeToBicliqueEdge[nodeID] {
		edge := bicliques.Edge(idx)
		if childToParent != nil {
			stored, _, err := overlaps.CanonicalizeAndFind(edge)
			if err != nil {
				return nil, err
			}
			edge = stored
		}

		fromLen, toLen, err := overlaps.Lengths(edge)
		if err != nil {
			return nil, err
		}

		leftID := edge.From.ID
		rightID := edge.To.ID
		if childToParent != nil {
			if p, ok := childToParent[leftID]; ok {
				leftID = p
			}
			if p, ok := childToParent[rightID]; ok {
				rightID = p
			}
		}

		matched := false
		if leftID == nodeID {
			matched = true
			side := sideRight
			if edge.From.Reverse {
				side = sideLeft
			}
			info.FactoredOverlaps[side][idx.Biclique] = append(
				info.FactoredOverlaps[side][idx.Biclique], OverlapInfo{EdgeIndex: idx.Edge, Length: fromLen})
		}
		if rightID == nodeID {
			matched = true
			side := sideLeft
			if edge.To.Reverse {
				side = sideRight
			}
			info.FactoredOverlaps[side][idx.Biclique] = append(
				info.FactoredOverlaps[side][idx.Biclique], OverlapInfo{EdgeIndex: idx.Edge, Length: toLen})
		}
		if !matched {
			return nil, errors.New(errors.ErrCodeInternal,
				"node %d not found on either side of biclique edge %s", nodeID, edge)
		}
	}

	for s := range info.FactoredOverlaps {
		for _, infos := range info.FactoredOverlaps[s] {
			sort.SliceStable(infos, func(i, j int) bool { return infos[i].Length > infos[j].Length })
		}
	}
	return info, nil
}

// SortedBicliqueExtents ranks each side's bicliques by their longest
// participating overlap, longest first, and returns the matching extents.
// Duplication uses this ordering so the longest duplicated piece is
// outermost.
func (n *NodeInfo) SortedBicliqueExtents() (sizes, bicliqueIDs [2][]int) {
	for s := range n.FactoredOverlaps {
		type extent struct{ biclique, size int }
		var extents []extent
		for bc, infos := range n.FactoredOverlaps[s] {
			extents = append(extents, extent{biclique: bc, size: infos[0].Length})
		}
		sort.Slice(extents, func(i, j int) bool {
			if extents[i].size != extents[j].size {
				return extents[i].size > extents[j].size
			}
			return extents[i].biclique < extents[j].biclique
		})
		for _, e := range extents {
			sizes[s] = append(sizes[s], e.size)
			bicliqueIDs[s] = append(bicliqueIDs[s], e.biclique)
		}
	}
	return sizes, bicliqueIDs
}
