package bluntify

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/gfatools/getblunted/pkg/errors"
	"github.com/gfatools/getblunted/pkg/handlegraph"
)

// computeProvenance determines, for every output node, the input node
// interval(s) it derives from. Each input node's parent path is
// scanned: surviving middle pieces map directly to their offsets, while
// terminus children resolve through their biclique's aligned path. The
// biclique's longest participating overlap is its representative; the
// canonicalised edge decides which end of the parent the biclique sits at
// and whether the child reads reversed.
func (b *Bluntifier) computeProvenance() error {
	for id := int64(1); id <= int64(b.IDMap.Len()); id++ {
		if err := b.traceParent(handlegraph.NodeID(id)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bluntifier) traceParent(parentID handlegraph.NodeID) error {
	path := b.Graph.Path(handlegraph.ParentPathName(parentID))
	if path == nil {
		return errors.New(errors.ErrCodeInternal, "missing parent path for node %d", parentID)
	}

	parentIndex := 0
	parentLength := 0
	for _, step := range path.Steps() {
		length := b.Graph.Length(step)
		parentLength += length

		if _, isChild := b.childToParent[step.ID]; !isChild && !b.toBeDestroyed[step.ID] {
			b.recordProvenance(step.ID, parentID, ProvenanceInfo{
				Start: parentIndex, Stop: parentIndex + length - 1, Reversal: false,
			})
		}
		parentIndex += length
	}

	// Factoring is re-run against the edited graph: biclique edges now
	// reference children and harmonisation may have flipped their stored
	// forms, so grouping maps children back to this parent.
	info, err := newNodeInfo(parentID, b.nodeToBicliqueEdge, b.Bicliques, b.Overlaps, b.childToParent)
	if err != nil {
		return err
	}

	for side := 0; side < 2; side++ {
		for _, bcIdx := range sortedKeysInt(info.FactoredOverlaps[side]) {
			overlapInfos := info.FactoredOverlaps[side][bcIdx]
			// The longest overlap defines this biclique on this node.
			rep := overlapInfos[0]
			edge := b.Bicliques.Edge(BicliqueEdgeIndex{Biclique: bcIdx, Edge: rep.EdgeIndex})
			canonical, _, err := b.Overlaps.CanonicalizeAndFind(edge)
			if err != nil {
				return err
			}

			var childID handlegraph.NodeID
			var reversal bool
			var parentSide int
			parentIndex := 0

			fromParent, fromKnown := b.childToParent[canonical.From.ID]
			if fromKnown && fromParent == parentID {
				reversal = canonical.From.Reverse
				childID = canonical.From.ID
				if reversal {
					parentIndex = 0
				} else {
					parentIndex = parentLength - rep.Length
				}
				parentSide = 0
			} else {
				reversal = canonical.To.Reverse
				childID = canonical.To.ID
				if reversal {
					parentIndex = parentLength - rep.Length
				} else {
					parentIndex = 0
				}
				parentSide = 1
			}
			if canonical != edge {
				parentSide = 1 - parentSide
			}

			childPath := b.Graph.Path(poaPathName(childID, parentSide))
			if childPath == nil {
				// Harmonisation decides which side name the path got; the
				// stored edge flip already compensated, but a doubly flipped
				// self-overlap lands on the other name.
				childPath = b.Graph.Path(poaPathName(childID, 1-parentSide))
			}
			if childPath == nil {
				return errors.New(errors.ErrCodeInternal,
					"missing aligned path for child %d of node %d", childID, parentID)
			}

			for _, step := range childPath.Steps() {
				length := b.Graph.Length(step)
				b.recordProvenance(step.ID, parentID, ProvenanceInfo{
					Start: parentIndex, Stop: parentIndex + length - 1, Reversal: reversal,
				})
				parentIndex += length
			}
		}
	}
	return nil
}

func (b *Bluntifier) recordProvenance(node, parent handlegraph.NodeID, info ProvenanceInfo) {
	m, ok := b.provenance[node]
	if !ok {
		m = make(map[handlegraph.NodeID]ProvenanceInfo)
		b.provenance[node] = m
	}
	if _, exists := m[parent]; !exists {
		m[parent] = info
	}
}

// WriteProvenance writes one line per output node: the node id, then the
// comma-separated parent intervals as parent[start:stop)orientation, with
// the stop rendered exclusive.
func (b *Bluntifier) WriteProvenance(w io.Writer) error {
	bw := bufio.NewWriter(w)

	nodes := make([]handlegraph.NodeID, 0, len(b.provenance))
	for id := range b.provenance {
		if !b.Graph.HasNode(id) {
			continue
		}
		nodes = append(nodes, id)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	for _, node := range nodes {
		parents := b.provenance[node]
		parentIDs := make([]handlegraph.NodeID, 0, len(parents))
		for p := range parents {
			parentIDs = append(parentIDs, p)
		}
		sort.Slice(parentIDs, func(i, j int) bool { return parentIDs[i] < parentIDs[j] })

		if _, err := fmt.Fprintf(bw, "%d\t", node); err != nil {
			return err
		}
		for i, p := range parentIDs {
			info := parents[p]
			orient := "+"
			if info.Reversal {
				orient = "-"
			}
			sep := ""
			if i > 0 {
				sep = ","
			}
			if _, err := fmt.Fprintf(bw, "%s%d[%d:%d]%s", sep, p, info.Start, info.Stop+1, orient); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func sortedKeysInt(m map[int][]OverlapInfo) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
