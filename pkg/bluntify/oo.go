package bluntify

import (
	"github.com/gfatools/getblunted/pkg/errors"
	"github.com/gfatools/getblunted/pkg/handlegraph"
)

// spliceOverlappingOverlaps wires the free-standing right-side children of
// every overlapping-overlap node into the graph. For each overlapping
// pair -- a left terminus covering [0, L) and a right child covering
// [b, len) with b < L -- the splice happens at the parent-interior offsets
// where the two intervals meet: the left child's aligned path is cut at b
// and fed into the right child's path, and the right child's path is cut at
// L and fed from the left child's path end, so walks through the node spell
// the parent in both directions.
func (b *Bluntifier) spliceOverlappingOverlaps() error {
	for _, parent := range sortedOOParents(b.ooNodes) {
		info := b.ooNodes[parent]
		for _, rc := range info.RightOverlap {
			rcPath, rcReversed, err := b.findAlignedPath(rc.Handle)
			if err != nil {
				return err
			}
			for _, lc := range info.LeftChildren {
				if lc.Length <= rc.Offset {
					continue
				}
				lcPath, lcReversed, err := b.findAlignedPath(lc.Handle)
				if err != nil {
					return err
				}

				// Cut the left path at the right child's start and enter the
				// right path there.
				if rc.Offset > 0 {
					before, _, err := b.splitPathAt(lcPath, pathLocalOffset(rc.Offset, 0, lc.Length, lcReversed))
					if err != nil {
						return err
					}
					b.Graph.CreateEdge(before, b.Graph.Path(rcPath).Begin())
				}

				// Cut the right path where the left terminus ends and leave
				// the left path into it.
				cut := pathLocalOffset(lc.Length, rc.Offset, rc.Length, rcReversed)
				if cut > 0 && cut < pathLength(b.Graph, b.Graph.Path(rcPath)) {
					_, after, err := b.splitPathAt(rcPath, cut)
					if err != nil {
						return err
					}
					b.Graph.CreateEdge(b.Graph.Path(lcPath).Back(), after)
				}
			}
		}
	}
	return nil
}

func sortedOOParents(m map[handlegraph.NodeID]*OverlappingNodeInfo) []handlegraph.NodeID {
	ids := make([]handlegraph.NodeID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}

// pathLocalOffset converts a parent-sequence offset into an offset along an
// aligned path that spells the interval [start, start+length) of the parent,
// possibly reversed.
func pathLocalOffset(parentOffset, start, length int, reversed bool) int {
	local := parentOffset - start
	if reversed {
		local = length - local
	}
	return local
}

// findAlignedPath locates the aligned path of a terminus child, trying both
// biclique sides and both orientations, and reports whether the path spells
// the child reversed.
func (b *Bluntifier) findAlignedPath(h handlegraph.Handle) (string, bool, error) {
	for _, sub := range b.subgraphs {
		if sub == nil {
			continue
		}
		for side := 0; side < 2; side++ {
			if pinfo, ok := sub.PathsPerHandle[side][h]; ok {
				return pinfo.PathName, h.Reverse, nil
			}
			if pinfo, ok := sub.PathsPerHandle[side][h.Flip()]; ok {
				return pinfo.PathName, !h.Reverse, nil
			}
		}
	}
	return "", false, errors.New(errors.ErrCodeInternal,
		"node %d not found in any biclique subgraph", h.ID)
}

// splitPathAt divides the named path's spelled sequence at offset, splitting
// a step node when the offset falls inside one. It returns the handles
// ending at and starting at the cut.
func (b *Bluntifier) splitPathAt(name string, offset int) (before, after handlegraph.Handle, err error) {
	p := b.Graph.Path(name)
	if p == nil {
		return before, after, errors.New(errors.ErrCodeInternal, "missing aligned path %q", name)
	}
	walked := 0
	for i, step := range p.Steps() {
		stepLen := b.Graph.Length(step)
		if walked+stepLen < offset {
			walked += stepLen
			continue
		}
		if walked+stepLen == offset {
			if i+1 >= len(p.Steps()) {
				return step, handlegraph.Handle{}, errors.New(errors.ErrCodeInternal,
					"cut at %d falls at the end of path %q", offset, name)
			}
			return step, p.Steps()[i+1], nil
		}
		// The cut falls inside this step: divide the node. The path updates
		// in place, as do all other paths through it.
		pieces := b.Graph.DivideHandle(step, []int{offset - walked})
		return pieces[0], pieces[1], nil
	}
	return before, after, errors.New(errors.ErrCodeInternal,
		"cut offset %d beyond path %q", offset, name)
}

func pathLength(g *handlegraph.Graph, p *handlegraph.Path) int {
	n := 0
	for _, s := range p.Steps() {
		n += g.Length(s)
	}
	return n
}
