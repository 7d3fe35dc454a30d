package bluntify

import (
	"slices"

	"github.com/gfatools/getblunted/pkg/errors"
	"github.com/gfatools/getblunted/pkg/handlegraph"
)

// duplicator rewrites the graph so that each distinct overlap length on each
// node side becomes its own terminus child node. It also detects
// overlapping-overlap nodes and realises their colliding right-side termini
// as free-standing copies for the OO splicer.
type duplicator struct {
	b *Bluntifier
}

// duplicateAllNodeTermini runs the duplication for every input node, in id
// order. A parent path (named after the node id) is created for every node
// first so divisions keep it current and provenance can walk it later.
func (d *duplicator) duplicateAllNodeTermini() error {
	b := d.b
	var ids []handlegraph.NodeID
	b.Graph.ForEachHandle(func(h handlegraph.Handle) bool {
		ids = append(ids, h.ID)
		return true
	})
	for _, id := range ids {
		p := b.Graph.CreatePath(handlegraph.ParentPathName(id))
		b.Graph.AppendStep(p, handlegraph.Handle{ID: id})
	}
	for _, id := range ids {
		if err := d.duplicateNode(id); err != nil {
			return err
		}
	}
	return nil
}

func (d *duplicator) duplicateNode(nodeID handlegraph.NodeID) error {
	b := d.b
	info, err := newNodeInfo(nodeID, b.nodeToBicliqueEdge, b.Bicliques, b.Overlaps, nil)
	if err != nil {
		return err
	}
	sizes, bicliqueIDs := info.SortedBicliqueExtents()
	if len(sizes[sideLeft]) == 0 && len(sizes[sideRight]) == 0 {
		return nil
	}

	parent := handlegraph.Handle{ID: nodeID}
	parentSeq := b.Graph.Sequence(parent)
	parentLen := len(parentSeq)

	// A left-side overlap longer than the node cannot be realised at all.
	if n := len(sizes[sideLeft]); n > 0 && sizes[sideLeft][0] > parentLen {
		return errors.New(errors.ErrCodeOverlongOverlap,
			"node %d: left overlap %d exceeds length %d", nodeID, sizes[sideLeft][0], parentLen)
	}
	if n := len(sizes[sideRight]); n > 0 && sizes[sideRight][0] > parentLen {
		return errors.New(errors.ErrCodeOverlongOverlap,
			"node %d: right overlap %d exceeds length %d", nodeID, sizes[sideRight][0], parentLen)
	}

	// Overlapping overlap: the longest left and right termini would carve
	// non-disjoint substrings. The left side duplicates normally; colliding
	// right termini become free-standing copies handled by the OO splicer.
	isOO := len(sizes[sideLeft]) > 0 && len(sizes[sideRight]) > 0 &&
		sizes[sideLeft][0]+sizes[sideRight][0] > parentLen
	var ooInfo *OverlappingNodeInfo
	if isOO {
		ooInfo = &OverlappingNodeInfo{Parent: nodeID, Length: parentLen}
	}

	d.removeParticipatingEdges(bicliqueIDs, nodeID)

	// Left side.
	remainder := parent
	if len(sizes[sideLeft]) > 0 {
		children, err := d.duplicatePrefix(parent, parentSeq, sizes[sideLeft])
		if err != nil {
			return err
		}
		d.redirect(parent, children, bicliqueIDs, sideLeft)
		if ooInfo != nil {
			for i, s := range sizes[sideLeft] {
				ooInfo.LeftChildren = append(ooInfo.LeftChildren,
					OverlappingChild{Handle: children[i+1], Length: s, Offset: 0})
			}
		}
		remainder = children[0]
	}

	// Right side, on whatever is left of the node.
	if len(sizes[sideRight]) > 0 {
		remLen := b.Graph.Length(remainder)
		if len(sizes[sideRight]) == 1 && sizes[sideRight][0] == remLen && !isOO {
			// Trivial: the single right terminus is the whole remaining
			// piece; nothing to duplicate.
			b.registerChild(remainder, nodeID)
		} else {
			children, err := d.duplicateSuffix(remainder, nodeID, parentSeq, sizes[sideRight], ooInfo)
			if err != nil {
				return err
			}
			d.redirect(remainder, children, bicliqueIDs, sideRight)
		}
	}

	// Recreate the participating edges at their redirected endpoints.
	d.recreateParticipatingEdges(bicliqueIDs)

	if ooInfo != nil {
		b.ooNodes[nodeID] = ooInfo
	}
	return nil
}

// duplicatePrefix realises the left-side termini of parent: the node is
// divided at the distinct overlap lengths (ascending), the smallest terminus
// is the first piece, and every longer terminus is a fresh copy of the
// prefix wired into the piece starting at its length. children[0] is the
// remaining piece beyond the longest overlap; children[i+1] is the terminus
// for the i-th biclique in extent order.
func (d *duplicator) duplicatePrefix(parent handlegraph.Handle, parentSeq []byte, sizes []int) ([]handlegraph.Handle, error) {
	b := d.b
	parentLen := len(parentSeq)

	cuts := distinctAscendingBelow(sizes, parentLen)
	if len(cuts) == 0 {
		// Every overlap consumes the whole node: the node itself is the
		// terminus of every participating biclique.
		b.registerChild(parent, parent.ID)
		children := make([]handlegraph.Handle, len(sizes)+1)
		for i := range children {
			children[i] = parent
		}
		return children, nil
	}

	pieces := b.Graph.DivideHandle(parent, cuts)
	rest := pieces[len(pieces)-1]
	pieceAt := make(map[int]handlegraph.Handle, len(cuts))
	for i, c := range cuts {
		pieceAt[c] = pieces[i+1]
	}

	children := []handlegraph.Handle{rest}
	smallest := cuts[0]
	usedFirst := false
	for _, s := range sizes {
		var child handlegraph.Handle
		switch {
		case s == smallest && !usedFirst:
			child = pieces[0]
			usedFirst = true
		default:
			child = b.Graph.CreateHandle(slices.Clone(parentSeq[:s]))
			if s < parentLen {
				b.Graph.CreateEdge(child, pieceAt[s])
			}
		}
		b.registerChild(child, parent.ID)
		children = append(children, child)
	}
	return children, nil
}

// duplicateSuffix mirrors duplicatePrefix on the right side of the remaining
// piece. A terminus exactly filling the remainder becomes a copy wired after
// the preceding path piece. For an overlapping-overlap node, termini that no
// longer fit in the remainder are created free-standing from the original
// parent sequence and recorded for the OO splicer.
func (d *duplicator) duplicateSuffix(rem handlegraph.Handle, parentID handlegraph.NodeID, parentSeq []byte, sizes []int, ooInfo *OverlappingNodeInfo) ([]handlegraph.Handle, error) {
	b := d.b
	parentLen := len(parentSeq)
	remLen := b.Graph.Length(rem)

	// The path piece preceding the remainder, if any; full-remainder copies
	// are wired after it.
	var prevPiece handlegraph.Handle
	hasPrev := false
	if p := b.Graph.Path(handlegraph.ParentPathName(parentID)); p != nil {
		steps := p.Steps()
		for i, step := range steps {
			if step.ID == rem.ID && i > 0 {
				prevPiece = steps[i-1]
				hasPrev = true
			}
		}
	}

	var fitting []int
	for _, s := range sizes {
		if s < remLen {
			fitting = append(fitting, s)
		} else if ooInfo == nil && s > remLen {
			return nil, errors.New(errors.ErrCodeOverlongOverlap,
				"node %d: right overlap %d exceeds remaining length %d", parentID, s, remLen)
		}
	}

	var cuts []int
	for _, s := range distinctAscendingBelow(fitting, remLen) {
		cuts = append(cuts, remLen-s)
	}
	slices.Sort(cuts)

	pieces := []handlegraph.Handle{rem}
	if len(cuts) > 0 {
		pieces = b.Graph.DivideHandle(rem, cuts)
	}
	first := pieces[0]
	// pieceEndingAt maps a remainder offset to the piece that ends there.
	pieceEndingAt := make(map[int]handlegraph.Handle, len(cuts))
	for i, c := range cuts {
		pieceEndingAt[c] = pieces[i]
	}
	last := pieces[len(pieces)-1]

	children := []handlegraph.Handle{first}
	var smallestFit int
	if len(fitting) > 0 {
		smallestFit = fitting[len(fitting)-1]
	}
	usedLast := false
	for _, s := range sizes {
		var child handlegraph.Handle
		switch {
		case s < remLen && s == smallestFit && !usedLast:
			child = last
			usedLast = true
		case s < remLen:
			child = b.Graph.CreateHandle(slices.Clone(parentSeq[parentLen-s:]))
			b.Graph.CreateEdge(pieceEndingAt[remLen-s], child)
		case s == remLen:
			// A terminus exactly filling the remainder alongside other
			// termini: a copy, wired after the preceding piece.
			child = b.Graph.CreateHandle(slices.Clone(parentSeq[parentLen-s:]))
			if hasPrev {
				b.Graph.CreateEdge(prevPiece, child)
			}
		default:
			// Overlapping terminus: free-standing copy, spliced by the overlapping-overlap splicer.
			child = b.Graph.CreateHandle(slices.Clone(parentSeq[parentLen-s:]))
			ooInfo.RightOverlap = append(ooInfo.RightOverlap,
				OverlappingChild{Handle: child, Length: s, Offset: parentLen - s})
		}
		b.registerChild(child, parentID)
		children = append(children, child)
	}
	return children, nil
}

// removeParticipatingEdges destroys the current graph edges of every
// biclique the node participates in, on both sides; they are recreated at
// their redirected endpoints afterwards.
func (d *duplicator) removeParticipatingEdges(bicliqueIDs [2][]int, nodeID handlegraph.NodeID) {
	b := d.b
	for s := range bicliqueIDs {
		for _, bc := range bicliqueIDs[s] {
			for _, e := range b.Bicliques.Get(bc) {
				if e.From.ID == nodeID || e.To.ID == nodeID {
					b.Graph.DestroyEdge(e)
				}
			}
		}
	}
}

// redirect rewires the biclique edges that touched the duplicated node: an
// endpoint on the duplicated side moves to its biclique's terminus child, an
// endpoint on the other side follows the remaining piece. Endpoint
// orientation is preserved. Self-loop edges have both endpoints rewritten,
// each under its own side's rule.
func (d *duplicator) redirect(old handlegraph.Handle, children []handlegraph.Handle, bicliqueIDs [2][]int, dupedSide int) {
	b := d.b
	for s := range bicliqueIDs {
		for i, bc := range bicliqueIDs[s] {
			for j := range b.Bicliques.Get(bc) {
				idx := BicliqueEdgeIndex{Biclique: bc, Edge: j}
				e := b.Bicliques.Edge(idx)
				oldEdge := e

				if e.From.ID == old.ID {
					endpointSide := sideRight
					if e.From.Reverse {
						endpointSide = sideLeft
					}
					if target, ok := redirectTarget(endpointSide, s, i, dupedSide, children); ok {
						e.From = handlegraph.Handle{ID: target.ID, Reverse: e.From.Reverse}
					}
				}
				if e.To.ID == old.ID {
					endpointSide := sideLeft
					if e.To.Reverse {
						endpointSide = sideRight
					}
					if target, ok := redirectTarget(endpointSide, s, i, dupedSide, children); ok {
						e.To = handlegraph.Handle{ID: target.ID, Reverse: e.To.Reverse}
					}
				}

				if e != oldEdge {
					b.Bicliques.SetEdge(idx, e)
					b.Overlaps.UpdateEdge(oldEdge, e)
				}
			}
		}
	}
}

// redirectTarget picks the new endpoint for an endpoint on endpointSide,
// found while scanning the biclique at position i of side s's extent order.
// An endpoint on the duplicated side is redirected only when scanned in its
// own side's list, so its biclique position is meaningful.
func redirectTarget(endpointSide, scanSide, i, dupedSide int, children []handlegraph.Handle) (handlegraph.Handle, bool) {
	if endpointSide != dupedSide {
		return children[0], true
	}
	if scanSide != dupedSide {
		return handlegraph.Handle{}, false
	}
	return children[i+1], true
}

// recreateParticipatingEdges materialises the redirected biclique edges in
// the graph.
func (d *duplicator) recreateParticipatingEdges(bicliqueIDs [2][]int) {
	b := d.b
	for s := range bicliqueIDs {
		for _, bc := range bicliqueIDs[s] {
			for _, e := range b.Bicliques.Get(bc) {
				b.Graph.CreateEdge(e.From, e.To)
			}
		}
	}
}

// distinctAscendingBelow returns the distinct values of sizes strictly below
// limit, ascending.
func distinctAscendingBelow(sizes []int, limit int) []int {
	var out []int
	for _, s := range sizes {
		if s > 0 && s < limit && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return out
}
