// Package handlegraph implements the mutable bidirected sequence graph the
// bluntification pipeline operates on, together with the overlap map that
// attaches a CIGAR to every link edge, blunt ones included.
//
// A Handle is an oriented reference to a node: (id, reversed). Flipping a
// handle inverts the orientation and the sequence view. An Edge (u, v) means
// "the right side of u abuts the left side of v when both are read in the
// given orientation"; the pair (flip(v), flip(u)) denotes the same physical
// edge. The graph is bidirected: an edge has a side at each end, and a node's
// two sides are addressed by its two orientations.
//
// Handles are small value types. All cross-references elsewhere in the
// pipeline (child/parent, edge/biclique) go through node ids and separate
// maps, never through pointers into the graph.
package handlegraph

import "fmt"

// NodeID is a dense integer node identifier. Input segments are numbered from
// 1 in first-seen order; nodes created during bluntification continue upward.
type NodeID int64

// Handle is an oriented node reference.
type Handle struct {
	ID      NodeID
	Reverse bool
}

// Flip returns the handle for the same node in the opposite orientation.
func (h Handle) Flip() Handle {
	return Handle{ID: h.ID, Reverse: !h.Reverse}
}

// String renders the handle as "id+" or "id-".
func (h Handle) String() string {
	if h.Reverse {
		return fmt.Sprintf("%d-", h.ID)
	}
	return fmt.Sprintf("%d+", h.ID)
}

// less orders handles by id, forward before reverse.
func (h Handle) less(o Handle) bool {
	if h.ID != o.ID {
		return h.ID < o.ID
	}
	return !h.Reverse && o.Reverse
}

// Edge is a directed traversal between two oriented handles.
type Edge struct {
	From, To Handle
}

// Flipped returns the equivalent traversal of the same edge in the opposite
// direction: (flip(To), flip(From)).
func (e Edge) Flipped() Edge {
	return Edge{From: e.To.Flip(), To: e.From.Flip()}
}

// String renders the edge as "(u+)->(v-)".
func (e Edge) String() string {
	return fmt.Sprintf("(%s)->(%s)", e.From, e.To)
}

// normalized returns the deterministic representative of {e, e.Flipped()}.
// Graph storage keys edges by this form so that an edge and its flipped twin
// are one edge.
func (e Edge) normalized() Edge {
	f := e.Flipped()
	if f.From.less(e.From) || (f.From == e.From && f.To.less(e.To)) {
		return f
	}
	return e
}
