package handlegraph

import (
	"github.com/gfatools/getblunted/pkg/errors"
	"github.com/gfatools/getblunted/pkg/gfa"
)

// OverlapMap attaches a CIGAR alignment to every link edge, blunt (0M)
// links included. Entries are keyed by the edge in the orientation the
// GFA link declared it; a lookup of either traversal direction finds the
// single stored entry.
type OverlapMap struct {
	overlaps map[Edge]gfa.Alignment
}

// NewOverlapMap creates an empty overlap map.
func NewOverlapMap() *OverlapMap {
	return &OverlapMap{overlaps: make(map[Edge]gfa.Alignment)}
}

// Insert stores the alignment for the edge as given.
func (m *OverlapMap) Insert(e Edge, a gfa.Alignment) {
	m.overlaps[e] = a
}

// At returns the alignment stored under exactly the given edge form.
func (m *OverlapMap) At(e Edge) (gfa.Alignment, bool) {
	a, ok := m.overlaps[e]
	return a, ok
}

// Len returns the number of stored overlaps.
func (m *OverlapMap) Len() int { return len(m.overlaps) }

// CanonicalizeAndFind looks the edge up first as given and then in the
// flipped traversal direction, returning the stored form and its alignment.
// Canonicalisation is an involution: feeding the returned edge back in
// returns it unchanged. A miss in both orientations is an EDGE_NOT_FOUND
// error and indicates an inconsistency introduced by an edge rewrite.
func (m *OverlapMap) CanonicalizeAndFind(e Edge) (Edge, gfa.Alignment, error) {
	if a, ok := m.overlaps[e]; ok {
		return e, a, nil
	}
	f := e.Flipped()
	if a, ok := m.overlaps[f]; ok {
		return f, a, nil
	}
	return Edge{}, gfa.Alignment{}, errors.New(errors.ErrCodeEdgeNotFound, "edge not found in overlaps: %s", e)
}

// Lengths returns the overlap lengths on the edge's two sides, canonicalising
// first. When the stored form is the flipped traversal, the reported lengths
// are swapped back so they always describe the edge as given.
func (m *OverlapMap) Lengths(e Edge) (fromSide, toSide int, err error) {
	stored, a, err := m.CanonicalizeAndFind(e)
	if err != nil {
		return 0, 0, err
	}
	s, t := a.ComputeLengths()
	if stored != e {
		s, t = t, s
	}
	return s, t, nil
}

// UpdateEdge rekeys an entry after an edge endpoint has been rewritten,
// preserving the alignment. If the old edge was stored in its flipped form,
// the new edge is stored flipped as well so side semantics are unchanged.
// Updating an edge with no entry is a no-op: rewrites run per side, and an
// edge may already have been rekeyed by its other endpoint.
func (m *OverlapMap) UpdateEdge(old, new Edge) {
	if a, ok := m.overlaps[old]; ok {
		delete(m.overlaps, old)
		m.overlaps[new] = a
		return
	}
	f := old.Flipped()
	if a, ok := m.overlaps[f]; ok {
		delete(m.overlaps, f)
		m.overlaps[new.Flipped()] = a
	}
}
