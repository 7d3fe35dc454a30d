package handlegraph

import (
	"slices"
	"sort"
	"strconv"

	"github.com/gfatools/getblunted/pkg/errors"
)

// Graph is a mutable bidirected sequence graph keyed by dense node ids.
// It is not safe for concurrent mutation; the pipeline serialises writes
// through a single lock and restricts parallel phases to reads.
type Graph struct {
	seqs      map[NodeID][]byte
	edges     map[Edge]struct{}          // keyed by normalized form
	nodeEdges map[NodeID]map[Edge]struct{} // normalized edges touching a node
	paths     map[string]*Path
	nextID    NodeID
}

// Path is a named walk through the graph. Paths record the decomposition of
// an input node into its pieces and the per-input walks of spliced POA
// subgraphs; they are bookkeeping, not output.
type Path struct {
	Name  string
	steps []Handle
}

// Steps returns the path's steps in order. The returned slice is the path's
// backing storage and must not be modified.
func (p *Path) Steps() []Handle { return p.steps }

// Begin returns the first step of the path.
func (p *Path) Begin() Handle { return p.steps[0] }

// Back returns the last step of the path.
func (p *Path) Back() Handle { return p.steps[len(p.steps)-1] }

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		seqs:      make(map[NodeID][]byte),
		edges:     make(map[Edge]struct{}),
		nodeEdges: make(map[NodeID]map[Edge]struct{}),
		paths:     make(map[string]*Path),
		nextID:    1,
	}
}

// CreateHandleWithID adds a node with a caller-chosen id. Used by the GFA
// reader, which numbers segments through the incremental id map.
func (g *Graph) CreateHandleWithID(id NodeID, seq []byte) Handle {
	g.seqs[id] = seq
	if id >= g.nextID {
		g.nextID = id + 1
	}
	return Handle{ID: id}
}

// CreateHandle adds a node with a fresh id and returns its forward handle.
func (g *Graph) CreateHandle(seq []byte) Handle {
	id := g.nextID
	g.nextID++
	g.seqs[id] = seq
	return Handle{ID: id}
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.seqs[id]
	return ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.seqs) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// MaxNodeID returns the largest id ever assigned.
func (g *Graph) MaxNodeID() NodeID { return g.nextID - 1 }

// Sequence returns the sequence spelled by the handle: the node's sequence,
// reverse-complemented when the handle is reversed. The result is a copy.
func (g *Graph) Sequence(h Handle) []byte {
	seq := g.seqs[h.ID]
	if h.Reverse {
		return ReverseComplement(seq)
	}
	return slices.Clone(seq)
}

// Length returns the sequence length of the handle's node.
func (g *Graph) Length(h Handle) int { return len(g.seqs[h.ID]) }

// ForEachHandle calls fn with the forward handle of every node in ascending
// id order. Returning false stops the iteration.
func (g *Graph) ForEachHandle(fn func(Handle) bool) {
	for _, id := range g.sortedIDs() {
		if !fn(Handle{ID: id}) {
			return
		}
	}
}

// ForEachEdge calls fn with every edge, in a deterministic order, in its
// normalized storage form. Returning false stops the iteration.
func (g *Graph) ForEachEdge(fn func(Edge) bool) {
	es := make([]Edge, 0, len(g.edges))
	for e := range g.edges {
		es = append(es, e)
	}
	sort.Slice(es, func(i, j int) bool {
		if es[i].From != es[j].From {
			return es[i].From.less(es[j].From)
		}
		return es[i].To.less(es[j].To)
	})
	for _, e := range es {
		if !fn(e) {
			return
		}
	}
}

// CreateEdge adds the edge (from, to). Adding an edge that already exists in
// either traversal direction is a no-op.
func (g *Graph) CreateEdge(from, to Handle) {
	e := Edge{From: from, To: to}.normalized()
	if _, ok := g.edges[e]; ok {
		return
	}
	g.edges[e] = struct{}{}
	g.indexEdge(e)
}

// HasEdge reports whether the edge exists in either traversal direction.
func (g *Graph) HasEdge(from, to Handle) bool {
	_, ok := g.edges[Edge{From: from, To: to}.normalized()]
	return ok
}

// DestroyEdge removes the edge in whatever traversal direction it is given.
func (g *Graph) DestroyEdge(e Edge) {
	n := e.normalized()
	if _, ok := g.edges[n]; !ok {
		return
	}
	delete(g.edges, n)
	delete(g.nodeEdges[n.From.ID], n)
	delete(g.nodeEdges[n.To.ID], n)
}

// DestroyHandle removes a node together with its edges and any path steps
// that reference it.
func (g *Graph) DestroyHandle(id NodeID) {
	for e := range g.nodeEdges[id] {
		delete(g.edges, e)
		if e.From.ID != id {
			delete(g.nodeEdges[e.From.ID], e)
		}
		if e.To.ID != id {
			delete(g.nodeEdges[e.To.ID], e)
		}
	}
	delete(g.nodeEdges, id)
	delete(g.seqs, id)
	for _, p := range g.paths {
		kept := p.steps[:0]
		for _, s := range p.steps {
			if s.ID != id {
				kept = append(kept, s)
			}
		}
		p.steps = kept
	}
}

// FollowEdges calls fn with each handle reachable across one edge from h.
// With goLeft false it walks rightward: handles h' with an edge (h, h').
// With goLeft true it walks leftward: handles h' with an edge (h', h).
// Returning false stops the iteration. Order is deterministic.
func (g *Graph) FollowEdges(h Handle, goLeft bool, fn func(Handle) bool) {
	var out []Handle
	for e := range g.nodeEdges[h.ID] {
		forms := []Edge{e}
		if f := e.Flipped(); f != e {
			forms = append(forms, f)
		}
		for _, f := range forms {
			if !goLeft && f.From == h {
				out = append(out, f.To)
			}
			if goLeft && f.To == h {
				out = append(out, f.From)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	for _, n := range out {
		if !fn(n) {
			return
		}
	}
}

// DivideHandle splits the handle's node at the given offsets (strictly
// increasing, each in (0, length)) and returns the pieces in the handle's
// orientation. The pieces get fresh ids and the original node ceases to
// exist: its left-side edges reattach to the first piece, its right-side
// edges to the last, and every path step through the node is replaced by the
// run of pieces in the step's orientation.
func (g *Graph) DivideHandle(h Handle, offsets []int) []Handle {
	if len(offsets) == 0 {
		return []Handle{h}
	}
	length := g.Length(h)
	fwdOffsets := offsets
	if h.Reverse {
		fwdOffsets = make([]int, 0, len(offsets))
		for i := len(offsets) - 1; i >= 0; i-- {
			fwdOffsets = append(fwdOffsets, length-offsets[i])
		}
	}

	seq := g.seqs[h.ID]
	pieces := make([]Handle, 0, len(fwdOffsets)+1)
	prev := 0
	for _, off := range append(slices.Clone(fwdOffsets), length) {
		pieces = append(pieces, g.CreateHandle(slices.Clone(seq[prev:off])))
		prev = off
	}
	first, last := pieces[0], pieces[len(pieces)-1]

	// Reattach edges: an endpoint at the node's left side moves to the first
	// piece, an endpoint at the right side to the last.
	old := Handle{ID: h.ID}
	var toRewire []Edge
	for e := range g.nodeEdges[h.ID] {
		toRewire = append(toRewire, e)
	}
	for _, e := range toRewire {
		g.DestroyEdge(e)
		ne := e
		ne.From = dividedEndpoint(ne.From, old, first, last, true)
		ne.To = dividedEndpoint(ne.To, old, first, last, false)
		g.CreateEdge(ne.From, ne.To)
	}

	// Chain the pieces.
	for i := 0; i+1 < len(pieces); i++ {
		g.CreateEdge(pieces[i], pieces[i+1])
	}

	// Replace path steps through the node.
	for _, p := range g.paths {
		var steps []Handle
		for _, s := range p.steps {
			if s.ID != h.ID {
				steps = append(steps, s)
				continue
			}
			if s.Reverse {
				for i := len(pieces) - 1; i >= 0; i-- {
					steps = append(steps, pieces[i].Flip())
				}
			} else {
				steps = append(steps, pieces...)
			}
		}
		p.steps = steps
	}

	delete(g.seqs, h.ID)
	delete(g.nodeEdges, h.ID)

	if h.Reverse {
		flipped := make([]Handle, 0, len(pieces))
		for i := len(pieces) - 1; i >= 0; i-- {
			flipped = append(flipped, pieces[i].Flip())
		}
		return flipped
	}
	return pieces
}

// dividedEndpoint maps an edge endpoint on the divided node onto the correct
// piece. from indicates whether the endpoint is the traversal's source.
func dividedEndpoint(ep, old Handle, first, last Handle, from bool) Handle {
	if ep.ID != old.ID {
		return ep
	}
	// A reversed source or forward sink touches the node's left side and
	// moves to the first piece; a forward source or reversed sink touches
	// the right side and moves to the last.
	if ep.Reverse == from {
		return Handle{ID: first.ID, Reverse: ep.Reverse}
	}
	return Handle{ID: last.ID, Reverse: ep.Reverse}
}

// IncrementNodeIDs shifts every node id upward by offset, rewriting edges
// and path steps. Useful to make two graphs' id spaces disjoint before
// merging them.
func (g *Graph) IncrementNodeIDs(offset NodeID) {
	shift := func(h Handle) Handle { return Handle{ID: h.ID + offset, Reverse: h.Reverse} }

	seqs := make(map[NodeID][]byte, len(g.seqs))
	for id, seq := range g.seqs {
		seqs[id+offset] = seq
	}
	g.seqs = seqs

	edges := make(map[Edge]struct{}, len(g.edges))
	nodeEdges := make(map[NodeID]map[Edge]struct{}, len(g.nodeEdges))
	for e := range g.edges {
		ne := Edge{From: shift(e.From), To: shift(e.To)}.normalized()
		edges[ne] = struct{}{}
		for _, id := range []NodeID{ne.From.ID, ne.To.ID} {
			m, ok := nodeEdges[id]
			if !ok {
				m = make(map[Edge]struct{})
				nodeEdges[id] = m
			}
			m[ne] = struct{}{}
		}
	}
	g.edges = edges
	g.nodeEdges = nodeEdges

	for _, p := range g.paths {
		for i := range p.steps {
			p.steps[i] = shift(p.steps[i])
		}
	}
	g.nextID += offset
}

// CreatePath creates an empty named path, replacing any previous path with
// the same name.
func (g *Graph) CreatePath(name string) *Path {
	p := &Path{Name: name}
	g.paths[name] = p
	return p
}

// AppendStep appends a step to the named path.
func (g *Graph) AppendStep(p *Path, h Handle) {
	p.steps = append(p.steps, h)
}

// Path returns the named path, or nil.
func (g *Graph) Path(name string) *Path { return g.paths[name] }

// HasPath reports whether a path with the given name exists.
func (g *Graph) HasPath(name string) bool {
	_, ok := g.paths[name]
	return ok
}

// ForEachPath calls fn for every path in name order.
func (g *Graph) ForEachPath(fn func(*Path) bool) {
	names := make([]string, 0, len(g.paths))
	for name := range g.paths {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !fn(g.paths[name]) {
			return
		}
	}
}

// ParentPathName returns the canonical path name recording an input node's
// decomposition into pieces: the decimal node id.
func ParentPathName(id NodeID) string { return strconv.FormatInt(int64(id), 10) }

// PathSequence spells the sequence of a path.
func (g *Graph) PathSequence(p *Path) []byte {
	var seq []byte
	for _, s := range p.steps {
		seq = append(seq, g.Sequence(s)...)
	}
	return seq
}

// Validate checks internal consistency: every edge endpoint must reference an
// existing node. It returns an INTERNAL_ERROR describing the first violation.
func (g *Graph) Validate() error {
	for e := range g.edges {
		if !g.HasNode(e.From.ID) || !g.HasNode(e.To.ID) {
			return errors.New(errors.ErrCodeInternal, "edge %s references a missing node", e)
		}
	}
	return nil
}

func (g *Graph) sortedIDs() []NodeID {
	ids := make([]NodeID, 0, len(g.seqs))
	for id := range g.seqs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (g *Graph) indexEdge(e Edge) {
	for _, id := range []NodeID{e.From.ID, e.To.ID} {
		m, ok := g.nodeEdges[id]
		if !ok {
			m = make(map[Edge]struct{})
			g.nodeEdges[id] = m
		}
		m[e] = struct{}{}
	}
}
