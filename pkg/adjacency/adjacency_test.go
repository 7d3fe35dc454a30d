package adjacency

import (
	"testing"

	"github.com/gfatools/getblunted/pkg/handlegraph"
)

func fwd(id handlegraph.NodeID) handlegraph.Handle { return handlegraph.Handle{ID: id} }
func rev(id handlegraph.NodeID) handlegraph.Handle {
	return handlegraph.Handle{ID: id, Reverse: true}
}

func buildGraph(seqs map[handlegraph.NodeID]string, edges []handlegraph.Edge) *handlegraph.Graph {
	g := handlegraph.New()
	for id, seq := range seqs {
		g.CreateHandleWithID(id, []byte(seq))
	}
	for _, e := range edges {
		g.CreateEdge(e.From, e.To)
	}
	return g
}

func TestComponents_SingleEdge(t *testing.T) {
	g := buildGraph(
		map[handlegraph.NodeID]string{1: "ACGT", 2: "TTAA"},
		[]handlegraph.Edge{{From: fwd(1), To: fwd(2)}},
	)

	comps := Components(g)
	// Sides: 1+ ~ 2- joined; 1- and 2+ are dead ends.
	if len(comps) != 3 {
		t.Fatalf("Components() = %d components, want 3", len(comps))
	}
	var joined *Component
	for _, c := range comps {
		if c.Size() == 2 {
			joined = c
		}
	}
	if joined == nil {
		t.Fatal("expected one component of size 2")
	}
	want := []handlegraph.Handle{fwd(1), rev(2)}
	for i, h := range joined.Sides {
		if h != want[i] {
			t.Errorf("joined.Sides[%d] = %v, want %v", i, h, want[i])
		}
	}
	trivial := 0
	for _, c := range comps {
		if c.IsTrivial(g) {
			trivial++
		}
	}
	if trivial != 2 {
		t.Errorf("trivial components = %d, want 2", trivial)
	}
}

func TestComponents_Fork(t *testing.T) {
	// 1 -> 2 and 1 -> 3 share the right side of 1.
	g := buildGraph(
		map[handlegraph.NodeID]string{1: "AAGT", 2: "GTCC", 3: "GTTT"},
		[]handlegraph.Edge{
			{From: fwd(1), To: fwd(2)},
			{From: fwd(1), To: fwd(3)},
		},
	)
	comps := Components(g)
	var big *Component
	for _, c := range comps {
		if c.Size() == 3 {
			big = c
		}
	}
	if big == nil {
		t.Fatal("expected a component with sides {1+, 2-, 3-}")
	}
	want := []handlegraph.Handle{fwd(1), rev(2), rev(3)}
	for i, h := range big.Sides {
		if h != want[i] {
			t.Errorf("Sides[%d] = %v, want %v", i, h, want[i])
		}
	}
}

func TestComponents_PalindromicSelfEdge(t *testing.T) {
	// L 1 + 1 -: the right side of 1 abuts itself.
	g := buildGraph(
		map[handlegraph.NodeID]string{1: "ACGT"},
		[]handlegraph.Edge{{From: fwd(1), To: rev(1)}},
	)
	comps := Components(g)
	var selfComp *Component
	for _, c := range comps {
		if c.Size() == 1 && c.Sides[0] == fwd(1) {
			selfComp = c
		}
	}
	if selfComp == nil {
		t.Fatal("expected a component containing just 1+")
	}
	if selfComp.IsTrivial(g) {
		t.Error("a self-adjacent side is not a dead end")
	}
}

func TestDecompose_SimpleBlock(t *testing.T) {
	g := buildGraph(
		map[handlegraph.NodeID]string{1: "AAGT", 2: "GTCC", 3: "GTTT"},
		[]handlegraph.Edge{
			{From: fwd(1), To: fwd(2)},
			{From: fwd(1), To: fwd(3)},
		},
	)
	comps := Components(g)
	var big *Component
	for _, c := range comps {
		if c.Size() == 3 {
			big = c
		}
	}

	var blocks []*BipartiteGraph
	big.DecomposeIntoBipartiteBlocks(g, func(b *BipartiteGraph) { blocks = append(blocks, b) })

	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	b := blocks[0]
	if b.LeftSize()+b.RightSize() != 3 {
		t.Fatalf("partition sizes %d+%d, want 3 total", b.LeftSize(), b.RightSize())
	}
	// 1+ must be alone on its side with both sinks on the other.
	one, two := b.Left(), b.Right()
	if len(one) != 1 {
		one, two = two, one
	}
	if len(one) != 1 || one[0] != fwd(1) {
		t.Fatalf("expected {1+} on one side, got %v | %v", b.Left(), b.Right())
	}
	if len(two) != 2 {
		t.Fatalf("expected two sides opposite 1+, got %v", two)
	}
	if b.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", b.EdgeCount())
	}
	for _, r := range b.Right() {
		ns := b.RightNeighbors(r)
		if len(ns) != 1 {
			t.Errorf("RightNeighbors(%v) = %v, want a single neighbour", r, ns)
		}
	}
}

func TestDecompose_SelfLoopDuplicates(t *testing.T) {
	g := buildGraph(
		map[handlegraph.NodeID]string{1: "ACGT"},
		[]handlegraph.Edge{{From: fwd(1), To: rev(1)}},
	)
	comps := Components(g)
	var selfComp *Component
	for _, c := range comps {
		if c.Size() == 1 && c.Sides[0] == fwd(1) {
			selfComp = c
		}
	}

	var blocks []*BipartiteGraph
	selfComp.DecomposeIntoBipartiteBlocks(g, func(b *BipartiteGraph) { blocks = append(blocks, b) })

	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	b := blocks[0]
	if b.LeftSize() != 1 || b.RightSize() != 1 {
		t.Fatalf("partition sizes %d/%d, want 1/1 (duplicated)", b.LeftSize(), b.RightSize())
	}
	if b.Left()[0] != fwd(1) || b.Right()[0] != fwd(1) {
		t.Errorf("duplicated side should appear in both partitions, got %v | %v", b.Left(), b.Right())
	}
}

func TestDecompose_OddCycle(t *testing.T) {
	// Triangle of right sides: 1+ ~ 2+ ~ 3+ ~ 1+ via reversing links.
	g := buildGraph(
		map[handlegraph.NodeID]string{1: "AA", 2: "CC", 3: "GG"},
		[]handlegraph.Edge{
			{From: fwd(1), To: rev(2)},
			{From: fwd(2), To: rev(3)},
			{From: fwd(3), To: rev(1)},
		},
	)
	comps := Components(g)
	var tri *Component
	for _, c := range comps {
		if c.Size() == 3 {
			tri = c
		}
	}
	if tri == nil {
		t.Fatal("expected a component of all three right sides")
	}

	var blocks []*BipartiteGraph
	tri.DecomposeIntoBipartiteBlocks(g, func(b *BipartiteGraph) { blocks = append(blocks, b) })
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	b := blocks[0]
	// Breaking the odd cycle requires at least one duplicated side.
	if b.LeftSize()+b.RightSize() <= 3 {
		t.Errorf("odd cycle should duplicate a side: sizes %d+%d", b.LeftSize(), b.RightSize())
	}
}
