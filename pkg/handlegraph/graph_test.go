package handlegraph

import (
	"testing"

	"github.com/gfatools/getblunted/pkg/errors"
	"github.com/gfatools/getblunted/pkg/gfa"
)

func fwd(id NodeID) Handle { return Handle{ID: id} }
func rev(id NodeID) Handle { return Handle{ID: id, Reverse: true} }

func TestHandleFlip(t *testing.T) {
	h := fwd(3)
	if h.Flip() != rev(3) {
		t.Errorf("Flip() = %v", h.Flip())
	}
	if h.Flip().Flip() != h {
		t.Error("Flip() should be an involution")
	}
}

func TestEdgeFlipped(t *testing.T) {
	e := Edge{From: fwd(1), To: rev(2)}
	f := e.Flipped()
	if f.From != fwd(2) || f.To != rev(1) {
		t.Errorf("Flipped() = %v", f)
	}
	if f.Flipped() != e {
		t.Error("Flipped() should be an involution")
	}
}

func TestCreateEdge_FlippedIsSameEdge(t *testing.T) {
	g := New()
	g.CreateHandleWithID(1, []byte("AC"))
	g.CreateHandleWithID(2, []byte("GT"))

	g.CreateEdge(fwd(1), fwd(2))
	g.CreateEdge(rev(2), rev(1)) // same physical edge

	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if !g.HasEdge(rev(2), rev(1)) {
		t.Error("HasEdge should find the flipped traversal")
	}
}

func TestFollowEdges(t *testing.T) {
	g := New()
	g.CreateHandleWithID(1, []byte("A"))
	g.CreateHandleWithID(2, []byte("C"))
	g.CreateHandleWithID(3, []byte("G"))
	g.CreateEdge(fwd(1), fwd(2))
	g.CreateEdge(fwd(2), rev(3))

	var right []Handle
	g.FollowEdges(fwd(2), false, func(h Handle) bool {
		right = append(right, h)
		return true
	})
	if len(right) != 1 || right[0] != rev(3) {
		t.Errorf("rightward of 2+ = %v, want [3-]", right)
	}

	var left []Handle
	g.FollowEdges(fwd(2), true, func(h Handle) bool {
		left = append(left, h)
		return true
	})
	if len(left) != 1 || left[0] != fwd(1) {
		t.Errorf("leftward of 2+ = %v, want [1+]", left)
	}

	// Walking rightward from 3+ crosses the (2+, 3-) edge backwards: the
	// flipped traversal is (3+, 2-).
	var fromThree []Handle
	g.FollowEdges(fwd(3), false, func(h Handle) bool {
		fromThree = append(fromThree, h)
		return true
	})
	if len(fromThree) != 1 || fromThree[0] != rev(2) {
		t.Errorf("rightward of 3+ = %v, want [2-]", fromThree)
	}
}

func TestSequence_Reverse(t *testing.T) {
	g := New()
	g.CreateHandleWithID(1, []byte("ACGT"))
	if got := string(g.Sequence(rev(1))); got != "ACGT" {
		t.Errorf("Sequence(1-) = %q, want ACGT (palindrome)", got)
	}
	g.CreateHandleWithID(2, []byte("AAGC"))
	if got := string(g.Sequence(rev(2))); got != "GCTT" {
		t.Errorf("Sequence(2-) = %q, want GCTT", got)
	}
}

func TestDivideHandle(t *testing.T) {
	g := New()
	g.CreateHandleWithID(1, []byte("X"))
	g.CreateHandleWithID(2, []byte("ACGTT"))
	g.CreateHandleWithID(3, []byte("Y"))
	g.CreateEdge(fwd(1), fwd(2))
	g.CreateEdge(fwd(2), fwd(3))
	p := g.CreatePath("2")
	g.AppendStep(p, fwd(2))

	pieces := g.DivideHandle(fwd(2), []int{2, 4})
	if len(pieces) != 3 {
		t.Fatalf("DivideHandle() returned %d pieces, want 3", len(pieces))
	}
	want := []string{"AC", "GT", "T"}
	for i, piece := range pieces {
		if got := string(g.Sequence(piece)); got != want[i] {
			t.Errorf("piece %d = %q, want %q", i, got, want[i])
		}
	}
	if g.HasNode(2) {
		t.Error("divided node should be gone")
	}
	if !g.HasEdge(fwd(1), pieces[0]) {
		t.Error("left edge should reattach to the first piece")
	}
	if !g.HasEdge(pieces[2], fwd(3)) {
		t.Error("right edge should reattach to the last piece")
	}
	if !g.HasEdge(pieces[0], pieces[1]) || !g.HasEdge(pieces[1], pieces[2]) {
		t.Error("pieces should be chained")
	}
	steps := g.Path("2").Steps()
	if len(steps) != 3 {
		t.Fatalf("path has %d steps, want 3", len(steps))
	}
	if got := string(g.PathSequence(g.Path("2"))); got != "ACGTT" {
		t.Errorf("path spells %q, want ACGTT", got)
	}
}

func TestDivideHandle_Reversed(t *testing.T) {
	g := New()
	g.CreateHandleWithID(1, []byte("AACCG"))

	// Dividing the reverse view at offset 2 cuts the forward sequence at 3.
	pieces := g.DivideHandle(rev(1), []int{2})
	if len(pieces) != 2 {
		t.Fatalf("DivideHandle() returned %d pieces, want 2", len(pieces))
	}
	if got := string(g.Sequence(pieces[0])); got != "CG" {
		t.Errorf("first reversed piece = %q, want CG (revcomp of CG)", got)
	}
	if got := string(g.Sequence(pieces[0].Flip())); got != "CG" {
		t.Errorf("forward view of first piece = %q, want CG", got)
	}
	if got := string(g.Sequence(pieces[1].Flip())); got != "AAC" {
		t.Errorf("forward view of second piece = %q, want AAC", got)
	}
}

func TestDestroyHandle(t *testing.T) {
	g := New()
	g.CreateHandleWithID(1, []byte("A"))
	g.CreateHandleWithID(2, []byte("C"))
	g.CreateEdge(fwd(1), fwd(2))
	p := g.CreatePath("p")
	g.AppendStep(p, fwd(1))
	g.AppendStep(p, fwd(2))

	g.DestroyHandle(2)

	if g.HasNode(2) {
		t.Error("node 2 should be gone")
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
	if len(g.Path("p").Steps()) != 1 {
		t.Errorf("path steps = %v, want just 1+", g.Path("p").Steps())
	}
}

func TestIncrementNodeIDs(t *testing.T) {
	g := New()
	g.CreateHandleWithID(1, []byte("AC"))
	g.CreateHandleWithID(2, []byte("GT"))
	g.CreateEdge(fwd(1), rev(2))
	p := g.CreatePath("p")
	g.AppendStep(p, fwd(1))
	g.AppendStep(p, rev(2))

	g.IncrementNodeIDs(10)

	if g.HasNode(1) || !g.HasNode(11) || !g.HasNode(12) {
		t.Error("node ids should shift by the offset")
	}
	if !g.HasEdge(fwd(11), rev(12)) {
		t.Error("edges should follow the shifted ids")
	}
	steps := g.Path("p").Steps()
	if steps[0] != fwd(11) || steps[1] != rev(12) {
		t.Errorf("path steps = %v, want [11+ 12-]", steps)
	}
	if h := g.CreateHandle([]byte("A")); h.ID <= 12 {
		t.Errorf("fresh id %d should come after the shifted range", h.ID)
	}
}

func TestOverlapMap_Canonicalize(t *testing.T) {
	m := NewOverlapMap()
	a, _ := gfa.ParseAlignment("3M")
	e := Edge{From: fwd(1), To: rev(2)}
	m.Insert(e, a)

	// Exact form.
	stored, _, err := m.CanonicalizeAndFind(e)
	if err != nil || stored != e {
		t.Fatalf("CanonicalizeAndFind(exact) = %v, %v", stored, err)
	}

	// Flipped form finds the same entry and reports the stored form.
	stored, _, err = m.CanonicalizeAndFind(e.Flipped())
	if err != nil || stored != e {
		t.Fatalf("CanonicalizeAndFind(flipped) = %v, %v", stored, err)
	}

	// Idempotence: canonicalising the stored form returns it unchanged.
	again, _, err := m.CanonicalizeAndFind(stored)
	if err != nil || again != stored {
		t.Errorf("canon(canon(e)) = %v, want %v", again, stored)
	}

	if _, _, err := m.CanonicalizeAndFind(Edge{From: fwd(7), To: fwd(8)}); !errors.Is(err, errors.ErrCodeEdgeNotFound) {
		t.Errorf("missing edge error = %v, want EDGE_NOT_FOUND", err)
	}
}

func TestOverlapMap_Lengths_SwappedForFlippedLookup(t *testing.T) {
	m := NewOverlapMap()
	a, _ := gfa.ParseAlignment("2M1I") // 3 on source side, 2 on sink side
	e := Edge{From: fwd(1), To: fwd(2)}
	m.Insert(e, a)

	s, k, err := m.Lengths(e)
	if err != nil || s != 3 || k != 2 {
		t.Errorf("Lengths(e) = (%d, %d, %v), want (3, 2, nil)", s, k, err)
	}
	s, k, err = m.Lengths(e.Flipped())
	if err != nil || s != 2 || k != 3 {
		t.Errorf("Lengths(flipped) = (%d, %d, %v), want (2, 3, nil)", s, k, err)
	}
}

func TestOverlapMap_UpdateEdge(t *testing.T) {
	m := NewOverlapMap()
	a, _ := gfa.ParseAlignment("2M")
	old := Edge{From: fwd(1), To: fwd(2)}
	m.Insert(old, a)

	updated := Edge{From: fwd(1), To: fwd(9)}
	m.UpdateEdge(old, updated)

	if _, ok := m.At(old); ok {
		t.Error("old key should be gone")
	}
	if _, ok := m.At(updated); !ok {
		t.Error("new key should be present")
	}
}

func TestOverlapMap_UpdateEdge_FlippedStorage(t *testing.T) {
	m := NewOverlapMap()
	a, _ := gfa.ParseAlignment("2M")
	stored := Edge{From: fwd(2), To: rev(1)}
	m.Insert(stored, a)

	// Rewrite arrives in the flipped traversal; the entry must stay flipped.
	old := stored.Flipped() // (1+, 2-)
	updated := Edge{From: fwd(1), To: rev(9)}
	m.UpdateEdge(old, updated)

	if _, ok := m.At(updated.Flipped()); !ok {
		t.Error("entry should be rekeyed in its stored (flipped) orientation")
	}
}

func TestReverseComplement(t *testing.T) {
	if got := string(ReverseComplement([]byte("ACGTN"))); got != "NACGT" {
		t.Errorf("ReverseComplement(ACGTN) = %q, want NACGT", got)
	}
}
