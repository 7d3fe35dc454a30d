package poa

import (
	"testing"
)

func spell(t *testing.T, g *Graph, name string) string {
	t.Helper()
	return string(g.PathSequence(name))
}

func TestAlign_SingleInput(t *testing.T) {
	g, err := Align([]Input{{Name: "a", Sequence: []byte("ACGT")}}, DefaultScores())
	if err != nil {
		t.Fatalf("Align() error: %v", err)
	}
	if got := spell(t, g, "a"); got != "ACGT" {
		t.Errorf("path a spells %q, want ACGT", got)
	}
	// A lone input compacts to a single node.
	if len(g.Nodes) != 1 {
		t.Errorf("got %d nodes after compaction, want 1", len(g.Nodes))
	}
}

func TestAlign_IdenticalInputsMerge(t *testing.T) {
	g, err := Align([]Input{
		{Name: "a", Sequence: []byte("GT")},
		{Name: "b", Sequence: []byte("GT")},
		{Name: "c", Sequence: []byte("GT")},
	}, DefaultScores())
	if err != nil {
		t.Fatalf("Align() error: %v", err)
	}
	for _, name := range []string{"a", "b", "c"} {
		if got := spell(t, g, name); got != "GT" {
			t.Errorf("path %s spells %q, want GT", name, got)
		}
	}
	if len(g.Nodes) != 1 {
		t.Errorf("identical inputs should share one node, got %d", len(g.Nodes))
	}
	pa, pb := g.Paths["a"], g.Paths["b"]
	if len(pa) != 1 || len(pb) != 1 || pa[0] != pb[0] {
		t.Errorf("paths should share steps: %v vs %v", pa, pb)
	}
}

func TestAlign_MismatchBranches(t *testing.T) {
	g, err := Align([]Input{
		{Name: "a", Sequence: []byte("ACGT")},
		{Name: "b", Sequence: []byte("ACTT")},
	}, DefaultScores())
	if err != nil {
		t.Fatalf("Align() error: %v", err)
	}
	if got := spell(t, g, "a"); got != "ACGT" {
		t.Errorf("path a spells %q, want ACGT", got)
	}
	if got := spell(t, g, "b"); got != "ACTT" {
		t.Errorf("path b spells %q, want ACTT", got)
	}
}

func TestAlign_DisjointSequences(t *testing.T) {
	g, err := Align([]Input{
		{Name: "a", Sequence: []byte("AAAA")},
		{Name: "b", Sequence: []byte("TTTT")},
	}, DefaultScores())
	if err != nil {
		t.Fatalf("Align() error: %v", err)
	}
	if got := spell(t, g, "a"); got != "AAAA" {
		t.Errorf("path a spells %q, want AAAA", got)
	}
	if got := spell(t, g, "b"); got != "TTTT" {
		t.Errorf("path b spells %q, want TTTT", got)
	}
}

func TestAlign_PrefixSuffix(t *testing.T) {
	g, err := Align([]Input{
		{Name: "long", Sequence: []byte("ACGTAC")},
		{Name: "short", Sequence: []byte("ACGT")},
	}, DefaultScores())
	if err != nil {
		t.Fatalf("Align() error: %v", err)
	}
	if got := spell(t, g, "long"); got != "ACGTAC" {
		t.Errorf("path long spells %q, want ACGTAC", got)
	}
	if got := spell(t, g, "short"); got != "ACGT" {
		t.Errorf("path short spells %q, want ACGT", got)
	}
}

func TestAlign_Errors(t *testing.T) {
	if _, err := Align([]Input{{Name: "a", Sequence: nil}}, DefaultScores()); err == nil {
		t.Error("empty sequence should error")
	}
	if _, err := Align([]Input{
		{Name: "a", Sequence: []byte("A")},
		{Name: "a", Sequence: []byte("C")},
	}, DefaultScores()); err == nil {
		t.Error("duplicate input names should error")
	}
}

func TestGraph_IsAcyclic(t *testing.T) {
	g, err := Align([]Input{
		{Name: "a", Sequence: []byte("ACGTACGT")},
		{Name: "b", Sequence: []byte("ACCTACGA")},
		{Name: "c", Sequence: []byte("ACGTCCGT")},
	}, DefaultScores())
	if err != nil {
		t.Fatalf("Align() error: %v", err)
	}
	order := g.topoOrder()
	if len(order) != len(g.Nodes) {
		t.Errorf("topological order covers %d of %d nodes: graph has a cycle", len(order), len(g.Nodes))
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	g, err := Align([]Input{
		{Name: "x", Sequence: []byte("ACGT")},
		{Name: "y", Sequence: []byte("ACTT")},
	}, DefaultScores())
	if err != nil {
		t.Fatalf("Align() error: %v", err)
	}
	data, err := g.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	restored, ok := Unmarshal(data, []string{"p", "q"})
	if !ok {
		t.Fatal("Unmarshal() failed")
	}
	if got := spell(t, restored, "p"); got != "ACGT" {
		t.Errorf("restored path p spells %q, want ACGT", got)
	}
	if got := spell(t, restored, "q"); got != "ACTT" {
		t.Errorf("restored path q spells %q, want ACTT", got)
	}
	if _, ok := Unmarshal(data, []string{"only-one"}); ok {
		t.Error("Unmarshal with wrong path count should fail")
	}
}
