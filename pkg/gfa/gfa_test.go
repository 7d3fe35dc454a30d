package gfa

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gfatools/getblunted/pkg/errors"
	"github.com/gfatools/getblunted/pkg/handlegraph"
)

func TestParseAlignment(t *testing.T) {
	tests := []struct {
		cigar      string
		source     int
		sink       int
		wantString string
	}{
		{"0M", 0, 0, "0M"},
		{"*", 0, 0, "0M"},
		{"4M", 4, 4, "4M"},
		{"2M1I3M", 6, 5, "2M1I3M"},
		{"2M1D3M", 5, 6, "2M1D3M"},
		{"3=1X2=", 6, 6, "3=1X2="},
	}
	for _, tt := range tests {
		a, err := ParseAlignment(tt.cigar)
		if err != nil {
			t.Errorf("ParseAlignment(%q) error: %v", tt.cigar, err)
			continue
		}
		s, k := a.ComputeLengths()
		if s != tt.source || k != tt.sink {
			t.Errorf("ParseAlignment(%q) lengths = (%d, %d), want (%d, %d)", tt.cigar, s, k, tt.source, tt.sink)
		}
		if a.String() != tt.wantString {
			t.Errorf("ParseAlignment(%q).String() = %q, want %q", tt.cigar, a.String(), tt.wantString)
		}
	}
}

func TestParseAlignment_Malformed(t *testing.T) {
	for _, cigar := range []string{"M", "12", "3S", "4M5"} {
		if _, err := ParseAlignment(cigar); !errors.Is(err, errors.ErrCodeMalformedInput) {
			t.Errorf("ParseAlignment(%q) = %v, want MALFORMED_INPUT", cigar, err)
		}
	}
}

func TestIncrementalIDMap(t *testing.T) {
	m := NewIncrementalIDMap()
	for i, name := range []string{"ctg1", "ctg2", "x"} {
		id, err := m.Insert(name)
		if err != nil {
			t.Fatalf("Insert(%q) error: %v", name, err)
		}
		if id != int64(i+1) {
			t.Errorf("Insert(%q) = %d, want %d", name, id, i+1)
		}
	}
	if got := m.GetID("ctg2"); got != 2 {
		t.Errorf("GetID(ctg2) = %d, want 2", got)
	}
	if got := m.GetName(3); got != "x" {
		t.Errorf("GetName(3) = %q, want x", got)
	}
	if got := m.GetID("missing"); got != 0 {
		t.Errorf("GetID(missing) = %d, want 0", got)
	}
	if _, err := m.Insert("ctg1"); !errors.Is(err, errors.ErrCodeMalformedInput) {
		t.Errorf("duplicate Insert = %v, want MALFORMED_INPUT", err)
	}
}

func TestRead(t *testing.T) {
	input := "H\tVN:Z:1.0\n" +
		"S\t1\tACGT\n" +
		"S\t2\tGTAA\n" +
		"L\t1\t+\t2\t+\t2M\n"
	graph, idMap, overlaps, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if graph.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", graph.NodeCount())
	}
	if graph.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", graph.EdgeCount())
	}
	if idMap.Len() != 2 {
		t.Errorf("idMap.Len() = %d, want 2", idMap.Len())
	}
	edge := handlegraph.Edge{
		From: handlegraph.Handle{ID: 1},
		To:   handlegraph.Handle{ID: 2},
	}
	_, a, err := overlaps.CanonicalizeAndFind(edge)
	if err != nil {
		t.Fatalf("CanonicalizeAndFind() error: %v", err)
	}
	s, k := a.ComputeLengths()
	if s != 2 || k != 2 {
		t.Errorf("overlap lengths = (%d, %d), want (2, 2)", s, k)
	}
}

func TestRead_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"short S line", "S\tonly\n", errors.ErrCodeMalformedInput},
		{"undeclared segment", "S\t1\tACGT\nL\t1\t+\t9\t+\t0M\n", errors.ErrCodeMalformedInput},
		{"bad orientation", "S\t1\tACGT\nS\t2\tAAAA\nL\t1\t*\t2\t+\t0M\n", errors.ErrCodeMalformedInput},
		{"bad CIGAR", "S\t1\tACGT\nS\t2\tAAAA\nL\t1\t+\t2\t+\tzz\n", errors.ErrCodeMalformedInput},
		{"overlong overlap", "S\t1\tAC\nS\t2\tAAAA\nL\t1\t+\t2\t+\t3M\n", errors.ErrCodeOverlongOverlap},
	}
	for _, tt := range tests {
		_, _, _, err := Read(strings.NewReader(tt.input))
		if !errors.Is(err, tt.code) {
			t.Errorf("%s: Read() = %v, want %v", tt.name, err, tt.code)
		}
	}
}

func TestWrite(t *testing.T) {
	graph := handlegraph.New()
	h1 := graph.CreateHandleWithID(1, []byte("ACGT"))
	h2 := graph.CreateHandleWithID(2, []byte("TTAA"))
	graph.CreateEdge(h1, h2)

	var buf bytes.Buffer
	if err := Write(&buf, graph); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	want := "H\tVN:Z:1.0\n" +
		"S\t1\tACGT\n" +
		"S\t2\tTTAA\n" +
		"L\t1\t+\t2\t+\t0M\n"
	if buf.String() != want {
		t.Errorf("Write() = %q, want %q", buf.String(), want)
	}
}

func TestRoundTrip_OrientationPreserved(t *testing.T) {
	input := "S\t1\tACGT\nS\t2\tGGGG\nL\t1\t+\t2\t-\t0M\n"
	graph, _, _, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, graph); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if !strings.Contains(buf.String(), "L\t1\t+\t2\t-\t0M") && !strings.Contains(buf.String(), "L\t2\t+\t1\t-\t0M") {
		t.Errorf("round trip lost the reversing edge: %q", buf.String())
	}
}
