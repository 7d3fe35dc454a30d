// Package poa implements the partial-order aligner the splicer feeds with
// per-biclique terminus sequences.
//
// The aligner is progressive: the first input seeds a linear chain, and each
// further input is aligned against the growing DAG with a Needleman-Wunsch
// recurrence over the graph's topological order. Matching characters reuse
// the existing node; mismatches and insertions branch off as new nodes. Every
// input leaves a labelled path through the graph whose spelled sequence
// equals the input, which is the contract the splicer and the provenance
// tracer rely on. A final compaction merges unary chains so runs of bases
// that every path traverses together become single nodes.
package poa

import (
	"github.com/gfatools/getblunted/pkg/errors"
)

// Input is one sequence to align. Reversed records that the sequence was
// flipped into the biclique's common reading direction; the aligner itself
// treats the sequence as given.
type Input struct {
	Name     string
	Sequence []byte
	Reversed bool
}

// Scores parameterises the alignment.
type Scores struct {
	Match    int
	Mismatch int
	Gap      int
}

// DefaultScores are conservative: merging only pays for exact matches.
func DefaultScores() Scores {
	return Scores{Match: 4, Mismatch: -4, Gap: -6}
}

// Node is one vertex of the aligned graph.
type Node struct {
	ID  int
	Seq []byte
}

// Graph is a directed acyclic sequence graph with one labelled path per
// aligned input.
type Graph struct {
	Nodes map[int]*Node
	Out   map[int][]int
	In    map[int][]int
	// Paths maps an input name to its walk through the graph.
	Paths map[string][]int
	// PathOrder preserves input order for deterministic iteration.
	PathOrder []string

	nextID int
}

// NewGraph creates an empty aligned graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[int]*Node),
		Out:   make(map[int][]int),
		In:    make(map[int][]int),
		Paths: make(map[string][]int),
	}
}

func (g *Graph) addNode(seq []byte) int {
	g.nextID++
	g.Nodes[g.nextID] = &Node{ID: g.nextID, Seq: seq}
	return g.nextID
}

func (g *Graph) addEdge(from, to int) {
	for _, t := range g.Out[from] {
		if t == to {
			return
		}
	}
	g.Out[from] = append(g.Out[from], to)
	g.In[to] = append(g.In[to], from)
}

// PathSequence spells the sequence of the named path.
func (g *Graph) PathSequence(name string) []byte {
	var seq []byte
	for _, id := range g.Paths[name] {
		seq = append(seq, g.Nodes[id].Seq...)
	}
	return seq
}

// Align builds the partial-order alignment of the inputs. Input names must
// be unique; they become path names in the result.
func Align(inputs []Input, sc Scores) (*Graph, error) {
	g := NewGraph()
	for _, in := range inputs {
		if len(in.Sequence) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "empty sequence for alignment input %q", in.Name)
		}
		if _, ok := g.Paths[in.Name]; ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate alignment input %q", in.Name)
		}
		g.alignOne(in, sc)
	}
	g.compact()
	return g, nil
}

// alignOne threads one input through the graph, reusing nodes where the
// alignment matches and creating nodes elsewhere.
func (g *Graph) alignOne(in Input, sc Scores) {
	seq := in.Sequence
	if len(g.Nodes) == 0 {
		g.threadFresh(in)
		return
	}

	order := g.topoOrder()
	pos := make(map[int]int, len(order)) // node id -> position in order
	for i, id := range order {
		pos[id] = i
	}

	const (
		fromStart = iota
		fromMatch
		fromDelete
		fromInsert
	)
	n := len(order)
	m := len(seq)
	// score[i][j]: best alignment score ending with node order[i] consumed
	// against the first j characters.
	score := make([][]int, n)
	choice := make([][]int8, n)
	predAt := make([][]int32, n) // chosen predecessor position, -1 for start
	neg := -1 << 30
	for i := range score {
		score[i] = make([]int, m+1)
		choice[i] = make([]int8, m+1)
		predAt[i] = make([]int32, m+1)
	}

	bestPred := func(i, j int) (int, int32) {
		// Starting fresh at this node pays gap for the unconsumed prefix.
		best, at := sc.Gap*j, int32(-1)
		for _, p := range g.In[order[i]] {
			pi := pos[p]
			if score[pi][j] > best {
				best, at = score[pi][j], int32(pi)
			}
		}
		return best, at
	}

	for i := 0; i < n; i++ {
		node := g.Nodes[order[i]]
		for j := 0; j <= m; j++ {
			best, ch, at := neg, int8(fromStart), int32(-1)
			if j > 0 {
				sub := sc.Mismatch
				if node.Seq[0] == seq[j-1] {
					sub = sc.Match
				}
				s, p := bestPred(i, j-1)
				if s+sub > best {
					best, ch, at = s+sub, fromMatch, p
				}
			}
			if s, p := bestPred(i, j); s+sc.Gap > best {
				best, ch, at = s+sc.Gap, fromDelete, p
			}
			if j > 0 && score[i][j-1]+sc.Gap > best {
				best, ch, at = score[i][j-1]+sc.Gap, fromInsert, int32(i)
			}
			score[i][j] = best
			choice[i][j] = ch
			predAt[i][j] = at
		}
	}

	// The sequence must be fully consumed; the graph may end anywhere.
	endI := 0
	for i := 1; i < n; i++ {
		if score[i][m] > score[endI][m] {
			endI = i
		}
	}

	// Trace back, collecting (node-or-new) steps in reverse.
	type step struct {
		node    int  // existing node id, 0 for a fresh node
		ch      byte // character for a fresh node
	}
	var rsteps []step
	i, j := endI, m
	for j > 0 || i >= 0 {
		switch choice[i][j] {
		case fromMatch:
			if g.Nodes[order[i]].Seq[0] == seq[j-1] {
				rsteps = append(rsteps, step{node: order[i]})
			} else {
				rsteps = append(rsteps, step{ch: seq[j-1]})
			}
			ni := predAt[i][j]
			j--
			if ni < 0 {
				i = -1
			} else {
				i = int(ni)
			}
		case fromDelete:
			// Node consumed without a character: nothing on the path.
			ni := predAt[i][j]
			if ni < 0 {
				i = -1
			} else {
				i = int(ni)
			}
		case fromInsert:
			rsteps = append(rsteps, step{ch: seq[j-1]})
			j--
		}
		if i < 0 {
			break
		}
	}
	// Any unconsumed prefix becomes leading insertions.
	for j > 0 {
		rsteps = append(rsteps, step{ch: seq[j-1]})
		j--
	}

	// Materialise the path in forward order.
	var path []int
	for k := len(rsteps) - 1; k >= 0; k-- {
		s := rsteps[k]
		id := s.node
		if id == 0 {
			id = g.addNode([]byte{s.ch})
		}
		if len(path) > 0 {
			g.addEdge(path[len(path)-1], id)
		}
		path = append(path, id)
	}
	g.Paths[in.Name] = path
	g.PathOrder = append(g.PathOrder, in.Name)
}

// threadFresh seeds the graph with the first input as a chain of one-base
// nodes.
func (g *Graph) threadFresh(in Input) {
	var path []int
	for _, c := range in.Sequence {
		id := g.addNode([]byte{c})
		if len(path) > 0 {
			g.addEdge(path[len(path)-1], id)
		}
		path = append(path, id)
	}
	g.Paths[in.Name] = path
	g.PathOrder = append(g.PathOrder, in.Name)
}

// topoOrder returns the node ids in a topological order (Kahn), tie-broken
// by id for determinism.
func (g *Graph) topoOrder() []int {
	indeg := make(map[int]int, len(g.Nodes))
	for id := range g.Nodes {
		indeg[id] = len(g.In[id])
	}
	var ready []int
	for id, d := range indeg {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	sortInts(ready)
	var order []int
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		changed := false
		for _, t := range g.Out[id] {
			indeg[t]--
			if indeg[t] == 0 {
				ready = append(ready, t)
				changed = true
			}
		}
		if changed {
			sortInts(ready)
		}
	}
	return order
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}
