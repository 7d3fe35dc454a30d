package biclique

import (
	"github.com/gfatools/getblunted/pkg/adjacency"
	"github.com/gfatools/getblunted/pkg/handlegraph"
)

// mutableBipartite is a copy of a block whose edges can be removed. The two
// adjacency maps are kept per partition membership so a side duplicated into
// both partitions keeps independent neighbourhoods.
type mutableBipartite struct {
	left, right []handlegraph.Handle
	leftIndex   map[handlegraph.Handle]int
	rightIndex  map[handlegraph.Handle]int
	leftAdj     map[handlegraph.Handle]map[handlegraph.Handle]bool
	rightAdj    map[handlegraph.Handle]map[handlegraph.Handle]bool
}

func newMutableBipartite(block *adjacency.BipartiteGraph) *mutableBipartite {
	m := &mutableBipartite{
		left:       block.Left(),
		right:      block.Right(),
		leftIndex:  make(map[handlegraph.Handle]int),
		rightIndex: make(map[handlegraph.Handle]int),
		leftAdj:    make(map[handlegraph.Handle]map[handlegraph.Handle]bool),
		rightAdj:   make(map[handlegraph.Handle]map[handlegraph.Handle]bool),
	}
	for i, h := range m.left {
		m.leftIndex[h] = i
		m.leftAdj[h] = make(map[handlegraph.Handle]bool)
	}
	for i, h := range m.right {
		m.rightIndex[h] = i
		m.rightAdj[h] = make(map[handlegraph.Handle]bool)
	}
	for _, l := range m.left {
		for _, r := range block.LeftNeighbors(l) {
			m.leftAdj[l][r] = true
			m.rightAdj[r][l] = true
		}
	}
	return m
}

func (m *mutableBipartite) Left() []handlegraph.Handle  { return m.left }
func (m *mutableBipartite) Right() []handlegraph.Handle { return m.right }

func (m *mutableBipartite) LeftIndex(h handlegraph.Handle) int {
	if i, ok := m.leftIndex[h]; ok {
		return i
	}
	return -1
}

func (m *mutableBipartite) RightIndex(h handlegraph.Handle) int {
	if i, ok := m.rightIndex[h]; ok {
		return i
	}
	return -1
}

func (m *mutableBipartite) LeftNeighbors(h handlegraph.Handle) []handlegraph.Handle {
	return sortedKeys(m.leftAdj[h])
}

func (m *mutableBipartite) RightNeighbors(h handlegraph.Handle) []handlegraph.Handle {
	return sortedKeys(m.rightAdj[h])
}

func (m *mutableBipartite) subtractEdge(l, r handlegraph.Handle) {
	delete(m.leftAdj[l], r)
	delete(m.rightAdj[r], l)
}

func sortedKeys(set map[handlegraph.Handle]bool) []handlegraph.Handle {
	ns := make([]handlegraph.Handle, 0, len(set))
	for n := range set {
		ns = append(ns, n)
	}
	sortHandles(ns)
	return ns
}

// simplify copies the block and removes, on both sides, every edge whose
// removal leaves the maximal bicliques unchanged (Amilhastre et al. 1998,
// algorithm 2). A node u whose neighbourhood is contained in a node v's
// makes v a successor of u; the edges of v into u's neighbourhood are then
// redundant.
func simplify(block *adjacency.BipartiteGraph) *mutableBipartite {
	m := newMutableBipartite(block)
	m.simplifySide(m.left, m.leftAdj, m.rightAdj)
	m.simplifySide(m.right, m.rightAdj, m.leftAdj)
	return m
}

// simplifySide runs the simplification over one partition. adj maps a
// partition member to its neighbourhood, coadj the reverse direction.
func (m *mutableBipartite) simplifySide(
	partition []handlegraph.Handle,
	adj, coadj map[handlegraph.Handle]map[handlegraph.Handle]bool,
) {
	n := len(partition)

	// nonmaximal marks nodes that currently have a successor (LI in
	// Amilhastre); successor[i][j] records Nbd(i) ⊊ Nbd(j);
	// neighborDelta[i][j] = |Nbd(i) \ Nbd(j)|.
	nonmaximal := make([]bool, n)
	successor := make([][]bool, n)
	numSuccessors := make([]int, n)
	degree := make([]int, n)
	neighborDelta := make([][]int, n)

	for i := range partition {
		successor[i] = make([]bool, n)
		neighborDelta[i] = make([]int, n)
	}
	for i, u := range partition {
		nbd := adj[u]
		degree[i] = len(nbd)
		for j, v := range partition {
			neighborDelta[i][j] = degree[i]
			if i == j {
				continue
			}
			for nbr := range adj[v] {
				if nbd[nbr] {
					neighborDelta[i][j]--
				}
			}
		}
	}
	// v succeeds u only under strict containment: twins with equal
	// neighbourhoods are one equivalence class for the Galois trees and
	// removing their edges would lose maximal bicliques.
	for i := range partition {
		for j := range partition {
			if i == j {
				continue
			}
			if neighborDelta[i][j] == 0 && degree[i] > 0 && neighborDelta[j][i] > 0 {
				successor[i][j] = true
				nonmaximal[i] = true
				numSuccessors[i]++
			}
		}
	}

	fullySimplified := false
	for !fullySimplified {
		fullySimplified = true
		for i := 0; i < n && fullySimplified; i++ {
			if !nonmaximal[i] {
				continue
			}
			fullySimplified = false
			for j := 0; j < n; j++ {
				if !successor[i][j] {
					continue
				}
				// j succeeds i: every edge from j into i's neighbourhood is
				// redundant. Remove them and maintain the bookkeeping.
				for _, nbr := range sortedKeys(adj[partition[i]]) {
					if !adj[partition[j]][nbr] {
						continue
					}
					delete(adj[partition[j]], nbr)
					delete(coadj[nbr], partition[j])
					degree[j]--

					nbrNbrs := coadj[nbr]
					for k := 0; k < n; k++ {
						if k == j {
							continue
						}
						if nbrNbrs[partition[k]] {
							// k keeps nbr while j just lost it: the set
							// difference Nbd(k) \ Nbd(j) grows, and j can no
							// longer succeed k.
							neighborDelta[k][j]++
							if nonmaximal[k] {
								if successor[k][j] {
									successor[k][j] = false
									numSuccessors[k]--
								}
								if numSuccessors[k] == 0 {
									nonmaximal[k] = false
								}
							}
						} else {
							// nbr was in Nbd(j) \ Nbd(k); it no longer is.
							neighborDelta[j][k]--
						}

						if neighborDelta[j][k] == 0 && degree[j] > 0 && neighborDelta[k][j] > 0 {
							nonmaximal[j] = true
							if !successor[j][k] {
								successor[j][k] = true
								numSuccessors[j]++
							}
						}
					}
				}
			}
			nonmaximal[i] = false
		}
	}
}
