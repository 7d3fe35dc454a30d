package biclique

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gfatools/getblunted/pkg/handlegraph"
)

// galoisLattice holds the maximal bicliques of a domino-free block, ordered
// by inclusion, with a synthetic source (join) and sink (meet). In a
// domino-free graph the maximal bicliques containing any given edge form a
// chain from a source to a sink of this order, so a set of bicliques covers
// every edge exactly when it is a join-meet node cut: a minimum biclique
// cover is a minimum node cut (Amilhastre et al. 1998).
type galoisLattice struct {
	nodes []Bipartition
	adj   [][]int // adj[i] lists i's immediate descendants (shrinking right side)
	join  int
	meet  int
}

// newGaloisLattice builds the per-centre Galois trees, collects their
// maximal bicliques, and threads every edge's biclique chain between join
// and meet. It fails with NOT_DOMINO_FREE when a tree is invalid or when
// some edge's bicliques do not form a chain.
func newGaloisLattice(g bigraph) (*galoisLattice, error) {
	l := &galoisLattice{}

	// A maximal biclique is determined by its right side (the left side is
	// the common neighbourhood), so bicliques dedup by right-side key.
	index := make(map[string]int)
	for _, center := range g.Left() {
		t := newGaloisTree(g, center)
		if !t.valid {
			return nil, notDominoFree("centre %s violates the neighbourhood ordering property", center)
		}
		for class := 0; class < t.size(); class++ {
			b := t.biclique(class)
			key := rightKey(b.Right)
			if _, ok := index[key]; !ok {
				index[key] = len(l.nodes)
				l.nodes = append(l.nodes, b)
			}
		}
	}

	interior := len(l.nodes)
	l.join = interior
	l.meet = interior + 1
	l.adj = make([][]int, interior+2)

	// Thread each edge's chain: consecutive bicliques by shrinking right
	// side, the head fed by join, the tail feeding meet.
	linked := make(map[[2]int]bool)
	link := func(from, to int) {
		if !linked[[2]int{from, to}] {
			linked[[2]int{from, to}] = true
			l.adj[from] = append(l.adj[from], to)
		}
	}
	memberships := make([]map[handlegraph.Handle]bool, interior)
	rightSets := make([]map[handlegraph.Handle]bool, interior)
	for i, b := range l.nodes {
		memberships[i] = make(map[handlegraph.Handle]bool, len(b.Left))
		for _, h := range b.Left {
			memberships[i][h] = true
		}
		rightSets[i] = make(map[handlegraph.Handle]bool, len(b.Right))
		for _, h := range b.Right {
			rightSets[i][h] = true
		}
	}
	for _, left := range g.Left() {
		for _, right := range g.LeftNeighbors(left) {
			var chain []int
			for i := range l.nodes {
				if memberships[i][left] && rightSets[i][right] {
					chain = append(chain, i)
				}
			}
			if len(chain) == 0 {
				return nil, notDominoFree("edge (%s, %s) is in no maximal biclique", left, right)
			}
			sort.Slice(chain, func(a, b int) bool {
				return len(l.nodes[chain[a]].Right) > len(l.nodes[chain[b]].Right)
			})
			for i := 0; i+1 < len(chain); i++ {
				if len(l.nodes[chain[i]].Right) == len(l.nodes[chain[i+1]].Right) {
					// Two incomparable bicliques cover the edge: the
					// chain property fails, the graph is not domino-free.
					return nil, notDominoFree("edge (%s, %s) has incomparable covering bicliques", left, right)
				}
				link(chain[i], chain[i+1])
			}
			link(l.join, chain[0])
			link(chain[len(chain)-1], l.meet)
		}
	}
	return l, nil
}

func rightKey(right []handlegraph.Handle) string {
	var b strings.Builder
	for _, h := range right {
		fmt.Fprintf(&b, "%s,", h)
	}
	return b.String()
}

// bicliqueCover returns the bicliques of a minimum separator.
func (l *galoisLattice) bicliqueCover() []Bipartition {
	var cover []Bipartition
	for _, i := range l.separator() {
		cover = append(cover, l.nodes[i])
	}
	return cover
}

// separator finds a minimum node cut between join and meet in the Menger
// expansion of the lattice: each interior node splits into an in/out pair
// joined by one unit-capacity edge, so a minimum edge cut of the expansion
// crosses exactly the nodes of a minimum node cut. Dinic's algorithm finds
// the maximum flow, and the cut is read off the reachability boundary of the
// level graph after the last blocking phase.
func (l *galoisLattice) separator() []int {
	interior := l.join
	if interior == 0 {
		return nil
	}
	source := 2 * interior
	sink := source + 1
	menger := make([][]int, 2*interior+2)

	// Interior node i expands to in = 2i, out = 2i+1 with the unit
	// across-the-node edge between them.
	for i := 0; i < interior; i++ {
		in, out := 2*i, 2*i+1
		menger[in] = append(menger[in], out)
		for _, j := range l.adj[i] {
			adj := 2 * j
			if j == l.meet {
				adj = sink
			}
			menger[out] = append(menger[out], adj)
		}
	}
	for _, j := range l.adj[l.join] {
		menger[source] = append(menger[source], 2*j)
	}

	numEdges := 0
	for _, es := range menger {
		numEdges += len(es)
	}

	const unreached = int(^uint(0) >> 1)
	flowThrough := make([]bool, numEdges)
	var cutEdges []int
	for {
		// Build the level graph: forward edges without flow, residual edges
		// against flow. Each arc remembers its index in the flow vector.
		type arc struct{ to, edge int }
		levelGraph := make([][]arc, len(menger))
		edgeIdx := 0
		for i, es := range menger {
			for _, adj := range es {
				if !flowThrough[edgeIdx] {
					levelGraph[i] = append(levelGraph[i], arc{to: adj, edge: edgeIdx})
				} else {
					levelGraph[adj] = append(levelGraph[adj], arc{to: i, edge: edgeIdx})
				}
				edgeIdx++
			}
		}

		// BFS levels from the source.
		level := make([]int, len(menger))
		for i := range level {
			level[i] = unreached
		}
		queue := [][2]int{{source, 0}}
		for len(queue) > 0 {
			here := queue[0]
			queue = queue[1:]
			if level[here[0]] > here[1] {
				level[here[0]] = here[1]
				for _, a := range levelGraph[here[0]] {
					queue = append(queue, [2]int{a.to, here[1] + 1})
				}
			}
		}

		if level[sink] == unreached {
			// Max flow reached: the saturated edges crossing the residual
			// reachability boundary are the cut.
			for i := range levelGraph {
				reachable := level[i] != unreached
				for _, a := range levelGraph[i] {
					if reachable != (level[a.to] != unreached) {
						cutEdges = append(cutEdges, a.edge)
					}
				}
			}
			break
		}

		// Keep only edges that increase in level.
		for i := range levelGraph {
			es := levelGraph[i]
			end := len(es)
			for j := 0; j < end; {
				if level[es[j].to] <= level[i] {
					es[j] = es[end-1]
					end--
				} else {
					j++
				}
			}
			levelGraph[i] = es[:end]
		}

		// Pruning DFS for the blocking flow.
		stack := []int{source}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top == sink {
				// The stack is an augmenting path: flip the used status of
				// its edges and remove them from the level graph.
				for i := 0; i+1 < len(stack); i++ {
					es := levelGraph[stack[i]]
					a := es[len(es)-1]
					levelGraph[stack[i]] = es[:len(es)-1]
					flowThrough[a.edge] = !flowThrough[a.edge]
				}
				stack = stack[:1]
			} else if len(levelGraph[top]) == 0 {
				// Dead end: backtrack and drop the edge that led here.
				stack = stack[:len(stack)-1]
				if len(stack) > 0 {
					es := levelGraph[stack[len(stack)-1]]
					levelGraph[stack[len(stack)-1]] = es[:len(es)-1]
				}
			} else {
				stack = append(stack, levelGraph[top][len(levelGraph[top])-1].to)
			}
		}
	}

	// Translate cut edges back to lattice nodes; a cut edge leaving the
	// source stands for the across-the-node edge of its target.
	cutSet := make(map[int]bool, len(cutEdges))
	for _, e := range cutEdges {
		cutSet[e] = true
	}
	seen := make(map[int]bool)
	var nodes []int
	edgeIdx := 0
	for i, es := range menger {
		for _, adj := range es {
			if cutSet[edgeIdx] {
				node := i / 2
				if i == source {
					node = adj / 2
				}
				if !seen[node] {
					seen[node] = true
					nodes = append(nodes, node)
				}
			}
			edgeIdx++
		}
	}
	return nodes
}
