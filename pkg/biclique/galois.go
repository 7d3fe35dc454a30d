package biclique

import (
	"github.com/gfatools/getblunted/pkg/handlegraph"
)

// galoisTree is the centred Galois tree of one left-side node: the
// equivalence classes of the left nodes in the centre's two-hop subgraph,
// keyed by their right neighbourhoods, ordered by strict containment. If the
// classes do not form such a chain for some right node, the block is not
// domino-free and the tree is marked invalid.
type galoisTree struct {
	equivClasses  [][]handlegraph.Handle // left members per class
	neighborhoods [][]handlegraph.Handle // right neighbourhood per class
	classEdges    [][]int                // right neighbourhood as sorted local indices
	rightNodes    []handlegraph.Handle
	successors    []int // immediate successor class, -1 at the top
	preds         [][]int
	valid         bool
}

const noClass = -1

// newGaloisTree builds the tree centred on center. An invalid tree (valid ==
// false) signals a domino violation.
func newGaloisTree(g bigraph, center handlegraph.Handle) *galoisTree {
	t := &galoisTree{}

	// Collect the two-hop subgraph around the centre. Rightward edges are
	// restricted to the centre's neighbourhood; edges leaving it belong to
	// other centres.
	leftIdx := make(map[handlegraph.Handle]int)
	var leftNodes []handlegraph.Handle
	var leftEdges [][]int
	var rightNodes []handlegraph.Handle
	for _, right := range g.LeftNeighbors(center) {
		for _, left := range g.RightNeighbors(right) {
			f, ok := leftIdx[left]
			if !ok {
				leftIdx[left] = len(leftEdges)
				leftEdges = append(leftEdges, []int{len(rightNodes)})
				leftNodes = append(leftNodes, left)
			} else {
				leftEdges[f] = append(leftEdges[f], len(rightNodes))
			}
		}
		rightNodes = append(rightNodes, right)
	}
	t.rightNodes = rightNodes

	// Refine equivalence classes of the left nodes: two left nodes are
	// equivalent when they abut exactly the same rights in the subgraph.
	assignment := make([]int, len(leftNodes))
	for i := range assignment {
		assignment[i] = noClass
	}
	nextClass := 0
	for _, right := range rightNodes {
		refined := make(map[int]int)
		for _, left := range g.RightNeighbors(right) {
			li, ok := leftIdx[left]
			if !ok {
				continue
			}
			old := assignment[li]
			if newClass, seen := refined[old]; seen {
				assignment[li] = newClass
			} else {
				refined[old] = nextClass
				assignment[li] = nextClass
				nextClass++
			}
		}
	}

	// Quotient the left nodes by class and compact class identifiers.
	compacted := make([]int, nextClass)
	for i := range compacted {
		compacted[i] = noClass
	}
	for i := range leftNodes {
		class := assignment[i]
		if compacted[class] == noClass {
			compacted[class] = len(t.equivClasses)
			class = len(t.equivClasses)
			t.equivClasses = append(t.equivClasses, nil)
			t.classEdges = append(t.classEdges, leftEdges[i])
			nbd := make([]handlegraph.Handle, 0, len(leftEdges[i]))
			for _, j := range leftEdges[i] {
				nbd = append(nbd, rightNodes[j])
			}
			t.neighborhoods = append(t.neighborhoods, nbd)
		} else {
			class = compacted[class]
		}
		t.equivClasses[class] = append(t.equivClasses[class], leftNodes[i])
	}

	// Group classes by degree (T_x(k) in Amilhastre) and order each right
	// node's neighbourhood by it (V(y)).
	degreeGroups := make([][]int, len(rightNodes)+1)
	for i := range t.neighborhoods {
		d := len(t.neighborhoods[i])
		degreeGroups[d] = append(degreeGroups[d], i)
	}
	degreeOrderedNbds := make([][]int, len(rightNodes))
	for _, group := range degreeGroups {
		for _, class := range group {
			for _, right := range t.classEdges[class] {
				degreeOrderedNbds[right] = append(degreeOrderedNbds[right], class)
			}
		}
	}

	// Build the successor relation (Succ) and the immediate predecessors
	// (Gamma^-) and check that the successors form a tree.
	t.successors = make([]int, len(t.equivClasses))
	for i := range t.successors {
		t.successors[i] = noClass
	}
	t.preds = make([][]int, len(t.equivClasses))
	for _, don := range degreeOrderedNbds {
		if len(don) == 0 {
			continue
		}
		pred := don[0]
		for j := 1; j < len(don); j++ {
			succ := don[j]
			if t.successors[pred] == noClass {
				t.successors[pred] = succ
				t.preds[succ] = append(t.preds[succ], pred)
			} else if t.successors[pred] != succ {
				// The successors don't form a tree: not domino free.
				return t
			}
			pred = succ
		}
	}

	// Check strict containment between each class and its predecessors.
	// Class edge lists are built in ascending local index order, so a merge
	// scan suffices.
	for i := range t.classEdges {
		succNbd := t.classEdges[i]
		for _, j := range t.preds[i] {
			predNbd := t.classEdges[j]
			p := 0
			for s := 0; s < len(succNbd) && p < len(predNbd); s++ {
				if succNbd[s] == predNbd[p] {
					p++
				}
			}
			if p < len(predNbd) {
				return t
			}
		}
	}

	t.valid = true
	return t
}

// size returns the number of equivalence classes.
func (t *galoisTree) size() int { return len(t.equivClasses) }

// biclique materialises the maximal biclique of a class: its right
// neighbourhood against the union of the left members along the successor
// chain up to the centre.
func (t *galoisTree) biclique(class int) Bipartition {
	var b Bipartition
	b.Right = append(b.Right, t.neighborhoods[class]...)
	for i := class; i != noClass; i = t.successors[i] {
		b.Left = append(b.Left, t.equivClasses[i]...)
	}
	sortHandles(b.Left)
	sortHandles(b.Right)
	return b
}
