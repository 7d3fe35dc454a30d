package bluntify

import (
	"github.com/gfatools/getblunted/pkg/errors"
	"github.com/gfatools/getblunted/pkg/handlegraph"
	"github.com/gfatools/getblunted/pkg/poa"
)

// spliceSubgraphs copies every biclique's aligned subgraph into the main
// graph and reconnects it. For each terminus: the copied
// path replaces the terminus node, its outer end wired to the terminus's
// surviving parent adjacency. A From-side terminus is entered from its left,
// a To-side terminus leaves to its right. Termini of overlapping-overlap
// nodes are skipped here and wired by the OO splicer. A terminus that no
// longer appears on the opposite side of its subgraph in either orientation
// is scheduled for destruction.
func (b *Bluntifier) spliceSubgraphs() error {
	for _, sub := range b.subgraphs {
		if sub == nil {
			continue
		}
		if err := b.spliceSubgraph(sub); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bluntifier) spliceSubgraph(sub *Subgraph) error {
	b.copySubgraphIn(sub.POA)

	for side := 0; side < 2; side++ {
		for handle, pinfo := range sub.PathsPerHandle[side] {
			isOOChild := b.isOONodeChild(handle.ID)
			isOOParent := b.isOONodeParent(handle.ID)

			if !isOOChild {
				path := b.Graph.Path(pinfo.PathName)
				if path == nil || len(path.Steps()) == 0 {
					return errors.New(errors.ErrCodeInternal, "missing aligned path %q", pinfo.PathName)
				}

				var parents []handlegraph.Handle
				goLeft := side == 0
				b.Graph.FollowEdges(handle, goLeft, func(h handlegraph.Handle) bool {
					if !b.toBeDestroyed[h.ID] {
						parents = append(parents, h)
					}
					return true
				})

				if len(parents) == 0 && !isOOParent {
					return errors.New(errors.ErrCodeDanglingTerminus,
						"biclique terminus does not have any parent: %d", handle.ID)
				}

				for _, parent := range parents {
					if side == 0 {
						b.Graph.CreateEdge(parent, path.Begin())
					} else {
						b.Graph.CreateEdge(path.Back(), parent)
					}
				}
			}

			other := sub.PathsPerHandle[1-side]
			if _, ok := other[handle]; !ok {
				if _, ok := other[handle.Flip()]; !ok {
					b.toBeDestroyed[handle.ID] = true
				}
			}
		}
	}
	return nil
}

// copySubgraphIn materialises an aligned subgraph in the main graph with
// fresh node ids, carrying over edges and the labelled paths.
func (b *Bluntifier) copySubgraphIn(g *poa.Graph) {
	idMap := make(map[int]handlegraph.Handle, len(g.Nodes))
	ids := make([]int, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sortInts(ids)
	for _, id := range ids {
		idMap[id] = b.Graph.CreateHandle(g.Nodes[id].Seq)
	}
	for _, from := range ids {
		for _, to := range g.Out[from] {
			b.Graph.CreateEdge(idMap[from], idMap[to])
		}
	}
	for _, name := range g.PathOrder {
		p := b.Graph.CreatePath(name)
		for _, id := range g.Paths[name] {
			b.Graph.AppendStep(p, idMap[id])
		}
	}
}

// isOONodeChild reports whether the node is a free-standing overlapping
// child of an overlapping-overlap node; those are wired by the OO splicer.
func (b *Bluntifier) isOONodeChild(id handlegraph.NodeID) bool {
	parent, ok := b.childToParent[id]
	if !ok {
		return false
	}
	info, ok := b.ooNodes[parent]
	if !ok {
		return false
	}
	for _, c := range info.RightOverlap {
		if c.Handle.ID == id {
			return true
		}
	}
	return false
}

// isOONodeParent reports whether the node lies on the parent path of an
// overlapping-overlap node; such pieces may legitimately lack a parent
// adjacency during splicing.
func (b *Bluntifier) isOONodeParent(id handlegraph.NodeID) bool {
	parent, ok := b.childToParent[id]
	if !ok {
		return false
	}
	info, ok := b.ooNodes[parent]
	if !ok {
		return false
	}
	p := b.Graph.Path(handlegraph.ParentPathName(info.Parent))
	if p == nil {
		return false
	}
	for _, step := range p.Steps() {
		if step.ID == id {
			return true
		}
	}
	return false
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}
