package bluntify

import (
	"context"

	"github.com/gfatools/getblunted/pkg/cache"
	"github.com/gfatools/getblunted/pkg/handlegraph"
	"github.com/gfatools/getblunted/pkg/observability"
	"github.com/gfatools/getblunted/pkg/poa"
)

// alignBicliqueOverlaps aligns one biclique's terminus sequences into a POA
// subgraph. Each distinct endpoint handle contributes
// one input, named after the terminus child and its biclique side; the
// handle's orientation is the input's flip flag, and Sequence already
// returns the flipped view, so all inputs share one reading direction after
// harmonisation.
//
// This runs inside the parallel phase and only reads the graph; the aligned
// subgraph is spliced in serially afterwards.
func (b *Bluntifier) alignBicliqueOverlaps(ctx context.Context, i int) (*Subgraph, error) {
	edges := b.Bicliques.Get(i)
	if len(edges) == 0 {
		return nil, nil
	}

	sub := &Subgraph{}
	for s := range sub.PathsPerHandle {
		sub.PathsPerHandle[s] = make(map[handlegraph.Handle]PathInfo)
	}

	var inputs []poa.Input
	for _, e := range edges {
		for side, h := range [2]handlegraph.Handle{e.From, e.To} {
			if _, ok := sub.PathsPerHandle[side][h]; ok {
				continue
			}
			name := poaPathName(h.ID, side)
			inputs = append(inputs, poa.Input{
				Name:     name,
				Sequence: b.Graph.Sequence(h),
				Reversed: h.Reverse,
			})
			sub.PathsPerHandle[side][h] = PathInfo{PathName: name, BicliqueSide: side}
		}
	}

	graph, err := b.alignWithCache(ctx, inputs)
	if err != nil {
		return nil, err
	}
	sub.POA = graph
	return sub, nil
}

// alignWithCache memoizes alignments by the ordered oriented input
// sequences and the scoring scheme. Path names embed run-specific child ids,
// so cached paths are stored positionally and rebound on a hit.
func (b *Bluntifier) alignWithCache(ctx context.Context, inputs []poa.Input) (*poa.Graph, error) {
	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.Name
	}
	key := cache.NewAlignmentKey(inputs, b.opts.Scores)

	if data, hit, err := b.opts.Cache.Get(ctx, key); err == nil && hit {
		if g, ok := poa.Unmarshal(data, names); ok {
			observability.Cache().OnCacheHit(ctx, "poa")
			return g, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "poa")

	g, err := poa.Align(inputs, b.opts.Scores)
	if err != nil {
		return nil, err
	}
	if data, err := g.Marshal(); err == nil {
		observability.Cache().OnCacheSet(ctx, "poa", len(data))
		_ = b.opts.Cache.Put(ctx, key, data)
	}
	return g, nil
}
