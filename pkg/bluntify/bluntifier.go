package bluntify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gfatools/getblunted/pkg/adjacency"
	"github.com/gfatools/getblunted/pkg/biclique"
	"github.com/gfatools/getblunted/pkg/cache"
	"github.com/gfatools/getblunted/pkg/gfa"
	"github.com/gfatools/getblunted/pkg/handlegraph"
	"github.com/gfatools/getblunted/pkg/observability"
	"github.com/gfatools/getblunted/pkg/poa"
)

// Options tunes the pipeline.
type Options struct {
	// Workers bounds the parallel phases (biclique covers, alignments).
	// Zero means GOMAXPROCS.
	Workers int
	// ExactCoverBound gates the exact biclique cover; see biclique.Cover.
	ExactCoverBound int
	// Scores parameterises the partial-order aligner.
	Scores poa.Scores
	// Cache memoizes alignments; nil disables caching.
	Cache cache.Store
	// DebugDir, when set, receives a GFA snapshot after each phase while the
	// graph is small enough to eyeball.
	DebugDir string
	// Logger receives stage progress; nil uses the default logger.
	Logger *log.Logger
}

// ValidateAndSetDefaults fills zero values with defaults.
func (o *Options) ValidateAndSetDefaults() {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.ExactCoverBound == 0 {
		o.ExactCoverBound = biclique.DefaultExactBound
	}
	if o.Scores == (poa.Scores{}) {
		o.Scores = poa.DefaultScores()
	}
	if o.Cache == nil {
		o.Cache = cache.NewNullStore()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

// Result summarises a pipeline run.
type Result struct {
	RunID          string
	Components     int
	Bicliques      int
	NodesIn        int
	NodesOut       int
	EdgesOut       int
	OverlappingOOs int
	Duration       time.Duration
}

// Bluntifier owns the pipeline state. The graph, overlap map and biclique
// store are shared across phases; parallel phases only read them, and the
// one append each worker performs goes through the writer lock.
type Bluntifier struct {
	Graph     *handlegraph.Graph
	IDMap     *gfa.IncrementalIDMap
	Overlaps  *handlegraph.OverlapMap
	Bicliques *Bicliques

	nodeToBicliqueEdge map[handlegraph.NodeID][]BicliqueEdgeIndex
	parentToChildren   map[handlegraph.NodeID][]handlegraph.Handle
	childToParent      map[handlegraph.NodeID]handlegraph.NodeID
	ooNodes            map[handlegraph.NodeID]*OverlappingNodeInfo
	subgraphs          []*Subgraph
	toBeDestroyed      map[handlegraph.NodeID]bool
	provenance         map[handlegraph.NodeID]map[handlegraph.NodeID]ProvenanceInfo

	opts Options
	mu   sync.Mutex // writer lock for the parallel phases
}

// New creates a Bluntifier over a freshly read graph.
func New(graph *handlegraph.Graph, idMap *gfa.IncrementalIDMap, overlaps *handlegraph.OverlapMap, opts Options) *Bluntifier {
	opts.ValidateAndSetDefaults()
	return &Bluntifier{
		Graph:              graph,
		IDMap:              idMap,
		Overlaps:           overlaps,
		Bicliques:          &Bicliques{},
		nodeToBicliqueEdge: make(map[handlegraph.NodeID][]BicliqueEdgeIndex),
		parentToChildren:   make(map[handlegraph.NodeID][]handlegraph.Handle),
		childToParent:      make(map[handlegraph.NodeID]handlegraph.NodeID),
		ooNodes:            make(map[handlegraph.NodeID]*OverlappingNodeInfo),
		toBeDestroyed:      make(map[handlegraph.NodeID]bool),
		provenance:         make(map[handlegraph.NodeID]map[handlegraph.NodeID]ProvenanceInfo),
		opts:               opts,
	}
}

// Run executes the whole pipeline. The graph ends blunt: every surviving
// edge has a zero-length overlap.
func (b *Bluntifier) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	logger := b.opts.Logger
	result := &Result{
		RunID:   uuid.NewString(),
		NodesIn: b.Graph.NodeCount(),
	}
	logger.Debug("pipeline start", "run", result.RunID, "nodes", result.NodesIn, "edges", b.Graph.EdgeCount())

	components := adjacency.Components(b.Graph)
	result.Components = len(components)
	logger.Info("adjacency components", "total", len(components))
	if logger.GetLevel() <= log.DebugLevel {
		for i, comp := range components {
			sides := make([]string, len(comp.Sides))
			for j, h := range comp.Sides {
				sides[j] = h.String()
			}
			logger.Debug("component", "index", i, "size", comp.Size(), "sides", sides)
		}
	}
	b.debugSnapshot("parsed")

	if err := b.phase(ctx, "cover", func() error {
		return b.computeBicliqueCovers(ctx, components)
	}, func() int { return b.Bicliques.Len() }); err != nil {
		return nil, err
	}
	result.Bicliques = b.Bicliques.Len()
	logger.Info("biclique cover", "bicliques", b.Bicliques.Len())
	b.logBicliques(logger)

	b.mapSpliceSitesByNode()

	dup := &duplicator{b: b}
	if err := b.phase(ctx, "duplicate", dup.duplicateAllNodeTermini,
		func() int { return len(b.childToParent) }); err != nil {
		return nil, err
	}
	result.OverlappingOOs = len(b.ooNodes)
	logger.Info("duplicated termini", "children", len(b.childToParent), "overlapping_overlaps", len(b.ooNodes))
	b.debugSnapshot("duplicated")

	b.harmonizeBicliqueOrientations()

	if err := b.phase(ctx, "align", func() error {
		return b.alignAllBicliques(ctx)
	}, func() int { return len(b.subgraphs) }); err != nil {
		return nil, err
	}
	logger.Info("aligned bicliques", "subgraphs", len(b.subgraphs))

	if err := b.phase(ctx, "splice", b.spliceSubgraphs,
		func() int { return b.Graph.EdgeCount() }); err != nil {
		return nil, err
	}
	b.debugSnapshot("spliced")

	if err := b.phase(ctx, "oo-splice", b.spliceOverlappingOverlaps,
		func() int { return len(b.ooNodes) }); err != nil {
		return nil, err
	}
	b.debugSnapshot("spliced_oo")

	if err := b.phase(ctx, "provenance", b.computeProvenance,
		func() int { return len(b.provenance) }); err != nil {
		return nil, err
	}

	for _, id := range sortedNodeIDs(b.toBeDestroyed) {
		b.Graph.DestroyHandle(id)
	}
	b.debugSnapshot("final")

	result.NodesOut = b.Graph.NodeCount()
	result.EdgesOut = b.Graph.EdgeCount()
	result.Duration = time.Since(start)
	logger.Info("bluntified",
		"nodes", result.NodesOut,
		"edges", result.EdgesOut,
		"duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

// computeBicliqueCovers covers every non-trivial adjacency component,
// components in parallel, appends serialised through the writer lock. The
// set of bicliques is deterministic; their index order depends on
// scheduling, and downstream stages only address bicliques through the
// node-to-biclique index.
func (b *Bluntifier) computeBicliqueCovers(ctx context.Context, components []*adjacency.Component) error {
	jobs := make(chan *adjacency.Component)
	errs := make(chan error, 1)
	var wg sync.WaitGroup

	for w := 0; w < b.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for comp := range jobs {
				if err := b.coverComponent(comp); err != nil {
					select {
					case errs <- err:
					default:
					}
				}
			}
		}()
	}

	for _, comp := range components {
		if comp.IsTrivial(b.Graph) {
			continue
		}
		jobs <- comp
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}

func (b *Bluntifier) coverComponent(comp *adjacency.Component) error {
	var err error
	comp.DecomposeIntoBipartiteBlocks(b.Graph, func(block *adjacency.BipartiteGraph) {
		if err != nil {
			return
		}
		cover := biclique.Cover(block, b.opts.ExactCoverBound)
		var deduped [][]handlegraph.Edge
		deduped, err = b.deduplicateAndCanonicalize(cover)
		if err != nil {
			return
		}
		b.mu.Lock()
		for _, edges := range deduped {
			b.Bicliques.Append(edges)
		}
		b.mu.Unlock()
	})
	return err
}

// deduplicateAndCanonicalize assigns every covered edge to exactly one
// biclique. Bicliques are taken largest first so a repeated edge lands in
// the larger alignment (one bigger POA absorbing more edges tends to give a
// more compact result). Edges whose overlap is empty on either side are
// already blunt and stay out of the pipeline.
func (b *Bluntifier) deduplicateAndCanonicalize(cover []biclique.Bipartition) ([][]handlegraph.Edge, error) {
	sort.SliceStable(cover, func(i, j int) bool { return cover[i].Size() > cover[j].Size() })

	seen := make(map[handlegraph.Edge]bool)
	var result [][]handlegraph.Edge
	for _, bp := range cover {
		var edges []handlegraph.Edge
		for _, l := range bp.Left {
			for _, r := range bp.Right {
				edge := handlegraph.Edge{From: l, To: r.Flip()}
				stored, alignment, err := b.Overlaps.CanonicalizeAndFind(edge)
				if err != nil {
					return nil, err
				}
				s, t := alignment.ComputeLengths()
				if s == 0 || t == 0 {
					continue
				}
				if !seen[stored] {
					seen[stored] = true
					edges = append(edges, stored)
				}
			}
		}
		if len(edges) > 0 {
			result = append(result, edges)
		}
	}
	return result, nil
}

// mapSpliceSitesByNode indexes every biclique edge by its endpoint nodes. A
// self-loop maps once.
func (b *Bluntifier) mapSpliceSitesByNode() {
	for i := 0; i < b.Bicliques.Len(); i++ {
		for j, e := range b.Bicliques.Get(i) {
			idx := BicliqueEdgeIndex{Biclique: i, Edge: j}
			b.nodeToBicliqueEdge[e.From.ID] = append(b.nodeToBicliqueEdge[e.From.ID], idx)
			if e.To.ID != e.From.ID {
				b.nodeToBicliqueEdge[e.To.ID] = append(b.nodeToBicliqueEdge[e.To.ID], idx)
			}
		}
	}
}

// alignAllBicliques runs the POA phase, bicliques in parallel. Workers only
// read the graph; results land in the subgraphs slice by index.
func (b *Bluntifier) alignAllBicliques(ctx context.Context) error {
	b.subgraphs = make([]*Subgraph, b.Bicliques.Len())
	jobs := make(chan int)
	errs := make(chan error, 1)
	var wg sync.WaitGroup

	for w := 0; w < b.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				sub, err := b.alignBicliqueOverlaps(ctx, i)
				if err != nil {
					select {
					case errs <- err:
					default:
					}
					continue
				}
				b.mu.Lock()
				b.subgraphs[i] = sub
				b.mu.Unlock()
			}
		}()
	}
	for i := 0; i < b.Bicliques.Len(); i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}

// phase runs one pipeline stage between observability hooks.
func (b *Bluntifier) phase(ctx context.Context, name string, fn func() error, items func() int) error {
	observability.Pipeline().OnPhaseStart(ctx, name)
	start := time.Now()
	err := fn()
	observability.Pipeline().OnPhaseComplete(ctx, name, items(), time.Since(start), err)
	return err
}

func (b *Bluntifier) registerChild(child handlegraph.Handle, parent handlegraph.NodeID) {
	b.childToParent[child.ID] = parent
	b.parentToChildren[parent] = append(b.parentToChildren[parent], child)
}

func (b *Bluntifier) logBicliques(logger *log.Logger) {
	if logger.GetLevel() > log.DebugLevel {
		return
	}
	for i := 0; i < b.Bicliques.Len(); i++ {
		for _, e := range b.Bicliques.Get(i) {
			logger.Debug("biclique edge", "biclique", i, "edge", e.String())
		}
	}
}

// debugSnapshot writes the current graph as GFA into the debug directory,
// mirroring the original tooling's habit of dumping each phase while the
// graph is small.
func (b *Bluntifier) debugSnapshot(phase string) {
	if b.opts.DebugDir == "" || b.Graph.NodeCount() >= 200 {
		return
	}
	path := filepath.Join(b.opts.DebugDir, fmt.Sprintf("bluntify_%s.gfa", phase))
	f, err := os.Create(path)
	if err != nil {
		b.opts.Logger.Warn("debug snapshot failed", "path", path, "err", err)
		return
	}
	defer f.Close()
	if err := gfa.Write(f, b.Graph); err != nil {
		b.opts.Logger.Warn("debug snapshot failed", "path", path, "err", err)
	}
}

func sortedNodeIDs(set map[handlegraph.NodeID]bool) []handlegraph.NodeID {
	ids := make([]handlegraph.NodeID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
