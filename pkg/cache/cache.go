// Package cache memoizes partial-order alignments. Repetitive assembly
// graphs hand the aligner the same terminus sequences over and over (shared
// adapters, repeat copies, symmetric bubbles); keying the aligned subgraph by
// the ordered oriented inputs and the scoring scheme skips the repeated
// dynamic programming.
//
// An entry is a pure function of its key: the aligner is deterministic, so a
// stored alignment never goes stale and there is no expiry. The lifecycle
// concern is size, handled by pruning the least-recently-used entries, and
// format drift between releases, handled by a version stamp that invalidates
// the whole store.
package cache

import "context"

// Store persists aligned subgraphs keyed by their alignment inputs.
type Store interface {
	// Get retrieves the serialized alignment for key. The second result
	// reports a hit; a miss is not an error.
	Get(ctx context.Context, key AlignmentKey) ([]byte, bool, error)

	// Put stores the serialized alignment for key, replacing any previous
	// entry.
	Put(ctx context.Context, key AlignmentKey, data []byte) error

	// Close releases any resources.
	Close() error
}
