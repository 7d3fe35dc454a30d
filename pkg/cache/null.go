package cache

import "context"

// NullStore disables memoization: every lookup misses and writes vanish.
// It is the default; the pipeline only pays for alignment caching when the
// user points it at a directory.
type NullStore struct{}

// NewNullStore creates a disabled store.
func NewNullStore() Store { return NullStore{} }

// Get always misses.
func (NullStore) Get(context.Context, AlignmentKey) ([]byte, bool, error) { return nil, false, nil }

// Put discards the alignment.
func (NullStore) Put(context.Context, AlignmentKey, []byte) error { return nil }

// Close does nothing.
func (NullStore) Close() error { return nil }

// Ensure NullStore implements Store.
var _ Store = NullStore{}
