package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gfatools/getblunted/pkg/poa"
)

func testKey(seqs ...string) AlignmentKey {
	var inputs []poa.Input
	for _, s := range seqs {
		inputs = append(inputs, poa.Input{Sequence: []byte(s)})
	}
	return NewAlignmentKey(inputs, poa.DefaultScores())
}

func TestAlignmentKey_Deterministic(t *testing.T) {
	a := testKey("ACGT", "ACTT").Digest()
	b := testKey("ACGT", "ACTT").Digest()
	if a != b {
		t.Errorf("Digest() is not deterministic: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("Digest() length = %d, want 64", len(a))
	}
}

func TestAlignmentKey_Distinguishes(t *testing.T) {
	base := testKey("ACGT", "ACTT").Digest()

	if got := testKey("ACGT", "ACTA").Digest(); got == base {
		t.Error("different sequences should produce different digests")
	}
	if got := testKey("ACTT", "ACGT").Digest(); got == base {
		t.Error("input order is part of the key")
	}
	// Length-prefixed encoding: regrouping the same bases must not collide.
	if testKey("AC", "GT").Digest() == testKey("ACG", "T").Digest() {
		t.Error("regrouped sequences should produce different digests")
	}
	// Orientation is part of the key.
	flipped := NewAlignmentKey([]poa.Input{
		{Sequence: []byte("ACGT"), Reversed: true},
		{Sequence: []byte("ACTT")},
	}, poa.DefaultScores())
	if flipped.Digest() == base {
		t.Error("orientation flags are part of the key")
	}
	// So is the scoring scheme.
	rescored := NewAlignmentKey([]poa.Input{
		{Sequence: []byte("ACGT")},
		{Sequence: []byte("ACTT")},
	}, poa.Scores{Match: 1, Mismatch: -1, Gap: -1})
	if rescored.Digest() == base {
		t.Error("scores are part of the key")
	}
}

func TestDirStore_PutGet(t *testing.T) {
	s, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore() error: %v", err)
	}
	ctx := context.Background()
	key := testKey("GT", "GT")

	if err := s.Put(ctx, key, []byte("aligned")); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	data, hit, err := s.Get(ctx, key)
	if err != nil || !hit {
		t.Fatalf("Get() = %v, hit=%v", err, hit)
	}
	if string(data) != "aligned" {
		t.Errorf("Get() = %q, want %q", data, "aligned")
	}
}

func TestDirStore_Miss(t *testing.T) {
	s, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore() error: %v", err)
	}
	if _, hit, err := s.Get(context.Background(), testKey("AAAA")); err != nil || hit {
		t.Errorf("Get() on an absent key = (hit=%v, %v), want clean miss", hit, err)
	}
}

func TestDirStore_Overwrite(t *testing.T) {
	s, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore() error: %v", err)
	}
	ctx := context.Background()
	key := testKey("GT")
	_ = s.Put(ctx, key, []byte("old"))
	if err := s.Put(ctx, key, []byte("new")); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	data, _, _ := s.Get(ctx, key)
	if string(data) != "new" {
		t.Errorf("Get() after overwrite = %q, want %q", data, "new")
	}
}

func TestDirStore_VersionMismatchEmptiesStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDirStore(dir)
	if err != nil {
		t.Fatalf("NewDirStore() error: %v", err)
	}
	ctx := context.Background()
	_ = s.Put(ctx, testKey("GT"), []byte("x"))

	// Simulate a store written by an older release.
	if err := os.WriteFile(filepath.Join(dir, versionFile), []byte("poa-0"), 0644); err != nil {
		t.Fatal(err)
	}

	s2, err := NewDirStore(dir)
	if err != nil {
		t.Fatalf("NewDirStore() reopen error: %v", err)
	}
	if _, hit, _ := s2.Get(ctx, testKey("GT")); hit {
		t.Error("entries from a different format version should be discarded")
	}
	stamp, _ := os.ReadFile(filepath.Join(dir, versionFile))
	if string(stamp) != formatVersion {
		t.Errorf("version stamp = %q, want %q", stamp, formatVersion)
	}
}

func TestDirStore_Prune(t *testing.T) {
	s, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore() error: %v", err)
	}
	ctx := context.Background()

	now := time.Now()
	keys := []AlignmentKey{testKey("AA"), testKey("CC"), testKey("GG")}
	for i, key := range keys {
		if err := s.Put(ctx, key, []byte("x")); err != nil {
			t.Fatal(err)
		}
		// Distinct, increasing use times: AA oldest, GG newest.
		used := now.Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(s.entryPath(key.Digest()), used, used); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.Prune(2); err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if n, _ := s.Len(); n != 2 {
		t.Fatalf("Len() after prune = %d, want 2", n)
	}
	if _, hit, _ := s.Get(ctx, keys[0]); hit {
		t.Error("the least-recently-used entry should be gone")
	}
	if _, hit, _ := s.Get(ctx, keys[2]); !hit {
		t.Error("the most-recently-used entry should survive")
	}
}

func TestNullStore(t *testing.T) {
	s := NewNullStore()
	ctx := context.Background()
	key := testKey("GT")
	if err := s.Put(ctx, key, []byte("x")); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if _, hit, _ := s.Get(ctx, key); hit {
		t.Error("null store should never hit")
	}
}
