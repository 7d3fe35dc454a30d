package cache

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// timeNow is swappable so tests can control the LRU clock.
var timeNow = time.Now

// formatVersion stamps the on-disk layout and the alignment wire format. A
// store written by a different version is discarded wholesale on open:
// entries are content-addressed, so there is nothing worth migrating.
const formatVersion = "poa-1"

// versionFile holds the format stamp at the store root.
const versionFile = "VERSION"

// entrySuffix marks alignment entries; anything else in the directory is
// left alone.
const entrySuffix = ".poa"

// DirStore is a directory of memoized alignments, one file per entry, named
// by the key digest. Entries are fanned out under the first two digest bytes
// so large stores don't degenerate into one huge directory. Writes go
// through a temp file and rename, so a crashed run never leaves a torn entry
// for the next one to read.
type DirStore struct {
	dir string
}

// NewDirStore opens (or creates) an alignment store in dir. A store written
// under a different format version is emptied first.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	s := &DirStore{dir: dir}
	if err := s.checkVersion(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves the alignment stored for key.
func (s *DirStore) Get(ctx context.Context, key AlignmentKey) ([]byte, bool, error) {
	data, err := os.ReadFile(s.entryPath(key.Digest()))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	// Touch for the LRU ordering Prune uses; best effort.
	now := timeNow()
	_ = os.Chtimes(s.entryPath(key.Digest()), now, now)
	return data, true, nil
}

// Put stores the alignment for key.
func (s *DirStore) Put(ctx context.Context, key AlignmentKey, data []byte) error {
	path := s.entryPath(key.Digest())
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "put-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Close does nothing; the store holds no open handles between calls.
func (s *DirStore) Close() error { return nil }

// Prune drops the least-recently-used entries until at most maxEntries
// remain. Alignments for common termini stay hot through repeated runs;
// one-off alignments age out.
func (s *DirStore) Prune(maxEntries int) error {
	type entry struct {
		path string
		used int64
	}
	var entries []entry
	err := filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !strings.HasSuffix(path, entrySuffix) {
			return nil
		}
		entries = append(entries, entry{path: path, used: info.ModTime().UnixNano()})
		return nil
	})
	if err != nil {
		return err
	}
	if len(entries) <= maxEntries {
		return nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].used < entries[j].used })
	for _, e := range entries[:len(entries)-maxEntries] {
		if err := os.Remove(e.path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Len counts the stored entries.
func (s *DirStore) Len() (int, error) {
	n := 0
	err := filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() && strings.HasSuffix(path, entrySuffix) {
			n++
		}
		return nil
	})
	return n, err
}

// checkVersion verifies the format stamp, emptying a stale store.
func (s *DirStore) checkVersion() error {
	path := filepath.Join(s.dir, versionFile)
	stamp, err := os.ReadFile(path)
	if err == nil && string(stamp) == formatVersion {
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if err == nil {
		// Known-stale contents: drop every entry fan-out directory.
		subdirs, err := os.ReadDir(s.dir)
		if err != nil {
			return err
		}
		for _, d := range subdirs {
			if d.IsDir() {
				if err := os.RemoveAll(filepath.Join(s.dir, d.Name())); err != nil {
					return err
				}
			}
		}
	}
	return os.WriteFile(path, []byte(formatVersion), 0644)
}

// entryPath fans a digest out as dir/<d0d1>/<digest>.poa.
func (s *DirStore) entryPath(digest string) string {
	return filepath.Join(s.dir, digest[:2], digest+entrySuffix)
}

// Ensure DirStore implements Store.
var _ Store = (*DirStore)(nil)
