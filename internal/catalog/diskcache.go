package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"resourcehub/internal/logging"
)

// diskEntry is what the on-disk cache persists per source file. It is
// opaque to callers — corruption causes a fall-through reload, never a
// crash, per spec.md §4.3.
type diskEntry struct {
	SourceMTime time.Time
	CachedAt    time.Time
	Index       *yamlIndex
	Resource    *yamlResource
}

const diskCacheTTL = 24 * time.Hour

// diskCache is the persistent, 24h-TTL parse cache keyed by the catalog
// source file's own path. It never holds application-level types (only the
// raw parsed YAML structs), keeping the loader the sole authority over
// validation.
type diskCache struct {
	dir string
}

func newDiskCache(dir string) *diskCache {
	return &diskCache{dir: dir}
}

func (d *diskCache) keyPath(sourcePath string) string {
	sum := sha256.Sum256([]byte(sourcePath))
	name := filepath.Base(sourcePath) + "-" + hex.EncodeToString(sum[:8]) + ".json"
	return filepath.Join(d.dir, name)
}

// load returns a cached entry if present, not expired, and whose recorded
// mtime matches sourcePath's current mtime. Any read or decode failure is
// treated as a cache miss and the stale file is removed.
func (d *diskCache) load(sourcePath string) (*diskEntry, bool) {
	cachePath := d.keyPath(sourcePath)
	f, err := os.Open(cachePath)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var entry diskEntry
	if err := json.NewDecoder(f).Decode(&entry); err != nil {
		logging.Get(logging.CategoryCatalog).Warn("disk cache corrupt for %s, discarding: %v", sourcePath, err)
		os.Remove(cachePath)
		return nil, false
	}

	if time.Since(entry.CachedAt) > diskCacheTTL {
		return nil, false
	}

	info, err := os.Stat(sourcePath)
	if err != nil || !info.ModTime().Equal(entry.SourceMTime) {
		return nil, false
	}

	return &entry, true
}

// store writes entry for sourcePath, best-effort: a write failure is logged
// and otherwise ignored since the disk cache is purely an optimization.
func (d *diskCache) store(sourcePath string, entry *diskEntry) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		logging.Get(logging.CategoryCatalog).Warn("cannot create disk cache dir: %v", err)
		return
	}
	info, err := os.Stat(sourcePath)
	if err != nil {
		return
	}
	entry.SourceMTime = info.ModTime()
	entry.CachedAt = time.Now()

	tmp, err := os.CreateTemp(d.dir, "tmp-*")
	if err != nil {
		return
	}
	defer os.Remove(tmp.Name())

	if err := json.NewEncoder(tmp).Encode(entry); err != nil {
		tmp.Close()
		return
	}
	if err := tmp.Close(); err != nil {
		return
	}
	os.Rename(tmp.Name(), d.keyPath(sourcePath))
}

// clear removes every entry from the disk cache. Safe to call even if the
// directory does not exist.
func (d *diskCache) clear() {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		os.Remove(filepath.Join(d.dir, e.Name()))
	}
}
