// Package catalog implements the safe YAML catalog loader: the small
// top-level index, lazy per-resource descriptors, and the two-tier cache
// (in-process LRU plus an on-disk parse cache) described in spec.md §4.3.
// It is adapted from the teacher's prompt atom loader, replacing its
// SQLite-backed ingestion with the spec's in-memory + disk cache model.
package catalog

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"resourcehub/internal/config"
	"resourcehub/internal/logging"
	"resourcehub/internal/model"
	"resourcehub/internal/rerr"
	"resourcehub/internal/security"
)

// Ref identifies a resource to load: its type (needed to build the file
// path) and id.
type Ref struct {
	Type model.Type
	ID   string
}

// Stats reports cache occupancy and hit/miss counters, an extension beyond
// spec.md's bare cache_stats() contract surfacing ristretto's own metrics.
type Stats struct {
	Entries   int64
	HitRatio  float64
	Hits      uint64
	Misses    uint64
	CostAdded uint64
}

// Loader is the catalog's safe YAML loader. It owns the in-process
// resource cache exclusively; the engine facade owns the Loader.
type Loader struct {
	base      string
	cfg       *config.EngineConfig
	mem       *ristretto.Cache[string, *model.Resource]
	disk      *diskCache
	mu        sync.RWMutex
	index     *model.CatalogIndex
	indexLoad time.Time
}

// New constructs a Loader rooted at base, a catalog directory produced by
// an external generator.
func New(base string, cfg *config.EngineConfig) (*Loader, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	mem, err := ristretto.NewCache(&ristretto.Config[string, *model.Resource]{
		NumCounters: int64(cfg.CacheEntries) * 10,
		MaxCost:     cfg.CacheSoftBytes,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("constructing resource cache: %w", err)
	}
	return &Loader{
		base: base,
		cfg:  cfg,
		mem:  mem,
		disk: newDiskCache(cfg.CacheDir()),
	}, nil
}

// LoadIndex reads <base>/index.yaml, bounded by size and parse timeout,
// and caches the result in memory until ClearCache is called.
func (l *Loader) LoadIndex() (*model.CatalogIndex, error) {
	l.mu.RLock()
	if l.index != nil {
		idx := l.index
		l.mu.RUnlock()
		return idx, nil
	}
	l.mu.RUnlock()

	timer := logging.StartTimer(logging.CategoryCatalog, "LoadIndex")
	defer timer.Stop()

	path := filepath.Join(l.base, "index.yaml")
	raw, err := l.readYAMLIndex(path)
	if err != nil {
		return nil, err
	}

	idx := &model.CatalogIndex{
		Total:       raw.Total,
		Version:     raw.Version,
		Types:       make(map[model.Type]int, len(raw.Types)),
		ResourceIDs: make(map[model.Type][]string, len(model.AllTypes())),
	}
	for t, c := range raw.Types {
		idx.Types[model.Type(t)] = c
	}

	// index.yaml carries no id list (spec.md §6: total/types/version is the
	// whole field set), so every type's ids are discovered by listing its
	// catalog directory rather than trusting a non-existent index field.
	for _, typ := range model.AllTypes() {
		ids, err := l.ListResourceIDs(typ)
		if err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			idx.ResourceIDs[typ] = ids
		}
	}

	l.mu.Lock()
	l.index = idx
	l.indexLoad = time.Now()
	l.mu.Unlock()

	return idx, nil
}

func (l *Loader) readYAMLIndex(path string) (*yamlIndex, error) {
	if entry, ok := l.disk.load(path); ok && entry.Index != nil {
		return entry.Index, nil
	}

	if _, err := security.CheckFileSize(path, l.cfg.MaxCatalogBytes); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, rerr.NotFound("catalog index not found at %s", path)
		}
		return nil, err
	}

	raw, err := security.ParseWithTimeout(l.cfg.ParseTimeout, path, func() (*yamlIndex, error) {
		var idx yamlIndex
		if err := yaml.Unmarshal(data, &idx); err != nil {
			return nil, rerr.InvalidSchema("", "malformed index.yaml: %v", err)
		}
		return &idx, nil
	})
	if err != nil {
		return nil, err
	}

	l.disk.store(path, &diskEntry{Index: raw})
	return raw, nil
}

// ListResourceIDs returns every resource id of the given type present
// under <base>/<type>s, derived by listing the directory and stripping the
// ".yaml" suffix. This is the catalog's sole resource-discovery path:
// index.yaml names no id list (spec.md §6), so a populated catalog is only
// ever found by looking at what's actually on disk.
func (l *Loader) ListResourceIDs(typ model.Type) ([]string, error) {
	dir := filepath.Join(l.base, typ.PluralDir())
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".yaml"))
	}
	sort.Strings(ids)
	return ids, nil
}

// LoadResource resolves (type, id) to a validated Resource: it validates
// type and id against their fixed grammars (defense in depth against
// traversal), builds the on-disk path, validates containment, checks size,
// parses under a timeout, and constructs the Resource.
func (l *Loader) LoadResource(typ model.Type, id string) (*model.Resource, error) {
	cacheKey := string(typ) + "/" + id
	if r, ok := l.mem.Get(cacheKey); ok {
		return r, nil
	}

	timer := logging.StartTimer(logging.CategoryCatalog, "LoadResource")
	defer timer.Stop()

	if !isKnownType(typ) {
		return nil, rerr.InvalidSchema("type", "unknown resource type %q", typ)
	}
	if !model.ValidID(id) {
		return nil, rerr.PathTraversal(id)
	}

	relative := filepath.Join(typ.PluralDir(), id+".yaml")
	resolved, err := security.ValidatePath(relative, l.base)
	if err != nil {
		return nil, err
	}

	raw, err := l.readYAMLResource(resolved)
	if err != nil {
		return nil, err
	}

	resource, err := buildResource(raw)
	if err != nil {
		return nil, err
	}

	// install_path is validated structurally now (catches disguised traversal
	// at load time per scenario S5); the installer re-validates against the
	// actual per-user base immediately before writing.
	if _, err := security.ValidatePath(resource.InstallPath, l.base); err != nil {
		return nil, err
	}

	// The source URL's scheme and host are checked at load time; the
	// address (SSRF) check is left to the installer's ValidateURL and dialer.
	u, err := url.Parse(resource.Source.URL)
	if err != nil || u.Scheme != "https" {
		return nil, rerr.UnsafeURL(resource.Source.URL, "source url must be https")
	}
	hostAllowed := false
	for _, h := range l.cfg.URLAllowlist {
		if strings.EqualFold(h, u.Hostname()) {
			hostAllowed = true
			break
		}
	}
	if !hostAllowed {
		return nil, rerr.UnsafeURL(resource.Source.URL, "host not in allowlist: "+u.Hostname())
	}

	l.mem.Set(cacheKey, resource, int64(len(resource.Name)+len(resource.Description)+256))
	l.mem.Wait()
	return resource, nil
}

func (l *Loader) readYAMLResource(path string) (*yamlResource, error) {
	if entry, ok := l.disk.load(path); ok && entry.Resource != nil {
		return entry.Resource, nil
	}

	if _, err := security.CheckFileSize(path, l.cfg.MaxCatalogBytes); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, rerr.NotFound("resource file not found: %s", path)
		}
		return nil, err
	}

	raw, err := security.ParseWithTimeout(l.cfg.ParseTimeout, path, func() (*yamlResource, error) {
		var r yamlResource
		if err := yaml.Unmarshal(data, &r); err != nil {
			return nil, rerr.InvalidSchema("", "malformed resource yaml %s: %v", path, err)
		}
		return &r, nil
	})
	if err != nil {
		return nil, err
	}

	l.disk.store(path, &diskEntry{Resource: raw})
	return raw, nil
}

func isKnownType(t model.Type) bool {
	for _, known := range model.AllTypes() {
		if known == t {
			return true
		}
	}
	return false
}

// buildResource validates a parsed yamlResource against spec.md §3's field
// invariants (id grammar, name, install_path presence, known type).
// LoadResource then checks install_path containment and that the source URL
// is https and host-allowlisted.
func buildResource(raw *yamlResource) (*model.Resource, error) {
	if !model.ValidID(raw.ID) {
		return nil, rerr.InvalidSchema("id", "invalid resource id %q", raw.ID)
	}
	if raw.Name == "" {
		return nil, rerr.InvalidSchema("name", "name is required for %s", raw.ID)
	}
	if raw.InstallPath == "" {
		return nil, rerr.InvalidSchema("install_path", "install_path is required for %s", raw.ID)
	}

	typ := model.Type(raw.Type)
	if !isKnownType(typ) {
		return nil, rerr.InvalidSchema("type", "unknown resource type %q for %s", raw.Type, raw.ID)
	}

	r := &model.Resource{
		ID:          raw.ID,
		Type:        typ,
		Name:        raw.Name,
		Description: raw.Description,
		Summary:     raw.Summary,
		Version:     raw.Version,
		Author:      raw.Author,
		Source: model.Source{
			URL:    raw.Source.URL,
			SHA256: raw.Source.SHA256,
			Repo:   raw.Source.Repo,
			Path:   raw.Source.Path,
		},
		InstallPath: raw.InstallPath,
		Metadata:    raw.Metadata,
	}
	if raw.Dependencies != nil {
		r.Required = raw.Dependencies.Required
		r.Recommended = raw.Dependencies.Recommended
	}
	return r, nil
}

// LoadResourcesAsync loads refs concurrently up to parallelism, returning
// results in input order. A single ref failing does not abort the others;
// its slot in the result holds nil and the first error encountered across
// all refs is returned alongside the partial results.
func (l *Loader) LoadResourcesAsync(refs []Ref, parallelism int) ([]*model.Resource, error) {
	if parallelism <= 0 {
		parallelism = l.cfg.InstallParallelism
	}
	results := make([]*model.Resource, len(refs))

	g := new(errgroup.Group)
	g.SetLimit(parallelism)

	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			r, err := l.LoadResource(ref.Type, ref.ID)
			if err != nil {
				return fmt.Errorf("loading %s/%s: %w", ref.Type, ref.ID, err)
			}
			results[i] = r
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

// ClearCache drops the in-memory resource cache and the loaded index, but
// leaves the on-disk parse cache intact (it self-invalidates by mtime).
func (l *Loader) ClearCache() {
	l.mem.Clear()
	l.mu.Lock()
	l.index = nil
	l.mu.Unlock()
}

// ClearDiskCache removes every entry from the on-disk parse cache.
func (l *Loader) ClearDiskCache() {
	l.disk.clear()
}

// CacheStats reports the in-process cache's current occupancy and hit
// ratio, via ristretto's built-in metrics.
func (l *Loader) CacheStats() Stats {
	m := l.mem.Metrics
	if m == nil {
		return Stats{}
	}
	return Stats{
		Entries:   m.KeysAdded() - m.KeysEvicted(),
		HitRatio:  m.Ratio(),
		Hits:      m.Hits(),
		Misses:    m.Misses(),
		CostAdded: m.CostAdded(),
	}
}
