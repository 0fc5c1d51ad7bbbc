// Package engine exposes the resource engine's full external surface
// (spec.md §6) as a single facade type, wiring together the catalog
// loader, search index, category index, dependency resolver, and
// installer. It is the only package a CLI or other caller should depend
// on directly. Grounded on the teacher's cmd/nerd coordination layer,
// which gathers its subsystems (perception, prompt, mangle) behind one
// entry point rather than exposing them piecemeal.
package engine

import (
	"context"
	"sort"
	"sync"

	"resourcehub/internal/catalog"
	"resourcehub/internal/category"
	"resourcehub/internal/config"
	"resourcehub/internal/install"
	"resourcehub/internal/logging"
	"resourcehub/internal/model"
	"resourcehub/internal/resolve"
	"resourcehub/internal/rerr"
	"resourcehub/internal/search"
)

// Engine is a loaded catalog plus its derived search and category
// indexes, ready to plan and execute installs. One Engine corresponds to
// one load_catalog call; Reload (and Watch, through it) replaces its loaded
// set and derived indexes in place when the catalog changes.
type Engine struct {
	cfg    *config.EngineConfig
	base   string
	loader *catalog.Loader
	index  *model.CatalogIndex

	mu          sync.RWMutex
	resources   map[string]*model.Resource // keyed by id
	searchIdx   *search.Engine
	categoryIdx *category.Engine

	installer *install.Installer
}

// LoadCatalog reads the catalog at base (index plus every resource it
// lists) and builds the search and category indexes over the full set,
// per spec.md §6.
func LoadCatalog(base string, cfg *config.EngineConfig) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	loader, err := catalog.New(base, cfg)
	if err != nil {
		return nil, err
	}

	idx, err := loader.LoadIndex()
	if err != nil {
		return nil, err
	}

	var refs []catalog.Ref
	for typ, ids := range idx.ResourceIDs {
		for _, id := range ids {
			refs = append(refs, catalog.Ref{Type: typ, ID: id})
		}
	}

	resources, err := loader.LoadResourcesAsync(refs, cfg.InstallParallelism)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Resource, len(resources))
	var flat []*model.Resource
	for _, r := range resources {
		if r == nil {
			continue
		}
		byID[r.ID] = r
		flat = append(flat, r)
	}

	e := &Engine{
		cfg:         cfg,
		base:        base,
		loader:      loader,
		index:       idx,
		resources:   byID,
		searchIdx:   search.Build(flat),
		categoryIdx: category.Build(flat),
		installer:   install.New(cfg),
	}
	return e, nil
}

// Reload re-reads the index and every resource it lists, replacing the
// engine's loaded set and derived indexes in place. Called automatically
// by Watch on a relevant filesystem event; safe to call directly too.
func (e *Engine) Reload() error {
	idx, err := e.loader.LoadIndex()
	if err != nil {
		return err
	}

	var refs []catalog.Ref
	for typ, ids := range idx.ResourceIDs {
		for _, id := range ids {
			refs = append(refs, catalog.Ref{Type: typ, ID: id})
		}
	}

	resources, err := e.loader.LoadResourcesAsync(refs, e.cfg.InstallParallelism)
	if err != nil {
		return err
	}

	byID := make(map[string]*model.Resource, len(resources))
	var flat []*model.Resource
	for _, r := range resources {
		if r == nil {
			continue
		}
		byID[r.ID] = r
		flat = append(flat, r)
	}

	e.mu.Lock()
	e.index = idx
	e.resources = byID
	e.searchIdx = search.Build(flat)
	e.categoryIdx = category.Build(flat)
	e.mu.Unlock()
	return nil
}

// Watch blocks, reloading the catalog whenever a tracked YAML file under
// base changes, until ctx is cancelled. Reload errors are logged and do
// not stop the watch loop, so a transient write (editor saving in two
// steps) does not require restarting the watcher.
func (e *Engine) Watch(ctx context.Context) error {
	w, err := catalog.NewWatcher(e.loader)
	if err != nil {
		return err
	}
	log := logging.Get(logging.CategoryCatalog)
	w.OnChange(func(path string) {
		if err := e.Reload(); err != nil {
			log.Error("reloading catalog after change to %s: %v", path, err)
		}
	})
	return w.Run(ctx)
}

// Index returns the catalog's top-level summary, as loaded.
func (e *Engine) Index() *model.CatalogIndex {
	return e.index
}

// List returns every resource of the given type, or every resource if
// typ is the empty string, sorted by id for a deterministic order.
func (e *Engine) List(typ model.Type) []*model.Resource {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*model.Resource, 0, len(e.resources))
	for _, r := range e.resources {
		if typ != "" && r.Type != typ {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Search runs a query against the loaded catalog's exact/prefix/fuzzy
// ranked search index.
func (e *Engine) Search(query string, opts search.Options) []search.Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.searchIdx.Search(query, opts)
}

// Categories returns the full category tree built from the loaded
// catalog.
func (e *Engine) Categories() model.CategoryTree {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.categoryIdx.Tree()
}

// Filter returns every resource under the given primary (and optional
// secondary) category.
func (e *Engine) Filter(primary, secondary string) []*model.Resource {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.categoryIdx.Filter(primary, secondary)
}

// PlanInstall resolves ids (and their transitive dependencies) into an
// ordered InstallPlan, failing with MissingDependency or CycleDetected
// per spec.md §4.6.
func (e *Engine) PlanInstall(ids []string, includeRecommended bool) (*model.InstallPlan, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	r := resolve.New(e.resources)
	plan, err := r.Resolve(ids, includeRecommended)
	if err != nil {
		return nil, err
	}

	for i, entry := range plan.Entries {
		res, ok := e.resources[entry.ID]
		if !ok {
			return nil, rerr.NotFound("resource %s not found in loaded catalog", entry.ID)
		}
		if _, statErr := installedSHA(e.cfg, res); statErr == nil {
			plan.Entries[i].AlreadyInstalled = true
		}
	}
	return plan, nil
}

// Install executes plan with the given parallelism, reporting progress to
// sink if non-nil.
func (e *Engine) Install(ctx context.Context, plan *model.InstallPlan, parallelism int, sink install.Sink) *install.BatchReport {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if parallelism <= 0 {
		parallelism = e.cfg.InstallParallelism
	}
	logging.Get(logging.CategoryInstall).Info("installing %d resources with parallelism %d", len(plan.Entries), parallelism)
	return e.installer.InstallBatch(ctx, plan, e.resources, false, parallelism, sink)
}

// Rollback reverses a just-executed batch: paths it created are removed,
// paths it overwrote are restored from their preserved ".prev" sibling.
func (e *Engine) Rollback(report *install.BatchReport) *install.RollbackReport {
	return install.RollbackBatch(report)
}

// Installed returns the per-user install history, in append order.
func (e *Engine) Installed() ([]model.InstallRecord, error) {
	return e.installer.Installed()
}

// CompactHistory rewrites the install history keeping only the latest
// record per resource id.
func (e *Engine) CompactHistory() error {
	return e.installer.CompactHistory()
}

// GetResource returns a single loaded resource by id.
func (e *Engine) GetResource(id string) (*model.Resource, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.resources[id]
	return r, ok
}
