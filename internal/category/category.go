// Package category builds the hierarchical categorization of a resource
// set, derived entirely from each resource's id, per spec.md §4.5.
package category

import (
	"sort"

	"resourcehub/internal/model"
)

// Statistics summarizes a built category tree.
type Statistics struct {
	TotalCategories int
	TotalResources  int
	Largest         string
	LargestCount    int
	Smallest        string
	SmallestCount   int
}

// Engine holds an immutable snapshot of a resource set's categorization:
// the tree plus the two flat indexes filter() looks up in O(1).
type Engine struct {
	tree           model.CategoryTree
	byPrimary      map[string][]*model.Resource
	byPrimarySecon map[string][]*model.Resource
}

// Build produces a CategoryTree and its filter indexes in a single O(n)
// pass over resources.
func Build(resources []*model.Resource) *Engine {
	e := &Engine{
		tree:           make(model.CategoryTree),
		byPrimary:      make(map[string][]*model.Resource),
		byPrimarySecon: make(map[string][]*model.Resource),
	}

	for _, r := range resources {
		cat := model.FromResourceID(r.ID)

		node, ok := e.tree[cat.Primary]
		if !ok {
			node = &model.CategoryNode{Children: make(map[string]int)}
			e.tree[cat.Primary] = node
		}
		node.Count++
		node.Members = append(node.Members, r.ID)
		if cat.Secondary != "" {
			node.Children[cat.Secondary]++
		}

		e.byPrimary[cat.Primary] = append(e.byPrimary[cat.Primary], r)
		if cat.Secondary != "" {
			e.byPrimarySecon[cat.Key()] = append(e.byPrimarySecon[cat.Key()], r)
		}
	}

	for _, node := range e.tree {
		sort.Strings(node.Members)
	}

	return e
}

// Tree returns the built CategoryTree.
func (e *Engine) Tree() model.CategoryTree {
	return e.tree
}

// Filter returns every resource under primary, optionally narrowed to
// secondary, via a prebuilt index lookup.
func (e *Engine) Filter(primary string, secondary string) []*model.Resource {
	if secondary == "" {
		return append([]*model.Resource(nil), e.byPrimary[primary]...)
	}
	key := model.Category{Primary: primary, Secondary: secondary}.Key()
	return append([]*model.Resource(nil), e.byPrimarySecon[key]...)
}

// Statistics reports counts per category and the largest/smallest.
func (e *Engine) Statistics() Statistics {
	stats := Statistics{TotalCategories: len(e.tree)}

	primaries := make([]string, 0, len(e.tree))
	for primary := range e.tree {
		primaries = append(primaries, primary)
	}
	sort.Strings(primaries)

	for i, primary := range primaries {
		node := e.tree[primary]
		stats.TotalResources += node.Count
		if i == 0 || node.Count > stats.LargestCount {
			stats.Largest, stats.LargestCount = primary, node.Count
		}
		if i == 0 || node.Count < stats.SmallestCount {
			stats.Smallest, stats.SmallestCount = primary, node.Count
		}
	}
	return stats
}
