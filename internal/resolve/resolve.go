// Package resolve builds install plans over a resource dependency graph:
// transitive closure, cycle detection, and Kahn's-algorithm topological
// ordering, adapted from the teacher's DependencyResolver.
package resolve

import (
	"sort"

	"resourcehub/internal/logging"
	"resourcehub/internal/model"
	"resourcehub/internal/rerr"
)

// Resolver computes install plans against a fixed resource set. It holds no
// state beyond the set itself — every call is self-contained, matching the
// model layer's stateless Category derivation.
type Resolver struct {
	resources map[string]*model.Resource
}

// New builds a Resolver over resources, keyed by resource id.
func New(resources map[string]*model.Resource) *Resolver {
	return &Resolver{resources: resources}
}

// Resolve computes the transitive closure of selection over required edges
// (and recommended edges too when includeRecommended is set), verifies the
// closure is acyclic, and returns a topologically ordered InstallPlan with
// lexicographic tie-breaking.
func (r *Resolver) Resolve(selection []string, includeRecommended bool) (*model.InstallPlan, error) {
	timer := logging.StartTimer(logging.CategoryResolve, "Resolve")
	defer timer.Stop()

	closure, recommendedIDs, err := r.closure(selection, includeRecommended)
	if err != nil {
		return nil, err
	}

	if cycles := r.detectCyclesIn(closure, includeRecommended); len(cycles) > 0 {
		return nil, rerr.CycleDetected(cycles)
	}

	order, err := r.topologicalOrder(closure, includeRecommended)
	if err != nil {
		return nil, err
	}

	entries := make([]model.InstallEntry, len(order))
	for i, id := range order {
		entries[i] = model.InstallEntry{
			ID:          id,
			Recommended: recommendedIDs[id],
		}
	}
	return &model.InstallPlan{Entries: entries}, nil
}

// closure computes the transitive closure of selection, iteratively (an
// explicit worklist, not recursion) so chains hundreds deep never overflow
// the call stack. It also fails fast with MissingDependency if any
// referenced id is absent from the resource set.
func (r *Resolver) closure(selection []string, includeRecommended bool) (map[string]bool, map[string]bool, error) {
	closure := make(map[string]bool)
	recommended := make(map[string]bool)
	worklist := append([]string(nil), selection...)

	for len(worklist) > 0 {
		id := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if closure[id] {
			continue
		}
		res, ok := r.resources[id]
		if !ok {
			return nil, nil, rerr.MissingDependency(id, "selection")
		}
		closure[id] = true

		for _, dep := range res.Required {
			if _, ok := r.resources[dep]; !ok {
				return nil, nil, rerr.MissingDependency(dep, id)
			}
			worklist = append(worklist, dep)
		}
		if includeRecommended {
			for _, dep := range res.Recommended {
				if _, ok := r.resources[dep]; !ok {
					return nil, nil, rerr.MissingDependency(dep, id)
				}
				recommended[dep] = true
				worklist = append(worklist, dep)
			}
		}
	}
	return closure, recommended, nil
}

func edgesFor(res *model.Resource, includeRecommended bool) []string {
	if includeRecommended {
		return res.AllDependencyIDs(true)
	}
	return res.Required
}

// detectCyclesIn runs DetectCycles restricted to the ids in closure, used
// internally by Resolve so a plan never surfaces a cycle outside the
// requested selection.
func (r *Resolver) detectCyclesIn(closure map[string]bool, includeRecommended bool) [][]string {
	subset := make(map[string]*model.Resource, len(closure))
	for id := range closure {
		subset[id] = r.resources[id]
	}
	return detectCycles(subset, includeRecommended)
}

// DetectCycles reports cycles among the given resources as lists of ids,
// rotation-invariant (the first element is the lexicographically smallest
// id in the cycle). Detection runs independently of topological ordering,
// via one iterative DFS with white/gray/black coloring, and reports the
// cycle closed by each back edge it meets, so every cyclic part of the
// graph is reported rather than just the first one Kahn's algorithm would
// stall on. It does not enumerate every simple cycle: a cycle whose edges
// reach only already-finished nodes (e.g. A->C->A alongside A->B->C->A,
// with C->B) is not listed separately.
func DetectCycles(resources map[string]*model.Resource, includeRecommended bool) [][]string {
	return detectCycles(resources, includeRecommended)
}

const (
	white = 0
	gray  = 1
	black = 2
)

type dfsFrame struct {
	node     string
	edgeIdx  int
	edges    []string
}

func detectCycles(resources map[string]*model.Resource, includeRecommended bool) [][]string {
	color := make(map[string]int, len(resources))
	var cycles [][]string
	seenCycle := make(map[string]bool)

	ids := make([]string, 0, len(resources))
	for id := range resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, start := range ids {
		if color[start] != white {
			continue
		}
		var stack []*dfsFrame
		var path []string
		color[start] = gray
		path = append(path, start)
		stack = append(stack, &dfsFrame{node: start, edges: edgesFor(resources[start], includeRecommended)})

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.edgeIdx >= len(top.edges) {
				color[top.node] = black
				path = path[:len(path)-1]
				stack = stack[:len(stack)-1]
				continue
			}
			next := top.edges[top.edgeIdx]
			top.edgeIdx++

			if _, ok := resources[next]; !ok {
				continue
			}
			switch color[next] {
			case white:
				color[next] = gray
				path = append(path, next)
				stack = append(stack, &dfsFrame{node: next, edges: edgesFor(resources[next], includeRecommended)})
			case gray:
				cycle := extractCycle(path, next)
				key := cycleKey(cycle)
				if !seenCycle[key] {
					seenCycle[key] = true
					cycles = append(cycles, cycle)
				}
			case black:
				// already fully explored, no new cycle through here
			}
		}
	}
	return cycles
}

// extractCycle returns the portion of path from repeated's first
// occurrence to the end, rotated so the lexicographically smallest id
// leads (rotation-invariant equality, per spec.md §8).
func extractCycle(path []string, repeated string) []string {
	idx := -1
	for i, n := range path {
		if n == repeated {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}
	cycle := append([]string(nil), path[idx:]...)
	return rotateToMin(cycle)
}

func rotateToMin(cycle []string) []string {
	minIdx := 0
	for i, id := range cycle {
		if id < cycle[minIdx] {
			minIdx = i
		}
	}
	return append(cycle[minIdx:], cycle[:minIdx]...)
}

func cycleKey(cycle []string) string {
	s := ""
	for _, id := range cycle {
		s += id + "\x00"
	}
	return s
}

// topologicalOrder runs Kahn's algorithm over the induced subgraph of
// closure, breaking ties lexicographically on id for deterministic output.
func (r *Resolver) topologicalOrder(closure map[string]bool, includeRecommended bool) ([]string, error) {
	inDegree := make(map[string]int, len(closure))
	dependents := make(map[string][]string)

	for id := range closure {
		if _, ok := inDegree[id]; !ok {
			inDegree[id] = 0
		}
		for _, dep := range edgesFor(r.resources[id], includeRecommended) {
			if !closure[dep] {
				continue
			}
			inDegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	var order []string
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		var newlyReady []string
		for _, dependent := range dependents[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				newlyReady = append(newlyReady, dependent)
			}
		}
		sort.Strings(newlyReady)
		queue = append(queue, newlyReady...)
		sort.Strings(queue)
	}

	if len(order) != len(closure) {
		return nil, rerr.CycleDetected(detectCycles(subsetOf(r.resources, closure), includeRecommended))
	}
	return order, nil
}

func subsetOf(all map[string]*model.Resource, ids map[string]bool) map[string]*model.Resource {
	out := make(map[string]*model.Resource, len(ids))
	for id := range ids {
		out[id] = all[id]
	}
	return out
}

// ReverseDependencies returns every resource that depends on id, directly
// or transitively, over required edges.
func (r *Resolver) ReverseDependencies(id string) []string {
	reverse := make(map[string][]string, len(r.resources))
	for rid, res := range r.resources {
		for _, dep := range res.Required {
			reverse[dep] = append(reverse[dep], rid)
		}
	}

	visited := make(map[string]bool)
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dependent := range reverse[cur] {
			if !visited[dependent] {
				visited[dependent] = true
				queue = append(queue, dependent)
			}
		}
	}

	out := make([]string, 0, len(visited))
	for rid := range visited {
		out = append(out, rid)
	}
	sort.Strings(out)
	return out
}
