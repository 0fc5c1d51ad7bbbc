package install

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"resourcehub/internal/logging"
	"resourcehub/internal/model"
)

// BatchReport summarizes a batch install: one Outcome per planned resource,
// in plan order, plus aggregate counts. ID identifies this run in logs and
// in a RollbackReport produced from it.
type BatchReport struct {
	ID        string
	Outcomes  []Outcome
	Installed int
	Skipped   int
	Blocked   int
	Failed    int
}

// InstallBatch executes plan with bounded parallelism, respecting the
// plan's topological order: a resource is only attempted once every
// required dependency ahead of it in the plan has installed or was already
// installed. A resource whose required dependency failed is marked
// BlockedByDependency and never attempted, matching spec.md §4.7's
// best-effort batch semantics (grounded on the teacher's AgentSynchronizer,
// which tolerates per-item failure without aborting the batch).
func (in *Installer) InstallBatch(ctx context.Context, plan *model.InstallPlan, resources map[string]*model.Resource, forced bool, parallelism int, sink Sink) *BatchReport {
	sink = sinkOrNoop(sink)
	levels := levelize(plan, resources)

	outcomeByID := make(map[string]Outcome, len(plan.Entries))
	failedOrBlocked := make(map[string]bool)

	for _, level := range levels {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(parallelism)
		results := make([]Outcome, len(level))

		for i, id := range level {
			i, id := i, id
			res, ok := resources[id]
			if !ok {
				continue
			}
			if blockingAncestor := firstFailedRequiredDep(res, failedOrBlocked); blockingAncestor != "" {
				results[i] = Outcome{ID: id, Event: EventFailed, Blocked: true}
				continue
			}
			g.Go(func() error {
				results[i] = in.InstallOne(gctx, res, forced, sink)
				return nil
			})
		}
		g.Wait()

		for _, o := range results {
			if o.ID == "" {
				continue
			}
			outcomeByID[o.ID] = o
			if o.Blocked || o.Event == EventFailed {
				failedOrBlocked[o.ID] = true
			}
		}
	}

	report := &BatchReport{ID: uuid.New().String()}
	for _, e := range plan.Entries {
		o, ok := outcomeByID[e.ID]
		if !ok {
			o = Outcome{ID: e.ID, Event: EventFailed, Blocked: true}
		}
		report.Outcomes = append(report.Outcomes, o)
		switch {
		case o.Blocked:
			report.Blocked++
		case o.Skipped:
			report.Skipped++
		case o.Event == EventInstalled:
			report.Installed++
		default:
			report.Failed++
		}
	}

	logging.Get(logging.CategoryInstall).Info(
		"batch %s complete: %d installed, %d skipped, %d blocked, %d failed",
		report.ID, report.Installed, report.Skipped, report.Blocked, report.Failed)

	return report
}

// firstFailedRequiredDep returns the id of res's first required dependency
// found in failed, or "" if none of its required dependencies failed.
func firstFailedRequiredDep(res *model.Resource, failed map[string]bool) string {
	for _, dep := range res.Dependencies.Required {
		if failed[dep] {
			return dep
		}
	}
	return ""
}

// levelize groups plan's entries into waves: wave N contains every entry
// whose required dependencies (restricted to the plan) all appear in
// waves before N. Entries within a wave carry no required-dependency
// relationship to each other and can install concurrently.
func levelize(plan *model.InstallPlan, resources map[string]*model.Resource) [][]string {
	inPlan := make(map[string]bool, len(plan.Entries))
	for _, e := range plan.Entries {
		inPlan[e.ID] = true
	}

	levelOf := make(map[string]int, len(plan.Entries))
	var order []string
	for _, e := range plan.Entries {
		order = append(order, e.ID)
	}

	for _, id := range order {
		res, ok := resources[id]
		level := 0
		if ok {
			for _, dep := range res.Dependencies.Required {
				if !inPlan[dep] {
					continue
				}
				if dl, seen := levelOf[dep]; seen && dl+1 > level {
					level = dl + 1
				}
			}
		}
		levelOf[id] = level
	}

	maxLevel := 0
	for _, l := range levelOf {
		if l > maxLevel {
			maxLevel = l
		}
	}
	levels := make([][]string, maxLevel+1)
	for _, id := range order {
		l := levelOf[id]
		levels[l] = append(levels[l], id)
	}
	for _, l := range levels {
		sort.Strings(l)
	}
	return levels
}
