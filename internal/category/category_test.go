package category

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"resourcehub/internal/model"
)

func sample() []*model.Resource {
	return []*model.Resource{
		{ID: "mcp-dev-team-architect", Name: "Architect"},
		{ID: "architect", Name: "Architect"},
		{ID: "cmd-run", Name: "Run"},
		{ID: "cmd-test", Name: "Test"},
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	a := Build(sample())
	b := Build(sample())
	if diff := cmp.Diff(a.Tree(), b.Tree()); diff != "" {
		t.Errorf("tree mismatch across identical builds (-a +b):\n%s", diff)
	}
}

func TestFilterByPrimary(t *testing.T) {
	e := Build(sample())
	got := e.Filter("cmd", "")
	if len(got) != 2 {
		t.Fatalf("expected 2 cmd resources, got %d", len(got))
	}
}

func TestFilterByPrimaryAndSecondary(t *testing.T) {
	e := Build(sample())
	got := e.Filter("mcp", "dev-team")
	if len(got) != 1 || got[0].ID != "mcp-dev-team-architect" {
		t.Fatalf("got %v", got)
	}
}

func TestFilterUnknownCategoryReturnsEmpty(t *testing.T) {
	e := Build(sample())
	if got := e.Filter("nonexistent", ""); len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestStatistics(t *testing.T) {
	e := Build(sample())
	stats := e.Statistics()
	if stats.TotalResources != 4 {
		t.Errorf("TotalResources = %d, want 4", stats.TotalResources)
	}
	// "cmd" and "general" both have... general has 1 (architect), mcp has 1, cmd has 2.
	if stats.TotalCategories != 3 {
		t.Errorf("TotalCategories = %d, want 3", stats.TotalCategories)
	}
	if stats.Largest != "cmd" || stats.LargestCount != 2 {
		t.Errorf("Largest = %s/%d, want cmd/2", stats.Largest, stats.LargestCount)
	}
}

func TestEmptyResourceSet(t *testing.T) {
	e := Build(nil)
	if len(e.Tree()) != 0 {
		t.Errorf("expected empty tree")
	}
	if got := e.Filter("anything", ""); len(got) != 0 {
		t.Errorf("expected empty filter result")
	}
}
