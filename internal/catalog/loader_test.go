package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"resourcehub/internal/config"
	"resourcehub/internal/model"
	"resourcehub/internal/rerr"
)

func testConfig(t *testing.T) *config.EngineConfig {
	t.Helper()
	cfg := config.Default()
	cfg.UserBase = t.TempDir()
	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadIndex(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "index.yaml"), "total: 2\nversion: \"1.0\"\ntypes:\n  agent: 2\n")

	l, err := New(base, testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	idx, err := l.LoadIndex()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Total != 2 || idx.Types[model.TypeAgent] != 2 {
		t.Errorf("got %+v", idx)
	}

	// second call is served from the in-memory cache.
	idx2, err := l.LoadIndex()
	if err != nil || idx2.Total != 2 {
		t.Errorf("cached load failed: %v, %+v", err, idx2)
	}
}

func TestLoadIndexMissing(t *testing.T) {
	l, err := New(t.TempDir(), testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	_, err = l.LoadIndex()
	if !rerr.HasTag(err, rerr.TagNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func validResourceYAML(id string) string {
	return "id: " + id + "\n" +
		"type: agent\n" +
		"name: Test Agent\n" +
		"source:\n  url: https://raw.githubusercontent.com/org/repo/main/a.md\n" +
		"install_path: agents/" + id + ".md\n"
}

func TestLoadResource(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "agents", "reviewer.yaml"), validResourceYAML("reviewer"))

	l, err := New(base, testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	r, err := l.LoadResource(model.TypeAgent, "reviewer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID != "reviewer" || r.Name != "Test Agent" {
		t.Errorf("got %+v", r)
	}
}

func TestLoadResourceRejectsDisguisedTraversalInstallPath(t *testing.T) {
	base := t.TempDir()
	yamlContent := "id: evil\n" +
		"type: agent\n" +
		"name: Evil\n" +
		"source:\n  url: https://raw.githubusercontent.com/org/repo/main/a.md\n" +
		"install_path: \"agents/\\ufe52\\ufe52/secret.txt\"\n"
	writeFile(t, filepath.Join(base, "agents", "evil.yaml"), yamlContent)

	l, err := New(base, testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	_, err = l.LoadResource(model.TypeAgent, "evil")
	if !rerr.HasTag(err, rerr.TagPathTraversal) {
		t.Fatalf("expected PathTraversal, got %v", err)
	}
}

func TestLoadResourceRejectsInvalidIDBeforeTouchingDisk(t *testing.T) {
	l, err := New(t.TempDir(), testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	_, err = l.LoadResource(model.TypeAgent, "../../etc/passwd")
	if !rerr.HasTag(err, rerr.TagPathTraversal) {
		t.Fatalf("expected PathTraversal, got %v", err)
	}
}

func TestLoadResourceNotFound(t *testing.T) {
	l, err := New(t.TempDir(), testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	_, err = l.LoadResource(model.TypeAgent, "missing")
	if !rerr.HasTag(err, rerr.TagNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestLoadResourcesAsyncPreservesOrder(t *testing.T) {
	base := t.TempDir()
	for _, id := range []string{"a", "b", "c"} {
		writeFile(t, filepath.Join(base, "agents", id+".yaml"), validResourceYAML(id))
	}
	l, err := New(base, testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	refs := []Ref{{model.TypeAgent, "c"}, {model.TypeAgent, "a"}, {model.TypeAgent, "b"}}
	results, err := l.LoadResourcesAsync(refs, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].ID != "c" || results[1].ID != "a" || results[2].ID != "b" {
		t.Errorf("order not preserved: %v", results)
	}
}

func TestLoadTwiceYieldsEqualResource(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "agents", "reviewer.yaml"), validResourceYAML("reviewer"))

	cfg := testConfig(t)
	l1, _ := New(base, cfg)
	r1, err := l1.LoadResource(model.TypeAgent, "reviewer")
	if err != nil {
		t.Fatal(err)
	}

	l2, _ := New(base, cfg)
	r2, err := l2.LoadResource(model.TypeAgent, "reviewer")
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(r1, r2) {
		t.Errorf("expected equal resources across loads: %+v vs %+v", r1, r2)
	}
}

// TestLoadIndexPopulatesResourceIDs uses an index.yaml matching spec.md
// §6's documented field set exactly — total, types, version, nothing else
// — the shape a real external generator produces. LoadIndex must still
// discover the catalog's ids by listing the agents/ directory rather than
// trusting any (absent) index field.
func TestLoadIndexPopulatesResourceIDs(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "index.yaml"), "total: 2\nversion: \"1.0\"\ntypes:\n  agent: 2\n")
	writeFile(t, filepath.Join(base, "agents", "planner.yaml"), validResourceYAML("planner"))
	writeFile(t, filepath.Join(base, "agents", "reviewer.yaml"), validResourceYAML("reviewer"))

	l, err := New(base, testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	idx, err := l.LoadIndex()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids := idx.ResourceIDs[model.TypeAgent]
	if len(ids) != 2 || ids[0] != "planner" || ids[1] != "reviewer" {
		t.Errorf("got ResourceIDs = %+v", idx.ResourceIDs)
	}
}

func TestCorruptDiskCacheFallsThroughToReload(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "index.yaml"), "total: 1\nversion: \"1.0\"\ntypes:\n  agent: 1\n")

	cfg := testConfig(t)
	l, err := New(base, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.MkdirAll(cfg.CacheDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	corruptPath := l.disk.keyPath(filepath.Join(base, "index.yaml"))
	writeFile(t, corruptPath, "{ not valid json ")

	idx, err := l.LoadIndex()
	if err != nil {
		t.Fatalf("expected corrupt disk cache to fall through to reload, got error: %v", err)
	}
	if idx.Total != 1 {
		t.Errorf("got %+v", idx)
	}
}

func TestCacheStatsReflectsActivity(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "agents", "reviewer.yaml"), validResourceYAML("reviewer"))

	l, err := New(base, testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.LoadResource(model.TypeAgent, "reviewer"); err != nil {
		t.Fatal(err)
	}
	if _, err := l.LoadResource(model.TypeAgent, "reviewer"); err != nil {
		t.Fatal(err)
	}
	stats := l.CacheStats()
	if stats.Hits == 0 {
		t.Errorf("expected at least one cache hit, got %+v", stats)
	}

	l.ClearCache()
}
