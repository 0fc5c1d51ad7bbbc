package install

import (
	"os"
	"path/filepath"
	"testing"

	"resourcehub/internal/model"
)

func newTestHistory(t *testing.T) *History {
	t.Helper()
	dir := t.TempDir()
	return NewHistory(filepath.Join(dir, "history.jsonl"), filepath.Join(dir, "history.lock"))
}

func TestHistoryAppendAndAll(t *testing.T) {
	h := newTestHistory(t)

	if err := h.Append(model.InstallRecord{ID: "a", Version: "1.0.0", SHA256: "aaa", Path: "/x/a"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := h.Append(model.InstallRecord{ID: "b", Version: "2.0.0", SHA256: "bbb", Path: "/x/b"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	records, err := h.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(records) != 2 || records[0].ID != "a" || records[1].ID != "b" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestHistoryAllOnMissingFileReturnsEmpty(t *testing.T) {
	h := newTestHistory(t)
	records, err := h.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestHistoryCompactKeepsOnlyLatestPerID(t *testing.T) {
	h := newTestHistory(t)
	h.Append(model.InstallRecord{ID: "a", Version: "1.0.0", Path: "/x/a"})
	h.Append(model.InstallRecord{ID: "a", Version: "1.1.0", Path: "/x/a"})
	h.Append(model.InstallRecord{ID: "b", Version: "1.0.0", Path: "/x/b"})

	if err := h.Compact(); err != nil {
		t.Fatalf("Compact: %v", err)
	}

	records, err := h.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records after compaction, got %d: %+v", len(records), records)
	}
	byID := map[string]model.InstallRecord{}
	for _, r := range records {
		byID[r.ID] = r
	}
	if byID["a"].Version != "1.1.0" {
		t.Errorf("expected compaction to keep the latest version for a, got %s", byID["a"].Version)
	}
}

func TestHistoryAllToleratesCorruptLine(t *testing.T) {
	h := newTestHistory(t)
	h.Append(model.InstallRecord{ID: "a", Version: "1.0.0"})

	// Append a corrupt line directly, bypassing the JSON marshal path.
	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("opening history for corrupt append: %v", err)
	}
	f.WriteString("{not valid json\n")
	f.Close()

	h.Append(model.InstallRecord{ID: "b", Version: "1.0.0"})

	records, err := h.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected the corrupt line to be skipped, got %d records: %+v", len(records), records)
	}
}
