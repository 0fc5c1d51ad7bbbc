package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resourcehub/internal/rerr"
)

func TestValidatePathAcceptsLegitimateChild(t *testing.T) {
	base := t.TempDir()
	resolved, err := ValidatePath("agents/reviewer.md", base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(base, "agents", "reviewer.md")
	if resolved != want {
		t.Errorf("resolved = %q, want %q", resolved, want)
	}
}

func TestValidatePathRejectsRawTraversal(t *testing.T) {
	base := t.TempDir()
	_, err := ValidatePath("../../etc/passwd", base)
	if !rerr.HasTag(err, rerr.TagPathTraversal) {
		t.Fatalf("expected PathTraversal, got %v", err)
	}
}

func TestValidatePathRejectsDisguisedTraversal(t *testing.T) {
	base := t.TempDir()
	// U+FE52 SMALL FULL STOP normalizes to U+002E under NFKC.
	disguised := "agents﹒﹒/secret"
	_, err := ValidatePath(disguised, base)
	if !rerr.HasTag(err, rerr.TagPathTraversal) {
		t.Fatalf("expected PathTraversal for disguised dots, got %v", err)
	}
}

func TestValidatePathConfinesSymlinkEscape(t *testing.T) {
	base := t.TempDir()
	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(base, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	resolved, err := ValidatePath("link/secret.txt", base)
	if err != nil {
		t.Fatalf("securejoin should resolve within base, got %v", err)
	}
	if rel, err := filepath.Rel(base, resolved); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		t.Errorf("resolved = %q escapes base %q", resolved, base)
	}
}
