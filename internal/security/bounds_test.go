package security

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"resourcehub/internal/rerr"
)

func TestCheckFileSizeAtExactCapPasses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.yaml")
	if err := os.WriteFile(path, make([]byte, 1024), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := CheckFileSize(path, 1024); err != nil {
		t.Errorf("expected exact cap to pass, got %v", err)
	}
}

func TestCheckFileSizeOverCapFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.yaml")
	if err := os.WriteFile(path, make([]byte, 1025), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := CheckFileSize(path, 1024)
	if !rerr.HasTag(err, rerr.TagTooLarge) {
		t.Fatalf("expected TooLarge, got %v", err)
	}
}

func TestCheckFileSizeMissingFile(t *testing.T) {
	_, err := CheckFileSize(filepath.Join(t.TempDir(), "missing.yaml"), 1024)
	if !rerr.HasTag(err, rerr.TagNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestParseWithTimeoutReturnsResultWithinDeadline(t *testing.T) {
	got, err := ParseWithTimeout(100*time.Millisecond, "index.yaml", func() (int, error) {
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Fatalf("got %d, %v", got, err)
	}
}

func TestParseWithTimeoutFiresOnSlowParse(t *testing.T) {
	_, err := ParseWithTimeout(10*time.Millisecond, "index.yaml", func() (int, error) {
		time.Sleep(200 * time.Millisecond)
		return 0, nil
	})
	if !rerr.HasTag(err, rerr.TagParseTimeout) {
		t.Fatalf("expected ParseTimeout, got %v", err)
	}
}

func TestParseWithTimeoutPropagatesParseError(t *testing.T) {
	boom := errors.New("boom")
	_, err := ParseWithTimeout(100*time.Millisecond, "index.yaml", func() (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected underlying parse error to propagate, got %v", err)
	}
}

func TestVerifySHA256Match(t *testing.T) {
	data := []byte("hello world")
	digest := SHA256Hex(data)
	if err := VerifySHA256(data, digest); err != nil {
		t.Errorf("expected match, got %v", err)
	}
}

func TestVerifySHA256Mismatch(t *testing.T) {
	data := []byte("hello world")
	err := VerifySHA256(data, "0000000000000000000000000000000000000000000000000000000000000000")
	if !rerr.HasTag(err, rerr.TagIntegrityMismatch) {
		t.Fatalf("expected IntegrityMismatch, got %v", err)
	}
}
