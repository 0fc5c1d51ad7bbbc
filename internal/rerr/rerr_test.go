package rerr

import (
	"fmt"
	"testing"
)

func TestHasTagUnwraps(t *testing.T) {
	base := PathTraversal("agents/../../etc/passwd")
	wrapped := fmt.Errorf("loading resource: %w", base)

	if !HasTag(wrapped, TagPathTraversal) {
		t.Errorf("expected HasTag to find PathTraversal through fmt.Errorf wrap")
	}
	if HasTag(wrapped, TagUnsafeURL) {
		t.Errorf("expected HasTag to not match a different tag")
	}
}

func TestExitCodes(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{NotFound("x"), 2},
		{PathTraversal("x"), 3},
		{UnsafeURL("x", "y"), 3},
		{IntegrityMismatch("id", "a", "b"), 3},
		{Network("connect", "x"), 4},
		{MissingDependency("a", "b"), 5},
		{CycleDetected([][]string{{"a", "b"}}), 5},
		{BlockedByDependency("a"), 6},
		{PartialBatchFailure(1, 3), 6},
	}
	for _, c := range cases {
		if got := c.err.ExitCode(); got != c.want {
			t.Errorf("%s: ExitCode() = %d, want %d", c.err.Tag, got, c.want)
		}
	}
}

func TestWrapPreservesTag(t *testing.T) {
	e := ParseTimeout("index.yaml").Wrap(fmt.Errorf("deadline exceeded"))
	if e.Tag != TagParseTimeout {
		t.Errorf("Wrap changed tag: %s", e.Tag)
	}
	if e.Cause == nil {
		t.Errorf("expected Cause to be set")
	}
}
