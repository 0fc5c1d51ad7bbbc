package main

import (
	"fmt"
	"testing"

	"resourcehub/internal/rerr"
)

func TestExitCodeForDirectTaggedError(t *testing.T) {
	if got := exitCodeFor(rerr.NotFound("x")); got != 2 {
		t.Errorf("NotFound exit code = %d, want 2", got)
	}
}

func TestExitCodeForWrappedTaggedError(t *testing.T) {
	wrapped := fmt.Errorf("loading catalog: %w", rerr.CycleDetected([][]string{{"a", "b"}}))
	if got := exitCodeFor(wrapped); got != 5 {
		t.Errorf("wrapped CycleDetected exit code = %d, want 5", got)
	}
}

func TestExitCodeForPartialBatchFailure(t *testing.T) {
	if got := exitCodeFor(rerr.PartialBatchFailure(1, 3)); got != 6 {
		t.Errorf("PartialBatchFailure exit code = %d, want 6", got)
	}
}

func TestExitCodeForUntaggedError(t *testing.T) {
	if got := exitCodeFor(fmt.Errorf("some cobra usage error")); got != 1 {
		t.Errorf("untagged error exit code = %d, want 1", got)
	}
}

func TestExitCodeForNil(t *testing.T) {
	if got := exitCodeFor(nil); got != 0 {
		t.Errorf("nil exit code = %d, want 0", got)
	}
}
