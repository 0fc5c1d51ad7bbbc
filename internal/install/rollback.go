package install

import (
	"os"

	"resourcehub/internal/logging"
)

// RollbackReport summarizes a rollback: paths removed (created fresh by
// the batch) and paths restored (overwritten; their ".prev" sibling is
// moved back), plus any residual failures the rollback could not resolve.
type RollbackReport struct {
	Removed   []string
	Restored  []string
	Residual  []string
}

// RollbackBatch reverses every Installed outcome in report on a
// best-effort basis: a path with a preserved ".prev" sibling is restored
// to it; a path with no sibling was newly created by the batch and is
// removed outright. Failures are logged and collected rather than
// aborting the rollback, since a partially-rolled-back batch is strictly
// better than an unrolled-back one.
func RollbackBatch(report *BatchReport) *RollbackReport {
	logger := logging.Get(logging.CategoryInstall)
	out := &RollbackReport{}

	for _, o := range report.Outcomes {
		if o.Event != EventInstalled || o.Path == "" {
			continue
		}

		prev := o.Path + ".prev"
		if _, err := os.Stat(prev); err == nil {
			if err := os.Rename(prev, o.Path); err != nil {
				logger.Error("rollback: failed to restore %s from %s: %v", o.Path, prev, err)
				out.Residual = append(out.Residual, o.Path)
				continue
			}
			out.Restored = append(out.Restored, o.Path)
			continue
		}

		if err := os.Remove(o.Path); err != nil && !os.IsNotExist(err) {
			logger.Error("rollback: failed to remove %s: %v", o.Path, err)
			out.Residual = append(out.Residual, o.Path)
			continue
		}
		out.Removed = append(out.Removed, o.Path)
	}

	return out
}
