package main

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"resourcehub/internal/engine"
	"resourcehub/internal/install"
	"resourcehub/internal/rerr"
)

var (
	installRecommended bool
	installParallelism int
	installAutoRollback bool
)

var installCmd = &cobra.Command{
	Use:   "install [resource-id...]",
	Short: "Resolve dependencies and install the resulting plan",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installRecommended, "recommended", false, "also install recommended dependencies")
	installCmd.Flags().IntVar(&installParallelism, "parallelism", 0, "concurrent installs within a dependency wave (0 uses the engine default)")
	installCmd.Flags().BoolVar(&installAutoRollback, "auto-rollback", false, "roll back the whole batch if anything fails")
}

func runInstall(cmd *cobra.Command, args []string) error {
	eng, err := engine.LoadCatalog(catalogDir, cfg)
	if err != nil {
		return err
	}

	plan, err := eng.PlanInstall(args, installRecommended)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(plan.Entries),
		progressbar.OptionSetDescription("installing"),
		progressbar.OptionShowCount(),
	)
	sink := install.SinkFunc(func(ev install.Event) {
		switch ev.Kind {
		case install.EventInstalled, install.EventSkipped, install.EventFailed:
			_ = bar.Add(1)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	report := eng.Install(ctx, plan, installParallelism, sink)
	_ = bar.Finish()

	fmt.Printf("\nbatch %s: %d installed, %d skipped, %d blocked, %d failed\n",
		report.ID, report.Installed, report.Skipped, report.Blocked, report.Failed)

	for _, o := range report.Outcomes {
		if o.Event == install.EventFailed {
			fmt.Printf("  FAILED  %-30s %v\n", o.ID, o.Err)
		}
	}

	if report.Failed > 0 && installAutoRollback {
		rb := eng.Rollback(report)
		fmt.Printf("rolled back: %d removed, %d restored, %d residual\n",
			len(rb.Removed), len(rb.Restored), len(rb.Residual))
	}

	if report.Failed > 0 {
		return rerr.PartialBatchFailure(report.Failed, len(report.Outcomes))
	}
	return nil
}
