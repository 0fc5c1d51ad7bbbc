package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resourcehub/internal/engine"
)

var planRecommended bool

var planCmd = &cobra.Command{
	Use:   "plan [resource-id...]",
	Short: "Resolve dependencies and print the install order without installing",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&planRecommended, "recommended", false, "also pull in recommended (not just required) dependencies")
}

func runPlan(cmd *cobra.Command, args []string) error {
	eng, err := engine.LoadCatalog(catalogDir, cfg)
	if err != nil {
		return err
	}

	plan, err := eng.PlanInstall(args, planRecommended)
	if err != nil {
		return err
	}

	for _, e := range plan.Entries {
		tag := ""
		switch {
		case e.AlreadyInstalled:
			tag = " (already installed)"
		case e.Recommended:
			tag = " (recommended)"
		}
		fmt.Printf("%s%s\n", e.ID, tag)
	}
	return nil
}
