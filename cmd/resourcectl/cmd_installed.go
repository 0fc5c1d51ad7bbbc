package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resourcehub/internal/engine"
)

var installedCmd = &cobra.Command{
	Use:   "installed",
	Short: "List previously installed resources from the install history",
	RunE:  runInstalled,
}

func runInstalled(cmd *cobra.Command, args []string) error {
	eng, err := engine.LoadCatalog(catalogDir, cfg)
	if err != nil {
		return err
	}

	records, err := eng.Installed()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No resources installed yet.")
		return nil
	}
	for _, r := range records {
		fmt.Printf("%-30s %-10s %-12s %s\n", r.ID, r.Version, r.InstalledAt, r.Path)
	}
	return nil
}
