package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resourcehub/internal/engine"
	"resourcehub/internal/model"
)

var listType string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List resources in the catalog",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listType, "type", "", "filter by resource type (agent|command|hook|template|mcp)")
}

func runList(cmd *cobra.Command, args []string) error {
	eng, err := engine.LoadCatalog(catalogDir, cfg)
	if err != nil {
		return err
	}

	resources := eng.List(model.Type(listType))
	if len(resources) == 0 {
		fmt.Println("No resources found.")
		return nil
	}
	for _, r := range resources {
		fmt.Printf("%-30s %-10s %s\n", r.ID, r.Type, r.Name)
	}
	return nil
}
