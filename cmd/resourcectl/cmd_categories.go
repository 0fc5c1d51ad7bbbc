package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"resourcehub/internal/engine"
)

var (
	filterPrimary   string
	filterSecondary string
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Show the catalog's category tree, or filter by category",
	RunE:  runCategories,
}

func init() {
	categoriesCmd.Flags().StringVar(&filterPrimary, "primary", "", "filter to resources under this primary category")
	categoriesCmd.Flags().StringVar(&filterSecondary, "secondary", "", "filter to resources under this secondary category (requires --primary)")
}

func runCategories(cmd *cobra.Command, args []string) error {
	eng, err := engine.LoadCatalog(catalogDir, cfg)
	if err != nil {
		return err
	}

	if filterPrimary != "" {
		resources := eng.Filter(filterPrimary, filterSecondary)
		if len(resources) == 0 {
			fmt.Println("No resources in that category.")
			return nil
		}
		for _, r := range resources {
			fmt.Printf("%-30s %s\n", r.ID, r.Name)
		}
		return nil
	}

	tree := eng.Categories()
	primaries := make([]string, 0, len(tree))
	for p := range tree {
		primaries = append(primaries, p)
	}
	sort.Strings(primaries)

	for _, p := range primaries {
		node := tree[p]
		fmt.Printf("%s (%d)\n", p, node.Count)
		children := make([]string, 0, len(node.Children))
		for c := range node.Children {
			children = append(children, c)
		}
		sort.Strings(children)
		for _, c := range children {
			fmt.Printf("  %s (%d)\n", c, node.Children[c])
		}
	}
	return nil
}
