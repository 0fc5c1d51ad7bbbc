package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resourcehub/internal/engine"
	"resourcehub/internal/model"
	"resourcehub/internal/search"
)

var (
	searchType      string
	searchThreshold int
	searchLimit     int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog by id, name, and description",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchType, "type", "", "restrict results to a resource type")
	searchCmd.Flags().IntVar(&searchThreshold, "threshold", 0, "minimum score to include a result (0 uses the engine default)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	eng, err := engine.LoadCatalog(catalogDir, cfg)
	if err != nil {
		return err
	}

	results := eng.Search(args[0], search.Options{
		Threshold: searchThreshold,
		Limit:     searchLimit,
		Type:      model.Type(searchType),
	})
	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%-30s %-10s score=%-3d field=%s\n", r.Resource.ID, r.Resource.Type, r.Score, r.Field)
	}
	return nil
}
