package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var collectionsCmd = &cobra.Command{
	Use:     "collections",
	Aliases: []string{"stats"},
	Short:   "List collections and document counts",
	RunE:    runCollections,
}

func init() {
	rootCmd.AddCommand(collectionsCmd)
}

func runCollections(cmd *cobra.Command, _ []string) error {
	if collectionService == nil {
		return errNotConfigured("collection service")
	}

	stats, err := collectionService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("collection stats: %w", err)
	}

	if len(stats) == 0 {
		cmd.Println("No collections. Run 'netassist ingest' to populate the store.")
		return nil
	}

	total := 0
	for _, s := range stats {
		cmd.Printf("%-28s %-13s %6d docs", s.Name, s.Type, s.Documents)
		if s.Model != "" {
			cmd.Printf("  %s", s.Model)
		}
		if s.Dimension > 0 {
			cmd.Printf(" (%dd)", s.Dimension)
		}
		cmd.Println()
		total += s.Documents
	}
	cmd.Printf("\n%d collections, %d documents\n", len(stats), total)
	return nil
}
