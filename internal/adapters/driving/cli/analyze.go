package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [question...]",
	Short: "Show how a question is classified",
	Long:  `Show the vendors, products and intent extracted from a question without answering it.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the analysis as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if queryAnalyzer == nil {
		return errNotConfigured("query analyzer")
	}

	analysis := queryAnalyzer.Analyze(strings.Join(args, " "))

	if analyzeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	printAnalysis(cmd, analysis)
	return nil
}

func printAnalysis(cmd *cobra.Command, a domain.QueryAnalysis) {
	cmd.Printf("Intent:   %s\n", a.Intent)
	if vendors := a.Vendors(); len(vendors) > 0 {
		cmd.Printf("Vendors:  %s\n", strings.Join(vendors, " -> "))
	}
	if products := a.Products(); len(products) > 0 {
		cmd.Printf("Products: %s\n", strings.Join(products, ", "))
	}
}
