package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

var (
	askTopology bool
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Ask an integration question",
	Long: `Ask a question about integrating or configuring network equipment.

The question is analysed for vendors, products and intent, answered from the
ingested documentation and, when local material is thin, from web search.

Example:
  netassist ask "How do I connect a Cisco Nexus 9000 to an Aruba CX switch?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askTopology, "topology", "t", false, "include an ASCII topology diagram")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if assistantService == nil {
		return errNotConfigured("assistant service")
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return domain.ErrInvalidInput
	}

	answer := assistantService.Ask(cmd.Context(), domain.AskRequest{
		Query:           query,
		IncludeTopology: askTopology,
	})

	if askJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}

	printAnswer(cmd, answer)
	return nil
}

func printAnswer(cmd *cobra.Command, answer domain.Answer) {
	if answer.Analysis != nil {
		printAnalysis(cmd, *answer.Analysis)
		cmd.Println()
	}

	cmd.Println(answer.Response)

	if answer.Topology != "" {
		cmd.Println()
		cmd.Println("Topology:")
		cmd.Println(answer.Topology)
	}

	var notes []string
	if answer.UsedWebSearch {
		notes = append(notes, "web search used")
	}
	if answer.Degraded {
		notes = append(notes, "no language model available")
	}
	if len(notes) > 0 {
		cmd.Println()
		cmd.Printf("(%s)\n", strings.Join(notes, ", "))
	}
}
