package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all collections and ingestion history",
	Long: `Delete every collection in the vector store, recreate the empty
collections for the current layout and clear the ingestion ledger so the
next ingest starts from scratch.`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	if collectionService == nil {
		return errNotConfigured("collection service")
	}

	if !resetYes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("refusing to reset without --yes on a non-interactive terminal")
		}
		cmd.Print("This deletes all ingested documentation. Continue? [y/N]: ")
		answer := strings.ToLower(readLine(bufio.NewReader(os.Stdin)))
		if answer != "y" && answer != "yes" {
			return errCanceled
		}
	}

	if err := collectionService.ResetDatabase(cmd.Context()); err != nil {
		return fmt.Errorf("reset collections: %w", err)
	}
	if ingestionService != nil {
		if err := ingestionService.ResetTracking(); err != nil {
			return fmt.Errorf("reset ingestion ledger: %w", err)
		}
	}

	cmd.Println("Database reset. Run 'netassist ingest' to rebuild.")
	return nil
}
