package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/netassist/internal/adapters/driving/tui"
	"github.com/custodia-labs/netassist/internal/logger"
)

var chatMenu bool

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal interface for netassist.

Ask questions in a chat transcript, browse collection statistics and run
update checks against watched sources.

Controls:
  Enter       - Ask
  ↑/↓         - Question history
  PgUp/PgDn   - Scroll transcript
  Ctrl+T      - Toggle topology diagrams
  Esc         - Back to menu
  Ctrl+C      - Quit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatMenu, "menu", false, "start on the menu instead of the chat")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	// The TUI owns the terminal; keep pipeline logging out of it.
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	if schedulerService != nil && appConfig.Updates.Enabled {
		if err := schedulerService.Start(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "scheduler not started: %v\n", err)
		} else {
			defer func() {
				if err := schedulerService.Stop(); err != nil {
					fmt.Fprintf(os.Stderr, "scheduler stop error: %v\n", err)
				}
			}()
		}
	}

	app, err := tui.NewApp(&tui.Ports{
		Assistant:   assistantService,
		Collections: collectionService,
		Updates:     updateService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	app.WithContext(cmd.Context())
	if !chatMenu {
		app.StartInChat()
	}

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
