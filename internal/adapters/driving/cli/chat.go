package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/ledgerlens/ledgerlens-cli/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive question session",
	Long: `Opens a terminal chat where each question is translated, executed
and answered in turn. Press Esc or Ctrl-C to quit.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	if llmService == nil {
		return errors.New("OpenAI service not configured - run 'ledgerlens settings set openai'")
	}
	if searchEngine == nil {
		return errors.New("search engine not configured - run 'ledgerlens settings set elastic'")
	}

	return tui.Run(context.Background(), assistant)
}
