package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-cli/internal/logger"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a natural-language question about the indexed data",
	Long: `Translates the question into a structured query, executes it against
the entity indices, and generates a conversational answer.

Example:
  ledgerlens ask "What was the total invoiced amount last quarter?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if llmService == nil {
		return errors.New("OpenAI service not configured - run 'ledgerlens settings set openai'")
	}
	if searchEngine == nil {
		return errors.New("search engine not configured - run 'ledgerlens settings set elastic'")
	}

	question := strings.Join(args, " ")
	answer, err := assistant.Ask(context.Background(), question)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) {
			// Surface the failed translation verbatim; the user can
			// rephrase and try again.
			return fmt.Errorf("could not answer: %w", err)
		}
		return err
	}

	if logger.IsVerbose() {
		if query, err := json.MarshalIndent(answer.Query, "", "  "); err == nil {
			logger.Debug("executed query:\n%s", query)
		}
	}

	cmd.Println(answer.Text)
	cmd.Printf("\n(%d matching documents)\n", answer.Hits)
	return nil
}
