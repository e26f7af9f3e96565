package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ledgerlens/ledgerlens-cli/internal/adapters/driving/mcp"
)

var mcpHTTPFlag string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server",
	Long: `Exposes the assistant and run history over the Model Context
Protocol so AI clients can query the accounting data directly.

By default the server speaks over stdio; pass --http to serve over
HTTP instead.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPFlag, "http", "",
		"serve over HTTP on this address (e.g. :8765) instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	if llmService == nil {
		return errors.New("OpenAI service not configured - run 'ledgerlens settings set openai'")
	}
	if searchEngine == nil {
		return errors.New("search engine not configured - run 'ledgerlens settings set elastic'")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Assistant: assistant,
		Runs:      runStore,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if mcpHTTPFlag != "" {
		cmd.Printf("MCP server listening on %s\n", mcpHTTPFlag)
		return server.RunHTTP(ctx, mcpHTTPFlag)
	}
	return server.Run(ctx)
}
