// Package cli implements the ledgerlens command-line interface.
package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerlens/ledgerlens-cli/internal/adapters/driven/config/file"
	"github.com/ledgerlens/ledgerlens-cli/internal/adapters/driven/llm/openai"
	"github.com/ledgerlens/ledgerlens-cli/internal/adapters/driven/search/elastic"
	"github.com/ledgerlens/ledgerlens-cli/internal/adapters/driven/storage/memory"
	"github.com/ledgerlens/ledgerlens-cli/internal/adapters/driven/storage/sqlite"
	"github.com/ledgerlens/ledgerlens-cli/internal/connectors/directo"
	"github.com/ledgerlens/ledgerlens-cli/internal/core/ports/driven"
	"github.com/ledgerlens/ledgerlens-cli/internal/core/ports/driving"
	"github.com/ledgerlens/ledgerlens-cli/internal/core/services"
	"github.com/ledgerlens/ledgerlens-cli/internal/logger"
)

// Services wired by initServices and shared by the commands. A service
// stays nil when its configuration is missing; each command checks what
// it needs and reports what to configure.
var (
	configStore *file.ConfigStore
	cfg         file.Config

	connector    driven.Connector
	searchEngine driven.SearchEngine
	llmService   driven.LLMService
	runStore     driven.RunStore
	promptStore  driven.PromptStore

	etlRunner driving.ETLRunner
	assistant driving.Assistant
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "ledgerlens",
	Short: "ETL and analytics assistant for Directo accounting data",
	Long: `ledgerlens extracts accounting records from the Directo ERP,
normalises them against a versioned schema, indexes them into
Elasticsearch, and answers natural-language questions over the result.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose debug output")
}

// Execute runs the CLI.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// initServices builds the adapter stack from the config file. Missing
// configuration is tolerated here so `settings` and `version` work on a
// fresh install.
func initServices(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	var err error
	configStore, err = file.NewConfigStore("")
	if err != nil {
		return err
	}
	cfg, err = configStore.Load()
	if err != nil {
		return err
	}

	if cfg.Directo.Company != "" && cfg.Directo.Token != "" {
		conn, err := directo.New(directo.Config{
			Company: cfg.Directo.Company,
			Token:   cfg.Directo.Token,
			BaseURL: cfg.Directo.BaseURL,
		})
		if err != nil {
			return err
		}
		connector = conn
	}

	if cfg.Elastic.Endpoint != "" || cfg.Elastic.Host != "" || cfg.Elastic.Port != 0 {
		searchEngine = elastic.New(elastic.Config{
			Endpoint: cfg.Elastic.Endpoint,
			APIKey:   cfg.Elastic.APIKey,
			Host:     cfg.Elastic.Host,
			Port:     cfg.Elastic.Port,
		})
	}

	if cfg.OpenAI.APIKey != "" {
		llm, err := openai.NewLLMService(openai.LLMConfig{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		})
		if err != nil {
			return err
		}
		llmService = llm
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		logger.Warn("opening run store: %v (run history will not persist)", err)
		runStore = memory.NewRunStore()
	} else {
		runStore = store
	}

	promptStore, err = file.NewPromptStore("")
	if err != nil {
		return err
	}

	etlRunner = services.NewRunner(connector, searchEngine, runStore)
	assistant = services.NewAssistant(llmService, searchEngine, promptStore)
	return nil
}

func closeServices() {
	if connector != nil {
		if err := connector.Close(); err != nil {
			logger.Warn("closing connector: %v", err)
		}
	}
	if llmService != nil {
		if err := llmService.Close(); err != nil {
			logger.Warn("closing LLM service: %v", err)
		}
	}
	if runStore != nil {
		if err := runStore.Close(); err != nil {
			logger.Warn("closing run store: %v", err)
		}
	}
}

// defaultFrom derives the history window when --from is not given.
func defaultFrom() time.Time {
	years := cfg.ETL.FromYears
	if years <= 0 {
		years = 10
	}
	return time.Now().AddDate(-years, 0, 0)
}
