package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ledgerlens/ledgerlens-cli/internal/adapters/driven/llm/openai"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the Directo connection, the search cluster, the
OpenAI service, and ETL defaults. Settings are stored in
~/.ledgerlens/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <directo|elastic|openai|etl|schedule>",
	Short: "Configure one settings section interactively",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Directo]")
	cmd.Printf("  Company: %s\n", orNotSet(cfg.Directo.Company))
	cmd.Printf("  Token: %s\n", maskedOrNotSet(cfg.Directo.Token))
	if cfg.Directo.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", cfg.Directo.BaseURL)
	}
	cmd.Println()

	cmd.Println("[Elastic]")
	if cfg.Elastic.Endpoint != "" {
		cmd.Printf("  Endpoint: %s\n", cfg.Elastic.Endpoint)
		cmd.Printf("  API Key: %s\n", maskedOrNotSet(cfg.Elastic.APIKey))
	} else if cfg.Elastic.Host != "" || cfg.Elastic.Port != 0 {
		cmd.Printf("  Host: %s\n", orNotSet(cfg.Elastic.Host))
		cmd.Printf("  Port: %d\n", cfg.Elastic.Port)
	} else {
		cmd.Println("  (not configured)")
	}
	cmd.Println()

	cmd.Println("[OpenAI]")
	cmd.Printf("  API Key: %s\n", maskedOrNotSet(cfg.OpenAI.APIKey))
	model := cfg.OpenAI.Model
	if model == "" {
		model = openai.DefaultLLMModel + " (default)"
	}
	cmd.Printf("  Model: %s\n", model)
	cmd.Println()

	cmd.Println("[ETL]")
	years := cfg.ETL.FromYears
	if years <= 0 {
		years = 10
	}
	cmd.Printf("  History window: %d years\n", years)
	if cfg.Scheduler.At != "" {
		cmd.Printf("  Scheduled daily at: %s\n", cfg.Scheduler.At)
	}
	cmd.Println()

	cmd.Printf("Config file: %s\n", configStore.Path())
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	switch args[0] {
	case "directo":
		cmd.Print("Company database name: ")
		cfg.Directo.Company = readLine(reader)
		cmd.Print("API token: ")
		cfg.Directo.Token = readPassword()
		cmd.Println()
		if cfg.Directo.Company == "" || cfg.Directo.Token == "" {
			return errors.New("company and token are both required")
		}

	case "elastic":
		cmd.Print("Endpoint URL (empty for local cluster): ")
		cfg.Elastic.Endpoint = readLine(reader)
		if cfg.Elastic.Endpoint != "" {
			cmd.Print("API key: ")
			cfg.Elastic.APIKey = readPassword()
			cmd.Println()
			cfg.Elastic.Host = ""
			cfg.Elastic.Port = 0
		} else {
			cmd.Print("Host [localhost]: ")
			cfg.Elastic.Host = readLine(reader)
			if cfg.Elastic.Host == "" {
				cfg.Elastic.Host = "localhost"
			}
			cmd.Print("Port [9200]: ")
			cfg.Elastic.Port = parseChoice(readLine(reader), 65535, 9200)
			cfg.Elastic.APIKey = ""
		}

	case "openai":
		cmd.Print("API key: ")
		cfg.OpenAI.APIKey = readPassword()
		cmd.Println()
		if cfg.OpenAI.APIKey == "" {
			return errors.New("API key is required")
		}
		cmd.Printf("Model [%s]: ", openai.DefaultLLMModel)
		cfg.OpenAI.Model = readLine(reader)

		// Validate the key before persisting it.
		llm, err := openai.NewLLMService(openai.LLMConfig{
			APIKey: cfg.OpenAI.APIKey,
			Model:  cfg.OpenAI.Model,
		})
		if err != nil {
			return err
		}
		cmd.Print("Validating configuration... ")
		if err := llm.Ping(context.Background()); err != nil {
			cmd.Println("FAILED")
			return fmt.Errorf("OpenAI configuration validation failed: %w", err)
		}
		cmd.Println("OK")

	case "etl":
		cmd.Print("History window in years [10]: ")
		cfg.ETL.FromYears = parseChoice(readLine(reader), 100, 10)

	case "schedule":
		cmd.Print("Daily run time (HH:MM, empty to disable): ")
		cfg.Scheduler.At = readLine(reader)
		if cfg.Scheduler.At != "" {
			if _, err := time.Parse("15:04", cfg.Scheduler.At); err != nil {
				return fmt.Errorf("invalid time %q (want HH:MM)", cfg.Scheduler.At)
			}
		}

	default:
		return fmt.Errorf("unknown settings section %q", args[0])
	}

	if err := configStore.Save(cfg); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	cmd.Println("Settings saved.")
	return nil
}

// Helper functions.

func orNotSet(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

func maskedOrNotSet(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
