package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Config is the persisted CLI configuration, one TOML table per
// external service.
type Config struct {
	Directo   DirectoConfig   `toml:"directo"`
	Elastic   ElasticConfig   `toml:"elastic"`
	OpenAI    OpenAIConfig    `toml:"openai"`
	ETL       ETLConfig       `toml:"etl"`
	Scheduler SchedulerConfig `toml:"scheduler"`
}

// DirectoConfig holds the ERP export API settings.
type DirectoConfig struct {
	// Company is the Directo database name.
	Company string `toml:"company"`

	// Token is the export API key.
	Token string `toml:"token"`

	// BaseURL overrides the hosted endpoint. Normally empty.
	BaseURL string `toml:"base_url,omitempty"`
}

// ElasticConfig holds the search cluster settings. Endpoint plus
// APIKey for managed deployments; Host and Port for local clusters.
type ElasticConfig struct {
	Endpoint string `toml:"endpoint,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
	Host     string `toml:"host,omitempty"`
	Port     int    `toml:"port,omitempty"`
}

// OpenAIConfig holds the LLM service settings.
type OpenAIConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`
}

// ETLConfig holds ETL run defaults.
type ETLConfig struct {
	// FromYears is how many years of history a run fetches when no
	// explicit from date is given. Zero means 10.
	FromYears int `toml:"from_years,omitempty"`
}

// SchedulerConfig holds the daily run schedule.
type SchedulerConfig struct {
	// At is the daily run time in HH:MM, 24-hour clock. Empty disables
	// scheduling.
	At string `toml:"at,omitempty"`
}

// ConfigStore persists the configuration as a TOML file.
type ConfigStore struct {
	mu       sync.Mutex
	filePath string
}

// DefaultConfigDir returns ~/.ledgerlens.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".ledgerlens"), nil
}

// NewConfigStore creates a TOML-based config store.
// If configDir is empty, defaults to ~/.ledgerlens/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		var err error
		configDir, err = DefaultConfigDir()
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads the configuration. A missing file yields the zero config,
// so a fresh install works before `settings set` has run.
func (s *ConfigStore) Load() (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cfg Config
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", s.filePath, err)
	}
	return cfg, nil
}

// Save persists the configuration with restricted permissions: the
// file carries API keys.
func (s *ConfigStore) Save(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
