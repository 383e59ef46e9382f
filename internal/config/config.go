package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Data     DataConfig
	UI       UIConfig
	Simulate SimulateConfig
}

// DataConfig holds paths for the local flat files.
type DataConfig struct {
	Dir        string
	LedgerFile string `mapstructure:"ledger_file"`
	BudgetFile string `mapstructure:"budget_file"`
	LogFile    string `mapstructure:"log_file"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	Timezone       string
}

// SimulateConfig paces the fake payment and discovery flows.
type SimulateConfig struct {
	PayLatencyMS    int `mapstructure:"pay_latency_ms"`
	SearchLatencyMS int `mapstructure:"search_latency_ms"`
}

// Load reads configuration from file and env. Env var overrides use prefix
// SMARTSPEND_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("data.dir", filepath.Join(os.Getenv("HOME"), ".local", "share", "smartspend"))
	v.SetDefault("data.ledger_file", "expenses.csv")
	v.SetDefault("data.budget_file", "budgets.json")
	v.SetDefault("data.log_file", "smartspend.log")
	v.SetDefault("ui.currency_symbol", "₹")
	v.SetDefault("ui.timezone", "Asia/Kolkata")
	v.SetDefault("simulate.pay_latency_ms", 600)
	v.SetDefault("simulate.search_latency_ms", 800)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("SMARTSPEND_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "smartspend"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SMARTSPEND")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed.
func Save(cfg Config) error {
	path := os.Getenv("SMARTSPEND_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "smartspend", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("data.dir", cfg.Data.Dir)
	v.Set("data.ledger_file", cfg.Data.LedgerFile)
	v.Set("data.budget_file", cfg.Data.BudgetFile)
	v.Set("data.log_file", cfg.Data.LogFile)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("simulate.pay_latency_ms", cfg.Simulate.PayLatencyMS)
	v.Set("simulate.search_latency_ms", cfg.Simulate.SearchLatencyMS)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LedgerPath is the absolute path of the transaction CSV.
func (c Config) LedgerPath() string { return filepath.Join(c.Data.Dir, c.Data.LedgerFile) }

// BudgetPath is the absolute path of the budget JSON.
func (c Config) BudgetPath() string { return filepath.Join(c.Data.Dir, c.Data.BudgetFile) }

// LogPath is the absolute path of the log file.
func (c Config) LogPath() string { return filepath.Join(c.Data.Dir, c.Data.LogFile) }

// PayLatency is the simulated send delay.
func (c Config) PayLatency() time.Duration {
	return time.Duration(c.Simulate.PayLatencyMS) * time.Millisecond
}

// SearchLatency is the simulated device-discovery delay.
func (c Config) SearchLatency() time.Duration {
	return time.Duration(c.Simulate.SearchLatencyMS) * time.Millisecond
}
