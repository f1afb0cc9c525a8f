package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Account AccountConfig
	Records RecordsConfig
	UI      UIConfig
}

// AccountConfig holds trading account settings.
type AccountConfig struct {
	Paper         bool
	DryRun        bool    `mapstructure:"dry_run"`
	MaxOrderValue float64 `mapstructure:"max_order_value"`
}

// RecordsConfig holds trade-record store settings.
type RecordsConfig struct {
	Path string
}

// UIConfig holds terminal presentation settings.
type UIConfig struct {
	RefreshFPS int    `mapstructure:"refresh_fps"`
	TagPolicy  string `mapstructure:"tag_policy"` // "replace" or "reject"
}

// Load reads configuration from file and env. Env var overrides use prefix WHOPTRADER_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("account.paper", true)
	v.SetDefault("account.dry_run", false)
	v.SetDefault("account.max_order_value", 500.0)
	v.SetDefault("records.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "whoptrader", "trades.db"))
	v.SetDefault("ui.refresh_fps", 10)
	v.SetDefault("ui.tag_policy", "replace")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("WHOPTRADER_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "whoptrader"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("WHOPTRADER")
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

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := os.Getenv("WHOPTRADER_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "whoptrader", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("account.paper", cfg.Account.Paper)
	v.Set("account.dry_run", cfg.Account.DryRun)
	v.Set("account.max_order_value", cfg.Account.MaxOrderValue)
	v.Set("records.path", cfg.Records.Path)
	v.Set("ui.refresh_fps", cfg.UI.RefreshFPS)
	v.Set("ui.tag_policy", cfg.UI.TagPolicy)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Lines renders the config as key/value lines for a startup dump. Dry-run
// mode is surfaced as a warning line.
func (c Config) Lines() []string {
	mode := "live"
	if c.Account.Paper {
		mode = "paper"
	}
	lines := []string{
		fmt.Sprintf("account: %s", mode),
		fmt.Sprintf("max order value: $%.2f", c.Account.MaxOrderValue),
		fmt.Sprintf("records: %s", c.Records.Path),
		fmt.Sprintf("refresh fps: %d", c.UI.RefreshFPS),
		fmt.Sprintf("tag policy: %s", c.TagPolicyName()),
	}
	if c.Account.DryRun {
		lines = append(lines, "! dry run: orders will not be submitted")
	}
	return lines
}

// TagPolicyName normalizes the configured tag policy, defaulting unknown
// values to replace.
func (c Config) TagPolicyName() string {
	if strings.EqualFold(strings.TrimSpace(c.UI.TagPolicy), "reject") {
		return "reject"
	}
	return "replace"
}
