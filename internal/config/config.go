// Package config loads and validates the application configuration from a
// YAML file with environment variable overrides.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Backpack  BackpackConfig  `mapstructure:"backpack"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Arbitrage ArbitrageConfig `mapstructure:"arbitrage"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// BackpackConfig holds backpack.tf scraping configuration.
type BackpackConfig struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRetries          int           `mapstructure:"max_retries"`
	RetryDelay          time.Duration `mapstructure:"retry_delay"`
	PageSettle          time.Duration `mapstructure:"page_settle"`
	MaxClassifiedsPages int           `mapstructure:"max_classifieds_pages"`
	CookiesFile         string        `mapstructure:"cookies_file"`
	UserAgent           string        `mapstructure:"user_agent"`
	Headless            bool          `mapstructure:"headless"`
}

// PricingConfig holds price interpretation configuration.
type PricingConfig struct {
	Policy string `mapstructure:"policy"` // "avg23" or "first"
	// KeyRateOverride fixes the key→refined rate. 0 means discover the
	// rate from the reference item's sell listings at run start.
	KeyRateOverride     float64 `mapstructure:"key_rate_override"`
	ReferenceItem       string  `mapstructure:"reference_item"`
	KitCostSpecialized  float64 `mapstructure:"kit_cost_specialized"`
	KitCostProfessional float64 `mapstructure:"kit_cost_professional"`
	// MinDisplayKeys is the smallest key amount worth re-expressing a
	// refined price in keys for display. Never affects comparisons.
	MinDisplayKeys float64 `mapstructure:"min_display_keys"`
}

// ArbitrageConfig holds the evaluation run configuration.
type ArbitrageConfig struct {
	Items       []string `mapstructure:"items"`
	Kits        []string `mapstructure:"kits"` // "specialized", "professional"
	Concurrency int      `mapstructure:"concurrency"`
	MinProfit   float64  `mapstructure:"min_profit"` // refined, report filter only
	MinROI      float64  `mapstructure:"min_roi"`    // percent, report filter only
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// StorageConfig holds report persistence configuration.
type StorageConfig struct {
	FilePath   string `mapstructure:"file_path"`
	MaxReports int    `mapstructure:"max_reports"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvPrefix("TF2ARB")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("backpack.base_url", "https://backpack.tf")
	v.SetDefault("backpack.timeout", "90s")
	v.SetDefault("backpack.max_retries", 3)
	v.SetDefault("backpack.retry_delay", "2s")
	v.SetDefault("backpack.page_settle", "600ms")
	v.SetDefault("backpack.max_classifieds_pages", 5)
	v.SetDefault("backpack.cookies_file", "cookies.json")
	v.SetDefault("backpack.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("backpack.headless", true)

	v.SetDefault("pricing.policy", "avg23")
	v.SetDefault("pricing.key_rate_override", 0.0)
	v.SetDefault("pricing.reference_item", "Mann Co. Supply Crate Key")
	v.SetDefault("pricing.kit_cost_specialized", 18.0)
	v.SetDefault("pricing.kit_cost_professional", 48.0)
	v.SetDefault("pricing.min_display_keys", 0.5)

	v.SetDefault("arbitrage.kits", []string{"specialized", "professional"})
	v.SetDefault("arbitrage.concurrency", 5)
	v.SetDefault("arbitrage.min_profit", 1.0)
	v.SetDefault("arbitrage.min_roi", 5.0)

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	v.SetDefault("storage.file_path", "./data/tf2arb.json")
	v.SetDefault("storage.max_reports", 50)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if c.Backpack.BaseURL == "" {
		return fmt.Errorf("backpack.base_url is required")
	}
	if c.Backpack.Timeout < 10*time.Second {
		return fmt.Errorf("backpack.timeout must be at least 10 seconds")
	}
	if c.Backpack.MaxRetries < 1 {
		return fmt.Errorf("backpack.max_retries must be at least 1")
	}
	if c.Backpack.RetryDelay <= 0 {
		return fmt.Errorf("backpack.retry_delay must be positive")
	}
	if c.Backpack.MaxClassifiedsPages < 1 {
		return fmt.Errorf("backpack.max_classifieds_pages must be at least 1")
	}

	if c.Pricing.Policy != "avg23" && c.Pricing.Policy != "first" {
		return fmt.Errorf("pricing.policy must be one of: avg23, first")
	}
	if c.Pricing.KeyRateOverride < 0 {
		return fmt.Errorf("pricing.key_rate_override must not be negative")
	}
	if c.Pricing.ReferenceItem == "" {
		return fmt.Errorf("pricing.reference_item is required")
	}
	if c.Pricing.KitCostSpecialized <= 0 || c.Pricing.KitCostProfessional <= 0 {
		return fmt.Errorf("pricing kit costs must be positive")
	}

	if len(c.Arbitrage.Items) == 0 {
		return fmt.Errorf("arbitrage.items must contain at least one item")
	}
	if len(c.Arbitrage.Kits) == 0 {
		return fmt.Errorf("arbitrage.kits must contain at least one kit")
	}
	for _, kit := range c.Arbitrage.Kits {
		if kit != "specialized" && kit != "professional" {
			return fmt.Errorf("arbitrage.kits entries must be one of: specialized, professional")
		}
	}
	if c.Arbitrage.Concurrency < 1 {
		return fmt.Errorf("arbitrage.concurrency must be at least 1")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	if c.Storage.FilePath == "" {
		return fmt.Errorf("storage.file_path is required")
	}
	if c.Storage.MaxReports < 1 {
		return fmt.Errorf("storage.max_reports must be at least 1")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
