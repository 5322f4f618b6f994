// Package config defines the top-level configuration for the advisor and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"

	"github.com/sidkap/optadvisor/internal/domain"
	"github.com/sidkap/optadvisor/internal/scanner"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by OPTADVISOR_* environment
// variables.
type Config struct {
	Kite     KiteConfig               `toml:"kite"`
	NewsAPI  NewsAPIConfig            `toml:"newsapi"`
	LLM      LLMConfig                `toml:"llm"`
	EventLog EventLogConfig           `toml:"eventlog"`
	Redis    RedisConfig              `toml:"redis"`
	S3       S3Config                 `toml:"s3"`
	Scanner  ScannerConfig            `toml:"scanner"`
	Filters  domain.FilterConstraints `toml:"filters"`
	Server   ServerConfig             `toml:"server"`
	Notify   NotifyConfig             `toml:"notify"`
	Mode     string                   `toml:"mode"`
	LogLevel string                   `toml:"log_level"`
}

// KiteConfig holds the market data provider endpoint and credentials.
type KiteConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// NewsAPIConfig holds the NewsAPI credentials and any user-supplied article
// links to include in the analysis context.
type NewsAPIConfig struct {
	BaseURL   string   `toml:"base_url"`
	APIKey    string   `toml:"api_key"`
	UserLinks []string `toml:"user_links"`
}

// LLMConfig selects the language-model provider and model.
type LLMConfig struct {
	Provider string `toml:"provider"` // "openai" or "deepseek"
	APIKey   string `toml:"api_key"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"` // optional override for compatible endpoints
}

// EventLogConfig selects the event-log backend. The file backend needs only
// a path; the postgres backend needs a DSN.
type EventLogConfig struct {
	Backend string `toml:"backend"` // "file" or "postgres"
	Path    string `toml:"path"`
	DSN     string `toml:"dsn"`
}

// RedisConfig holds Redis connection parameters for the snapshot cache.
// An empty Addr disables caching.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for event-log
// archival. Archival is disabled unless Enabled is set.
type S3Config struct {
	Enabled              bool   `toml:"enabled"`
	Endpoint             string `toml:"endpoint"`
	Region               string `toml:"region"`
	Bucket               string `toml:"bucket"`
	AccessKey            string `toml:"access_key"`
	SecretKey            string `toml:"secret_key"`
	UseSSL               bool   `toml:"use_ssl"`
	ForcePathStyle       bool   `toml:"force_path_style"`
	ArchiveRetentionDays int    `toml:"archive_retention_days"`
}

// ScannerConfig holds the scan universe and chain thresholds.
type ScannerConfig struct {
	StockList []string           `toml:"stock_list"`
	Filter    domain.ChainFilter `toml:"filter"`
}

// ServerConfig holds the HTTP API server parameters for serve mode.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
}

// NotifyConfig holds notification channel credentials and the event filter.
type NotifyConfig struct {
	TelegramToken  string   `toml:"telegram_token"`
	TelegramChatID string   `toml:"telegram_chat_id"`
	Events         []string `toml:"events"`
}

// validModes are the analysis modes the CLI accepts.
var validModes = map[string]bool{
	"full":      true,
	"quick":     true,
	"risk":      true,
	"positions": true,
	"sentiment": true,
	"serve":     true,
}

// validLogLevels for the slog handler.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Defaults returns the built-in configuration. A TOML file and environment
// overrides are merged on top of this.
func Defaults() Config {
	return Config{
		Kite: KiteConfig{
			BaseURL: "http://localhost:8080",
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o",
		},
		EventLog: EventLogConfig{
			Backend: "file",
			Path:    "recommendation_events.jsonl",
		},
		Redis: RedisConfig{
			Addr:       "",
			PoolSize:   10,
			MaxRetries: 3,
		},
		S3: S3Config{
			Region:               "us-east-1",
			ForcePathStyle:       true,
			ArchiveRetentionDays: 90,
		},
		Scanner: ScannerConfig{
			StockList: scanner.DefaultStockList,
			Filter:    scanner.DefaultChainFilter,
		},
		Filters: domain.FilterConstraints{
			MinSSR:     0.02,
			MinPremium: 0.05,
			MinROM:     0.05,
			MaxRisk:    7,
		},
		Server: ServerConfig{
			Port: 8090,
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// Validate checks the configuration for the selected mode. All problems are
// reported at once so operators fix the file in one pass.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: full, quick, risk, positions, sentiment, serve)", c.Mode))
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Kite.BaseURL == "" {
		errs = append(errs, "kite: base_url must not be empty")
	}

	// The LLM drives full, sentiment, and serve modes; the rest run without it.
	needsLLM := c.Mode == "full" || c.Mode == "sentiment" || c.Mode == "serve"
	if needsLLM {
		if c.LLM.Provider != "openai" && c.LLM.Provider != "deepseek" {
			errs = append(errs, fmt.Sprintf("llm: provider must be openai or deepseek, got %q", c.LLM.Provider))
		}
		if c.LLM.APIKey == "" {
			errs = append(errs, "llm: api_key is required for mode "+c.Mode)
		}
	}

	switch c.EventLog.Backend {
	case "file":
		if c.EventLog.Path == "" {
			errs = append(errs, "eventlog: path must not be empty for the file backend")
		}
	case "postgres":
		if c.EventLog.DSN == "" {
			errs = append(errs, "eventlog: dsn must not be empty for the postgres backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("eventlog: backend must be file or postgres, got %q", c.EventLog.Backend))
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when archival is enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when archival is enabled")
		}
		if c.S3.ArchiveRetentionDays <= 0 {
			errs = append(errs, "s3: archive_retention_days must be positive")
		}
	}

	if len(c.Scanner.StockList) == 0 {
		errs = append(errs, "scanner: stock_list must not be empty")
	}
	if c.Scanner.Filter.MinPremium < 0 || c.Scanner.Filter.MaxRisk < 0 {
		errs = append(errs, "scanner: filter thresholds must be non-negative")
	}

	if err := c.Filters.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if c.Mode == "serve" {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	// Telegram credentials must come as a pair.
	tt := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tt != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
