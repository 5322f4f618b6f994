package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies OPTADVISOR_* environment variable overrides,
// and returns the final Config. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load. An empty path skips
// the file and uses defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known OPTADVISOR_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Kite ──
	setStr(&cfg.Kite.BaseURL, "OPTADVISOR_KITE_BASE_URL")
	setStr(&cfg.Kite.APIKey, "OPTADVISOR_KITE_API_KEY")

	// ── NewsAPI ──
	setStr(&cfg.NewsAPI.BaseURL, "OPTADVISOR_NEWSAPI_BASE_URL")
	setStr(&cfg.NewsAPI.APIKey, "OPTADVISOR_NEWSAPI_API_KEY")
	setStr(&cfg.NewsAPI.APIKey, "NEWS_API_KEY") // compatibility alias
	setStringSlice(&cfg.NewsAPI.UserLinks, "OPTADVISOR_NEWSAPI_USER_LINKS")

	// ── LLM ──
	setStr(&cfg.LLM.Provider, "OPTADVISOR_LLM_PROVIDER")
	setStr(&cfg.LLM.APIKey, "OPTADVISOR_LLM_API_KEY")
	setStr(&cfg.LLM.Model, "OPTADVISOR_LLM_MODEL")
	setStr(&cfg.LLM.BaseURL, "OPTADVISOR_LLM_BASE_URL")

	// ── Event log ──
	setStr(&cfg.EventLog.Backend, "OPTADVISOR_EVENTLOG_BACKEND")
	setStr(&cfg.EventLog.Path, "OPTADVISOR_EVENTLOG_PATH")
	setStr(&cfg.EventLog.DSN, "OPTADVISOR_EVENTLOG_DSN")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "OPTADVISOR_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "OPTADVISOR_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "OPTADVISOR_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "OPTADVISOR_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "OPTADVISOR_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "OPTADVISOR_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "OPTADVISOR_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "OPTADVISOR_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "OPTADVISOR_S3_REGION")
	setStr(&cfg.S3.Bucket, "OPTADVISOR_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "OPTADVISOR_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "OPTADVISOR_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "OPTADVISOR_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "OPTADVISOR_S3_FORCE_PATH_STYLE")
	setInt(&cfg.S3.ArchiveRetentionDays, "OPTADVISOR_S3_ARCHIVE_RETENTION_DAYS")

	// ── Scanner ──
	setStringSlice(&cfg.Scanner.StockList, "OPTADVISOR_SCANNER_STOCK_LIST")
	setFloat64(&cfg.Scanner.Filter.MinPremium, "OPTADVISOR_SCANNER_MIN_PREMIUM")
	setFloat64(&cfg.Scanner.Filter.MaxRisk, "OPTADVISOR_SCANNER_MAX_RISK")
	setFloat64(&cfg.Scanner.Filter.MinLiquidity, "OPTADVISOR_SCANNER_MIN_LIQUIDITY")
	setFloat64(&cfg.Scanner.Filter.MinTimeDecay, "OPTADVISOR_SCANNER_MIN_TIME_DECAY")

	// ── Filters ──
	setFloat64(&cfg.Filters.MinSSR, "OPTADVISOR_FILTERS_MIN_SSR")
	setFloat64(&cfg.Filters.MinPremium, "OPTADVISOR_FILTERS_MIN_PREMIUM")
	setFloat64(&cfg.Filters.MinROM, "OPTADVISOR_FILTERS_MIN_ROM")
	setInt(&cfg.Filters.MaxRisk, "OPTADVISOR_FILTERS_MAX_RISK")

	// ── Server ──
	setInt(&cfg.Server.Port, "OPTADVISOR_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "OPTADVISOR_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "OPTADVISOR_SERVER_API_KEY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "OPTADVISOR_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "OPTADVISOR_NOTIFY_TELEGRAM_CHAT_ID")
	setStringSlice(&cfg.Notify.Events, "OPTADVISOR_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "OPTADVISOR_MODE")
	setStr(&cfg.LogLevel, "OPTADVISOR_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
