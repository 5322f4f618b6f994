package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	s3blob "github.com/sidkap/optadvisor/internal/blob/s3"
	"github.com/sidkap/optadvisor/internal/cache"
	"github.com/sidkap/optadvisor/internal/cache/redis"
	"github.com/sidkap/optadvisor/internal/config"
	"github.com/sidkap/optadvisor/internal/domain"
	"github.com/sidkap/optadvisor/internal/eventlog"
	"github.com/sidkap/optadvisor/internal/feedback"
	"github.com/sidkap/optadvisor/internal/notify"
	"github.com/sidkap/optadvisor/internal/platform/kite"
	"github.com/sidkap/optadvisor/internal/platform/llm"
	"github.com/sidkap/optadvisor/internal/platform/newsapi"
	"github.com/sidkap/optadvisor/internal/recommend"
	"github.com/sidkap/optadvisor/internal/scanner"
	"github.com/sidkap/optadvisor/internal/sentiment"
)

// Dependencies bundles every domain-level dependency that the application
// modes need. It is constructed by Wire and torn down by the returned cleanup
// function.
type Dependencies struct {
	// Event log
	EventStore domain.EventStore

	// Market data (wrapped in a cache decorator when Redis is configured)
	Provider domain.MarketDataProvider

	// News and language model
	News      domain.NewsProvider
	Completer domain.TextCompleter

	// Analysis components
	NewsAnalyst   *sentiment.Analyst
	MarketAnalyst *sentiment.MarketAnalyst
	Miner         *feedback.Miner
	Scanner       *scanner.Scanner
	Engine        *recommend.Engine

	// Cold storage
	Archiver *s3blob.Archiver

	// Notifications
	Notifier *notify.Notifier
}

// needsLLM returns true for modes that call the language model.
func needsLLM(mode string) bool {
	switch mode {
	case "full", "sentiment", "serve":
		return true
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function to call on
// shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Event log ---
	switch cfg.EventLog.Backend {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.EventLog.DSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres pool: %w", err)
		}
		closers = append(closers, pool.Close)
		if err := pool.Ping(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres ping: %w", err)
		}
		store := eventlog.NewPostgresStore(pool, logger)
		if err := store.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres schema: %w", err)
		}
		deps.EventStore = store
	default:
		deps.EventStore = eventlog.NewFileStore(cfg.EventLog.Path, logger)
	}

	// --- Market data provider ---
	var provider domain.MarketDataProvider = kite.NewClient(cfg.Kite.BaseURL, cfg.Kite.APIKey)

	// --- Redis snapshot cache (optional) ---
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		provider = cache.NewCachedProvider(provider, redis.NewSnapshotCache(redisClient), logger)
	}
	deps.Provider = provider

	// --- News ---
	deps.News = newsapi.NewClient(cfg.NewsAPI.BaseURL, cfg.NewsAPI.APIKey)

	// --- Language model (only for modes that prompt it) ---
	if needsLLM(cfg.Mode) {
		completer, err := llm.NewClient(llm.Config{
			Provider: cfg.LLM.Provider,
			APIKey:   cfg.LLM.APIKey,
			Model:    cfg.LLM.Model,
			BaseURL:  cfg.LLM.BaseURL,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: llm: %w", err)
		}
		deps.Completer = completer
	}

	// --- Analysis components ---
	deps.NewsAnalyst = sentiment.NewAnalyst(deps.Completer, deps.News, logger)
	deps.MarketAnalyst = sentiment.NewMarketAnalyst(deps.Provider, logger)
	deps.Miner = feedback.NewMiner(deps.EventStore, logger)
	deps.Scanner = scanner.New(deps.Provider, logger)
	deps.Engine = recommend.NewEngine(deps.Provider, deps.MarketAnalyst, logger)

	// --- S3 archival (optional) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client), deps.EventStore, logger)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" {
		senders = append(senders,
			notify.NewTelegramSender("", cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
