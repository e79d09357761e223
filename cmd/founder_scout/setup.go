package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/founder-scout/internal/config"
	"github.com/jonathan/founder-scout/internal/db"
	"github.com/jonathan/founder-scout/internal/dedupe"
	"github.com/jonathan/founder-scout/internal/extraction"
	"github.com/jonathan/founder-scout/internal/fetch"
	"github.com/jonathan/founder-scout/internal/filter"
	"github.com/jonathan/founder-scout/internal/logger"
	"github.com/jonathan/founder-scout/internal/pipeline"
	"github.com/jonathan/founder-scout/internal/sqlitedb"
	"github.com/jonathan/founder-scout/internal/types"
)

// store is everything the commands need from a persistence adapter.
type store interface {
	pipeline.Store
	dedupe.Store
	fetch.PageCache
	FindOrCreateOrganization(ctx context.Context, org types.OrganizationRecord) (*types.OrganizationRecord, bool, error)
	GetOrganization(ctx context.Context, id uuid.UUID) (*types.OrganizationRecord, error)
}

var errNoStore = errors.New("no store configured: pass --database-url or --sqlite (or set DATABASE_URL / SQLITE_PATH)")

// resolveConfig layers the config file, environment and explicitly set flags
// over the built-in defaults.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if globalConfigPath != "" {
		loaded, err := config.LoadConfig(globalConfigPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	flags := cmd.Flags()
	if flags.Changed("database-url") {
		cfg.DatabaseURL = globalDatabaseURL
		cfg.SQLitePath = ""
	}
	if flags.Changed("sqlite") {
		cfg.SQLitePath = globalSQLitePath
		cfg.DatabaseURL = ""
	}
	if cfg.DatabaseURL == "" && cfg.SQLitePath == "" {
		if url := os.Getenv("DATABASE_URL"); url != "" {
			cfg.DatabaseURL = url
		} else {
			cfg.SQLitePath = os.Getenv("SQLITE_PATH")
		}
	}
	if flags.Changed("extraction-config") {
		cfg.ExtractionConfig = globalExtractionConfig
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = globalLogLevel
	}
	if flags.Changed("verbose") {
		cfg.Verbose = globalVerbose
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	if cfg.Verbose && !flags.Changed("log-level") {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.Verbose})
}

// openStore connects to Postgres or opens the SQLite file, applying the schema.
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (store, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		log.Debug("connected to postgres")
		return database, database.Close, nil
	case cfg.SQLitePath != "":
		local, err := sqlitedb.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Debug("opened sqlite store", zap.String("path", cfg.SQLitePath))
		return local, func() {
			if err := local.Close(); err != nil {
				log.Warn("closing sqlite store", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, errNoStore
	}
}

// newExtraction loads the tuning data and builds the extractor and noise filter.
func newExtraction(cfg config.Config, log *zap.Logger) (*extraction.Extractor, *filter.Filter, error) {
	rules, err := config.LoadExtractionConfig(cfg.ExtractionConfig)
	if err != nil {
		return nil, nil, err
	}
	ex, err := extraction.New(rules, log)
	if err != nil {
		return nil, nil, err
	}
	return ex, filter.New(rules, log), nil
}

// newFetcher builds cache(retry(http|browser)). cache may be nil.
func newFetcher(cfg config.Config, cache fetch.PageCache, log *zap.Logger) fetch.Fetcher {
	httpOpts := fetch.DefaultOptions()
	httpOpts.Timeout = cfg.FetchTimeout.Std()
	httpFetcher := fetch.NewHTTPFetcher(httpOpts)

	browser := fetch.NewBrowserFetcher(fetch.BrowserOptions{
		Timeout:    cfg.FetchTimeout.Std(),
		RenderWait: cfg.RenderWait.Std(),
		Scroll:     true,
		Logger:     log,
	})

	var base fetch.Fetcher = &fetch.AutoFetcher{HTTP: httpFetcher, Browser: browser, Logger: log}
	if cfg.UseBrowser {
		base = browser
	}

	retrying := fetch.NewRetryingFetcher(base, cfg.MaxRetries, log)
	return fetch.NewCachedFetcher(retrying, cache, &fetch.CachedFetcherConfig{
		CacheTTL: cfg.CacheTTL.Std(),
		Logger:   log,
	})
}

func runOptions(cfg config.Config) pipeline.Options {
	return pipeline.Options{
		Concurrency:    cfg.Concurrency,
		RequestDelay:   cfg.RequestDelay.Std(),
		FetchTimeout:   fetchBound(cfg),
		AliasThreshold: cfg.AliasThreshold,
		StaleAfter:     cfg.StaleAfter.Std(),
		PeopleFallback: true,
	}
}

// fetchBound is the outer per-page deadline. Retries and a browser render
// must fit inside it, so it is looser than the single-request timeout.
func fetchBound(cfg config.Config) time.Duration {
	perTry := cfg.FetchTimeout.Std() + cfg.RenderWait.Std()
	return perTry * time.Duration(cfg.MaxRetries+1)
}
