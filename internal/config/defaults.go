package config

import (
	"log/slog"
	"strings"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultProviderKind      = ProviderMock
	DefaultRestURL           = "http://localhost:8081"
	DefaultAPITimeout        = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultMockCount         = 50
	DefaultMockLatency       = 1 * time.Second
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
	DefaultFeedMinInterval   = 2 * time.Second
	DefaultFeedMaxInterval   = 5 * time.Second
	DefaultMaxUpdatesPerTick = 3
	DefaultMaxChange         = 0.05
	DefaultPollInterval      = 30 * time.Second
	DefaultPollTimeout       = 10 * time.Second
	DefaultBatchSize         = 500
	DefaultFlushInterval     = 1 * time.Second
	DefaultBufferSize        = 10000
	DefaultServerPort        = 8080
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultMetricsPath       = "/metrics"
	DefaultLogLevel          = "info"
)

func (c *Config) applyDefaults() {
	// Provider defaults
	if c.Provider.Kind == "" {
		c.Provider.Kind = DefaultProviderKind
	}
	if c.Provider.RestURL == "" {
		c.Provider.RestURL = DefaultRestURL
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = DefaultAPITimeout
	}
	if c.Provider.MaxRetries == 0 {
		c.Provider.MaxRetries = DefaultMaxRetries
	}
	if c.Provider.Count == 0 {
		c.Provider.Count = DefaultMockCount
	}
	if c.Provider.Latency == 0 {
		c.Provider.Latency = DefaultMockLatency
	}

	applyDBDefaults(&c.Database.Catalog)

	// Feed defaults
	if c.Feed.MinInterval == 0 {
		c.Feed.MinInterval = DefaultFeedMinInterval
	}
	if c.Feed.MaxInterval == 0 {
		c.Feed.MaxInterval = DefaultFeedMaxInterval
	}
	if c.Feed.MaxUpdatesPerTick == 0 {
		c.Feed.MaxUpdatesPerTick = DefaultMaxUpdatesPerTick
	}
	if c.Feed.MaxChange == 0 {
		c.Feed.MaxChange = DefaultMaxChange
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.Timeout == 0 {
		c.Poller.Timeout = DefaultPollTimeout
	}

	// Archive defaults
	if c.Archive.BatchSize == 0 {
		c.Archive.BatchSize = DefaultBatchSize
	}
	if c.Archive.FlushInterval == 0 {
		c.Archive.FlushInterval = DefaultFlushInterval
	}
	if c.Archive.BufferSize == 0 {
		c.Archive.BufferSize = DefaultBufferSize
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}

// SlogLevel maps the configured level name to a slog.Level.
// Unknown names map to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NeedsDatabase reports whether any component uses the catalog database.
func (c *Config) NeedsDatabase() bool {
	return c.Provider.Kind == ProviderPostgres || c.Archive.Enabled
}
