package config

import "time"

// Config is the root configuration for a screener instance.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	Provider ProviderConfig `yaml:"provider"`
	Database DatabaseConfig `yaml:"database"`
	Feed     FeedConfig     `yaml:"feed"`
	Poller   PollerConfig   `yaml:"poller"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// InstanceConfig identifies this screener.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// Provider kinds.
const (
	ProviderMock     = "mock"
	ProviderHTTP     = "http"
	ProviderPostgres = "postgres"
)

// ProviderConfig selects and configures the initial batch provider.
type ProviderConfig struct {
	Kind string `yaml:"kind"` // mock | http | postgres

	// http
	RestURL    string        `yaml:"rest_url"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`

	// mock
	Count   int           `yaml:"count"`
	Latency time.Duration `yaml:"latency"`
	Seed    uint64        `yaml:"seed"`
}

// DatabaseConfig holds the Postgres connection used by the catalog
// provider and the price tick archive.
type DatabaseConfig struct {
	Catalog DBConfig `yaml:"catalog"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// FeedConfig holds price feed simulation settings.
type FeedConfig struct {
	MinInterval       time.Duration `yaml:"min_interval"`
	MaxInterval       time.Duration `yaml:"max_interval"`
	MaxUpdatesPerTick int           `yaml:"max_updates_per_tick"`
	MaxChange         float64       `yaml:"max_change"`
	Seed              uint64        `yaml:"seed"`
}

// PollerConfig holds batch refetch settings.
type PollerConfig struct {
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ArchiveConfig holds price tick archive settings.
type ArchiveConfig struct {
	Enabled       bool          `yaml:"enabled"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
}
