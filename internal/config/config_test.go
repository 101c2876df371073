package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-screener
provider:
  kind: http
  rest_url: https://tokens.example.com
feed:
  min_interval: 500ms
  max_interval: 1s
database:
  catalog:
    host: localhost
    port: 5432
    name: tokens
    user: testuser
    password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-screener" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-screener")
	}
	if cfg.Provider.Kind != ProviderHTTP {
		t.Errorf("Provider.Kind = %q, want %q", cfg.Provider.Kind, ProviderHTTP)
	}
	if cfg.Provider.RestURL != "https://tokens.example.com" {
		t.Errorf("Provider.RestURL = %q", cfg.Provider.RestURL)
	}
	if cfg.Feed.MinInterval != 500*time.Millisecond {
		t.Errorf("Feed.MinInterval = %v, want 500ms", cfg.Feed.MinInterval)
	}
	if cfg.Database.Catalog.Host != "localhost" {
		t.Errorf("Database.Catalog.Host = %q, want %q", cfg.Database.Catalog.Host, "localhost")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
instance:
  id: test-screener
database:
  catalog:
    host: localhost
    name: tokens
    user: testuser
    password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Catalog.Password != "secret123" {
		t.Errorf("Database.Catalog.Password = %q, want %q", cfg.Database.Catalog.Password, "secret123")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "instance:\n  id: test-screener\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Provider.Kind != ProviderMock {
		t.Errorf("Provider.Kind = %q, want default %q", cfg.Provider.Kind, ProviderMock)
	}
	if cfg.Provider.Count != DefaultMockCount {
		t.Errorf("Provider.Count = %d, want default %d", cfg.Provider.Count, DefaultMockCount)
	}
	if cfg.Feed.MinInterval != DefaultFeedMinInterval || cfg.Feed.MaxInterval != DefaultFeedMaxInterval {
		t.Errorf("Feed intervals = %v..%v, want defaults", cfg.Feed.MinInterval, cfg.Feed.MaxInterval)
	}
	if cfg.Feed.MaxChange != DefaultMaxChange {
		t.Errorf("Feed.MaxChange = %v, want default %v", cfg.Feed.MaxChange, DefaultMaxChange)
	}
	if cfg.Poller.Interval != DefaultPollInterval {
		t.Errorf("Poller.Interval = %v, want default %v", cfg.Poller.Interval, DefaultPollInterval)
	}
	if cfg.Database.Catalog.Port != DefaultDBPort {
		t.Errorf("Database.Catalog.Port = %d, want default %d", cfg.Database.Catalog.Port, DefaultDBPort)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Server.Port = %d, want default %d", cfg.Server.Port, DefaultServerPort)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestDefault(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default() should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	validDB := DBConfig{Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 10, MinConns: 2}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "missing instance id",
			mutate:  func(c *Config) { c.Instance.ID = "" },
			wantErr: "instance.id is required",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider.Kind = "ftp" },
			wantErr: `provider.kind must be one of mock, http, postgres, got "ftp"`,
		},
		{
			name:    "postgres provider needs catalog",
			mutate:  func(c *Config) { c.Provider.Kind = ProviderPostgres },
			wantErr: "database.catalog.host is required",
		},
		{
			name: "archive needs catalog password",
			mutate: func(c *Config) {
				c.Archive.Enabled = true
				c.Database.Catalog = DBConfig{Host: "localhost", Name: "db", User: "user", MaxConns: 1}
			},
			wantErr: "database.catalog.password is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *Config) {
				c.Provider.Kind = ProviderPostgres
				c.Database.Catalog = validDB
				c.Database.Catalog.MinConns = 20
			},
			wantErr: "database.catalog.min_conns (20) cannot exceed max_conns (10)",
		},
		{
			name: "postgres provider with catalog",
			mutate: func(c *Config) {
				c.Provider.Kind = ProviderPostgres
				c.Database.Catalog = validDB
			},
			wantErr: "",
		},
		{
			name:    "inverted feed interval",
			mutate:  func(c *Config) { c.Feed.MaxInterval = time.Second },
			wantErr: "feed.max_interval (1s) cannot be less than min_interval (2s)",
		},
		{
			name:    "max change out of range",
			mutate:  func(c *Config) { c.Feed.MaxChange = 1.5 },
			wantErr: "feed.max_change must be in (0, 1), got 1.5",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port must be between 1 and 65535, got 70000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := (LogConfig{Level: tt.in}).SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
