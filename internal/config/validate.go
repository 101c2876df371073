package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	switch c.Provider.Kind {
	case ProviderMock:
		if c.Provider.Count < 1 {
			return errors.New("provider.count must be >= 1")
		}
	case ProviderHTTP:
		if c.Provider.RestURL == "" {
			return errors.New("provider.rest_url is required")
		}
		if c.Provider.MaxRetries < 0 {
			return errors.New("provider.max_retries must be >= 0")
		}
	case ProviderPostgres:
	default:
		return fmt.Errorf("provider.kind must be one of mock, http, postgres, got %q", c.Provider.Kind)
	}

	if c.NeedsDatabase() {
		if err := c.Database.Catalog.validate("database.catalog"); err != nil {
			return err
		}
	}

	if c.Feed.MinInterval <= 0 {
		return errors.New("feed.min_interval must be > 0")
	}
	if c.Feed.MaxInterval < c.Feed.MinInterval {
		return fmt.Errorf("feed.max_interval (%s) cannot be less than min_interval (%s)", c.Feed.MaxInterval, c.Feed.MinInterval)
	}
	if c.Feed.MaxUpdatesPerTick < 1 {
		return errors.New("feed.max_updates_per_tick must be >= 1")
	}
	if c.Feed.MaxChange <= 0 || c.Feed.MaxChange >= 1 {
		return fmt.Errorf("feed.max_change must be in (0, 1), got %v", c.Feed.MaxChange)
	}

	if c.Poller.Interval <= 0 {
		return errors.New("poller.interval must be > 0")
	}

	if c.Archive.Enabled {
		if c.Archive.BatchSize < 1 {
			return errors.New("archive.batch_size must be >= 1")
		}
		if c.Archive.BufferSize < 1 {
			return errors.New("archive.buffer_size must be >= 1")
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
