package feed

import (
	"log/slog"
	"time"

	"github.com/rickgao/tokenscope/internal/model"
)

// Listener receives delivered price updates. It is invoked on the delivery
// goroutine and must not block for long.
type Listener func(model.PriceUpdate)

// PriceSource provides the current price a perturbation is applied to.
type PriceSource interface {
	Price(id string) (float64, bool)
}

// Config configures a Channel.
type Config struct {
	MinInterval       time.Duration // Lower bound of the jittered tick interval
	MaxInterval       time.Duration // Upper bound of the jittered tick interval
	MaxUpdatesPerTick int           // Each tick updates 1..MaxUpdatesPerTick tokens
	MaxChange         float64       // Max relative perturbation per update (0.05 = ±5%)
	Seed              uint64        // 0 = seed from the clock
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MinInterval:       2 * time.Second,
		MaxInterval:       5 * time.Second,
		MaxUpdatesPerTick: 3,
		MaxChange:         0.05,
	}
}

// Stats contains runtime statistics.
type Stats struct {
	Ticks     int64 // Ticks that dispatched at least one update
	Delivered int64 // Updates broadcast (counted once per update, not per listener)
	Listeners int
	Connected bool
	ScopeSize int
}

// Option configures a Channel.
type Option func(*Channel)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Channel) {
		c.logger = logger
	}
}

// WithPriceSource sets where current prices are read from. Without one,
// each update perturbs a random base price.
func WithPriceSource(src PriceSource) Option {
	return func(c *Channel) {
		c.prices = src
	}
}

// WithTickHook sets a callback invoked after each tick with the number of
// updates it delivered.
func WithTickHook(fn func(updates int)) Option {
	return func(c *Channel) {
		c.onTick = fn
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Channel) {
		c.now = now
	}
}
