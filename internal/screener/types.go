package screener

import (
	"errors"
	"log/slog"
	"time"

	"github.com/rickgao/tokenscope/internal/model"
)

// ErrTokenNotFound is returned when selecting an id that is not in the store.
var ErrTokenNotFound = errors.New("token not found")

// Publisher receives every applied price update.
type Publisher interface {
	Publish(u model.PriceUpdate)
}

// PublisherFunc is a function adapter for Publisher.
type PublisherFunc func(model.PriceUpdate)

func (f PublisherFunc) Publish(u model.PriceUpdate) {
	f(u)
}

// Observer receives pipeline measurements. Satisfied by *metrics.Metrics.
type Observer interface {
	FeedTick(updates int)
	Update(result string)
	Recompute(d time.Duration, rows int)
	SetTokens(n int)
	SetListeners(n int)
}

// Update outcomes reported to the Observer.
const (
	resultApplied  = "applied"
	resultUnknown  = "unknown"
	resultRejected = "rejected"
)

// Status is a point-in-time view of the session's presentation state.
type Status struct {
	Loading     bool           `json:"isLoading"`
	Error       string         `json:"error,omitempty"`
	LastFetchAt int64          `json:"lastFetchAt,omitempty"` // ms since epoch
	Tokens      int            `json:"tokenCount"`
	Connected   bool           `json:"connected"`
	SelectedID  string         `json:"selectedTokenId,omitempty"`
	DetailsOpen bool           `json:"isDetailsOpen"`
	HoveredID   string         `json:"hoveredTokenId,omitempty"`
	Criteria    model.Criteria `json:"criteria"`
	Applied     int64          `json:"appliedUpdates"`
	Unknown     int64          `json:"unknownUpdates"`
	Rejected    int64          `json:"rejectedUpdates"`
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithObserver installs a measurement observer.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		s.observer = o
	}
}

// WithClock overrides the clock used for fetch timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}
