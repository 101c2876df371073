package feed

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/tokenscope/internal/model"
)

// Channel is a subscription-scoped source of price updates.
type Channel struct {
	cfg    Config
	logger *slog.Logger
	prices PriceSource
	onTick func(updates int)
	now    func() time.Time

	// State
	mu        sync.Mutex
	ids       []string
	listeners map[uuid.UUID]Listener
	connected bool
	closed    bool
	rng       *rand.Rand

	// gen identifies the current delivery goroutine. Bumped on every
	// Connect/Disconnect so a stale goroutine never dispatches.
	gen    uint64
	cancel context.CancelFunc

	// Serializes ticks so a tick never starts while listeners of the
	// previous one are still running.
	dispatchMu sync.Mutex

	wg      sync.WaitGroup
	running atomic.Int32

	ticks     atomic.Int64
	delivered atomic.Int64
}

// New creates a disconnected Channel.
func New(cfg Config, opts ...Option) *Channel {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	c := &Channel{
		cfg:       cfg,
		logger:    slog.Default(),
		now:       time.Now,
		listeners: make(map[uuid.UUID]Listener),
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Connect scopes future deliveries to ids, replacing any previous scope.
// Any pending timer is cancelled before a new one starts. An empty id set
// is legal and never fires.
func (c *Channel) Connect(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		c.logger.Debug("connect on closed feed channel ignored")
		return
	}

	c.stopLocked()
	c.ids = uniqueIDs(ids)
	c.connected = true

	if len(c.ids) == 0 {
		c.logger.Debug("feed channel connected with empty scope")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	gen := c.gen

	c.wg.Add(1)
	c.running.Add(1)
	go c.run(ctx, gen)

	c.logger.Debug("feed channel connected", "tokens", len(c.ids))
}

// Subscribe registers l for every future delivery. The returned function
// removes it; calling it more than once is harmless.
func (c *Channel) Subscribe(l Listener) (unsubscribe func()) {
	id := uuid.New()

	c.mu.Lock()
	c.listeners[id] = l
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// Disconnect cancels the pending timer and clears all listeners.
// It never blocks on an in-flight tick, so it is safe to call from a
// listener. Calling it while disconnected is a no-op.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected && len(c.listeners) == 0 {
		return
	}

	c.stopLocked()
	c.ids = nil
	c.connected = false
	clear(c.listeners)

	c.logger.Debug("feed channel disconnected")
}

// Close disconnects and waits for the delivery goroutine to exit.
// Must not be called from a listener.
func (c *Channel) Close() {
	c.Disconnect()

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()
}

// Connected reports whether Connect has been called since the last Disconnect.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Scope returns a copy of the connected id set.
func (c *Channel) Scope() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.ids...)
}

// Stats returns current statistics.
func (c *Channel) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Ticks:     c.ticks.Load(),
		Delivered: c.delivered.Load(),
		Listeners: len(c.listeners),
		Connected: c.connected,
		ScopeSize: len(c.ids),
	}
}

// stopLocked cancels the current delivery goroutine (caller must hold mu).
func (c *Channel) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
}

// run is the delivery loop for one connection generation.
func (c *Channel) run(ctx context.Context, gen uint64) {
	defer c.wg.Done()
	defer c.running.Add(-1)

	for {
		timer := time.NewTimer(c.nextInterval())

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if !c.tick(gen) {
			return
		}
	}
}

// tick generates and broadcasts one batch of updates.
// Returns false when gen is stale.
func (c *Channel) tick(gen uint64) bool {
	c.dispatchMu.Lock()
	defer c.dispatchMu.Unlock()

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return false
	}
	updates := c.generateLocked()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, u := range updates {
		for _, l := range listeners {
			l(u)
		}
	}

	if len(updates) > 0 {
		c.ticks.Add(1)
		c.delivered.Add(int64(len(updates)))
	}
	if c.onTick != nil {
		c.onTick(len(updates))
	}

	c.logger.Debug("feed tick", "updates", len(updates), "listeners", len(listeners))
	return true
}

// generateLocked picks 1..MaxUpdatesPerTick distinct ids and perturbs their
// prices (caller must hold mu).
func (c *Channel) generateLocked() []model.PriceUpdate {
	if len(c.ids) == 0 {
		return nil
	}

	maxUpdates := c.cfg.MaxUpdatesPerTick
	if maxUpdates < 1 {
		maxUpdates = 1
	}
	n := 1 + c.rng.IntN(maxUpdates)
	if n > len(c.ids) {
		n = len(c.ids)
	}

	ts := c.now().UnixMilli()
	order := c.rng.Perm(len(c.ids))
	updates := make([]model.PriceUpdate, 0, n)

	for _, idx := range order[:n] {
		id := c.ids[idx]
		base, ok := 0.0, false
		if c.prices != nil {
			base, ok = c.prices.Price(id)
		}
		if !ok || base <= 0 {
			base = c.rng.Float64()*1000 + 10
		}

		change := (c.rng.Float64() - 0.5) * 2 * c.cfg.MaxChange
		updates = append(updates, model.PriceUpdate{
			EntityID:  id,
			Price:     base * (1 + change),
			Timestamp: ts,
		})
	}

	return updates
}

// nextInterval draws a jittered delay in [MinInterval, MaxInterval].
func (c *Channel) nextInterval() time.Duration {
	lo, hi := c.cfg.MinInterval, c.cfg.MaxInterval
	if lo <= 0 {
		lo = time.Millisecond
	}
	if hi <= lo {
		return lo
	}

	c.mu.Lock()
	jitter := time.Duration(c.rng.Int64N(int64(hi - lo)))
	c.mu.Unlock()

	return lo + jitter
}

// uniqueIDs copies ids, dropping empties and duplicates.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
