package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/tokenscope/internal/model"
	"github.com/rickgao/tokenscope/internal/provider"
)

// BatchHandler receives fetch results.
type BatchHandler interface {
	HandleBatch(tokens []model.Token) error
	HandleFetchError(err *provider.FetchError)
}

// FetchObserver is notified about each fetch. Optional.
type FetchObserver interface {
	FetchStarted()
	FetchFinished(d time.Duration, err error)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Poll interval (default: 30s)
	Timeout  time.Duration // Per-fetch timeout (default: 10s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 30 * time.Second,
		Timeout:  10 * time.Second,
	}
}

// Poller periodically fetches token batches from a provider.
type Poller struct {
	cfg      Config
	provider provider.Provider
	handler  BatchHandler
	observer FetchObserver
	logger   *slog.Logger

	trigger chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, p provider.Provider, handler BatchHandler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:      cfg,
		provider: p,
		handler:  handler,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

// SetObserver installs a fetch observer. Call before Start.
func (p *Poller) SetObserver(o FetchObserver) {
	p.observer = o
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("batch poller started", "interval", p.cfg.Interval)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("batch poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Refresh requests an immediate fetch. Requests made while one is already
// pending are coalesced.
func (p *Poller) Refresh() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.poll()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.poll()
		case <-p.trigger:
			p.poll()
			ticker.Reset(p.cfg.Interval)
		}
	}
}

// poll performs one fetch and hands the result to the handler.
func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	if p.observer != nil {
		p.observer.FetchStarted()
	}

	start := time.Now()
	tokens, err := p.provider.Fetch(ctx)
	if err == nil && p.handler != nil {
		err = p.handler.HandleBatch(tokens)
	}

	if p.observer != nil {
		p.observer.FetchFinished(time.Since(start), err)
	}

	if err != nil {
		if p.ctx.Err() != nil {
			return
		}
		fe := provider.AsFetchError("poller", err)
		p.logger.Warn("token fetch failed", "err", fe)
		if p.handler != nil {
			p.handler.HandleFetchError(fe)
		}
		return
	}

	p.logger.Debug("poll cycle complete",
		"tokens", len(tokens),
		"duration", time.Since(start),
	)
}
