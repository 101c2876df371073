package provider

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rickgao/tokenscope/internal/model"
)

// mockSymbols are cycled through when generating mock tokens.
var mockSymbols = []string{
	"ETH", "BTC", "SOL", "AVAX", "MATIC", "ADA", "DOT", "LINK", "UNI", "AAVE",
	"ATOM", "ALGO", "XTZ", "FIL", "THETA", "VET", "TRX", "EOS", "XLM", "XRP",
}

// MockConfig configures the Mock provider.
type MockConfig struct {
	Count   int           // Tokens per batch (default: 50)
	Latency time.Duration // Simulated fetch delay
	Seed    uint64        // 0 = seed from the clock
}

// DefaultMockConfig returns sensible defaults.
func DefaultMockConfig() MockConfig {
	return MockConfig{
		Count:   50,
		Latency: time.Second,
	}
}

// Mock generates random token batches. Ids are stable across batches
// (token-1..token-N) so the feed scope survives refetches.
type Mock struct {
	cfg MockConfig
	now func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMock creates a Mock provider.
func NewMock(cfg MockConfig) *Mock {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Mock{
		cfg: cfg,
		now: time.Now,
		rng: rand.New(rand.NewPCG(seed, seed+1)),
	}
}

// Fetch waits for the configured latency and returns a fresh batch.
func (m *Mock) Fetch(ctx context.Context) ([]model.Token, error) {
	if m.cfg.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, &FetchError{Source: "mock", Err: ctx.Err()}
		case <-time.After(m.cfg.Latency):
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UnixMilli()
	tokens := make([]model.Token, m.cfg.Count)
	for i := range tokens {
		tokens[i] = m.generate(i, now)
	}
	return tokens, nil
}

// generate builds token i (caller must hold mu).
func (m *Mock) generate(i int, now int64) model.Token {
	basePrice := m.rng.Float64()*1000 + 10
	change := (m.rng.Float64() - 0.5) * 20
	symbol := mockSymbols[i%len(mockSymbols)]
	week := int64(7 * 24 * time.Hour / time.Millisecond)

	return model.Token{
		ID:            fmt.Sprintf("token-%d", i+1),
		Symbol:        symbol,
		Name:          symbol + " Token",
		PairAddress:   m.pairAddress(),
		Category:      model.Categories[m.rng.IntN(len(model.Categories))],
		Price:         basePrice,
		PreviousPrice: basePrice - change,
		Volume24h:     m.rng.Float64()*10_000_000 + 100_000,
		MarketCap:     m.rng.Float64()*1_000_000_000 + 10_000_000,
		Liquidity:     m.rng.Float64()*5_000_000 + 50_000,
		CreatedAt:     now - m.rng.Int64N(week),
	}
}

// pairAddress returns a random 0x-prefixed 40 hex digit address.
func (m *Mock) pairAddress() string {
	const hex = "0123456789abcdef"
	b := make([]byte, 42)
	b[0], b[1] = '0', 'x'
	for i := 2; i < len(b); i++ {
		b[i] = hex[m.rng.IntN(16)]
	}
	return string(b)
}
