package view

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/tokenscope/internal/model"
)

// TokenSource provides the canonical token list in store order.
type TokenSource interface {
	Snapshot() []model.Token
}

// Engine holds the current criteria and the last derived view.
// Every setter triggers a full recomputation; recomputations are serialized.
type Engine struct {
	src         TokenSource
	logger      *slog.Logger
	onRecompute func(d time.Duration, size int)

	mu         sync.Mutex
	criteria   model.Criteria
	view       []model.Token
	recomputes int64
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRecomputeHook sets a callback invoked after every recomputation.
func WithRecomputeHook(fn func(d time.Duration, size int)) EngineOption {
	return func(e *Engine) {
		e.onRecompute = fn
	}
}

// NewEngine creates an Engine over src with the "all" filter, no search and
// no sort.
func NewEngine(src TokenSource, opts ...EngineOption) *Engine {
	e := &Engine{
		src:      src,
		logger:   slog.Default(),
		criteria: model.Criteria{Category: model.FilterAll},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Refresh recomputes the view after the token set changed.
func (e *Engine) Refresh() []model.Token {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recomputeLocked()
}

// SetCategory changes the category filter and recomputes.
func (e *Engine) SetCategory(f model.CategoryFilter) []model.Token {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.criteria.Category = f
	return e.recomputeLocked()
}

// SetSearch changes the search text and recomputes.
func (e *Engine) SetSearch(text string) []model.Token {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.criteria.Search = text
	return e.recomputeLocked()
}

// SetSort changes the sort config and recomputes. nil restores store order.
func (e *Engine) SetSort(sc *model.SortConfig) []model.Token {
	e.mu.Lock()
	defer e.mu.Unlock()

	if sc != nil {
		cp := *sc
		sc = &cp
	}
	e.criteria.Sort = sc
	return e.recomputeLocked()
}

// SetCriteria replaces all criteria at once and recomputes.
func (e *Engine) SetCriteria(c model.Criteria) []model.Token {
	e.mu.Lock()
	defer e.mu.Unlock()

	if c.Category == "" {
		c.Category = model.FilterAll
	}
	if c.Sort != nil {
		cp := *c.Sort
		c.Sort = &cp
	}
	e.criteria = c
	return e.recomputeLocked()
}

// View returns a copy of the last derived view.
func (e *Engine) View() []model.Token {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.Token(nil), e.view...)
}

// Criteria returns a copy of the current criteria.
func (e *Engine) Criteria() model.Criteria {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.criteria
	if c.Sort != nil {
		cp := *c.Sort
		c.Sort = &cp
	}
	return c
}

// Recomputes returns how many times the view has been derived.
func (e *Engine) Recomputes() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recomputes
}

// recomputeLocked derives a new view (caller must hold mu).
func (e *Engine) recomputeLocked() []model.Token {
	start := time.Now()

	e.view = Derive(e.src.Snapshot(), e.criteria)
	e.recomputes++

	if e.onRecompute != nil {
		e.onRecompute(time.Since(start), len(e.view))
	}

	return append([]model.Token(nil), e.view...)
}
