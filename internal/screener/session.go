package screener

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/tokenscope/internal/feed"
	"github.com/rickgao/tokenscope/internal/model"
	"github.com/rickgao/tokenscope/internal/provider"
	"github.com/rickgao/tokenscope/internal/registry"
	"github.com/rickgao/tokenscope/internal/view"
)

// Session is one screener: store, feed, view and presentation state.
type Session struct {
	logger   *slog.Logger
	observer Observer
	now      func() time.Time

	store  *registry.Store
	feed   *feed.Channel
	engine *view.Engine
	sorter *view.SortController

	pubMu      sync.RWMutex
	publishers []Publisher

	// Presentation state
	mu          sync.Mutex
	loading     bool
	lastErr     *provider.FetchError
	lastFetch   time.Time
	selected    string
	detailsOpen bool
	hovered     string
	unsubscribe func()

	applied  atomic.Int64
	unknown  atomic.Int64
	rejected atomic.Int64
}

// New creates a session with an empty store and a disconnected feed.
func New(feedCfg feed.Config, opts ...Option) *Session {
	s := &Session{
		logger:  slog.Default(),
		now:     time.Now,
		store:   registry.NewStore(),
		sorter:  view.NewSortController(),
		loading: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	feedOpts := []feed.Option{
		feed.WithLogger(s.logger.With("component", "feed")),
		feed.WithPriceSource(s.store),
	}
	engineOpts := []view.EngineOption{
		view.WithLogger(s.logger.With("component", "view")),
	}
	if s.observer != nil {
		feedOpts = append(feedOpts, feed.WithTickHook(s.observer.FeedTick))
		engineOpts = append(engineOpts, view.WithRecomputeHook(s.observer.Recompute))
	}

	s.feed = feed.New(feedCfg, feedOpts...)
	s.engine = view.NewEngine(s.store, engineOpts...)
	s.engine.Refresh()

	return s
}

// AddPublisher registers a sink for applied updates.
func (s *Session) AddPublisher(p Publisher) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.publishers = append(s.publishers, p)
}

// Start subscribes the session to the feed. Calling Start twice is a no-op.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubscribe != nil {
		return
	}
	s.unsubscribe = s.feed.Subscribe(s.onUpdate)
	if s.observer != nil {
		s.observer.SetListeners(s.feed.Stats().Listeners)
	}
	s.logger.Info("screener session started")
}

// Stop unsubscribes from the feed and shuts it down. No update is applied
// once Stop returns.
func (s *Session) Stop() {
	s.mu.Lock()
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	s.feed.Close()
	if s.observer != nil {
		s.observer.SetListeners(0)
	}
	s.logger.Info("screener session stopped")
}

// HandleBatch replaces the store with a freshly fetched batch. The feed is
// reconnected only when the id set changed. An invalid batch leaves the
// store untouched and is recorded as a fetch error.
func (s *Session) HandleBatch(tokens []model.Token) error {
	prev := s.store.IDs()

	if err := s.store.ReplaceAll(tokens); err != nil {
		fe := &provider.FetchError{Source: "batch", Err: err}
		s.HandleFetchError(fe)
		return fe
	}

	ids := s.store.IDs()
	if !sameIDSet(prev, ids) || !s.feed.Connected() {
		s.feed.Connect(ids)
		s.logger.Info("feed scope updated", "tokens", len(ids))
	}

	s.engine.Refresh()

	s.mu.Lock()
	s.loading = false
	s.lastErr = nil
	s.lastFetch = s.now()
	if s.selected != "" {
		if _, ok := s.store.GetByID(s.selected); !ok {
			s.selected = ""
			s.detailsOpen = false
		}
	}
	if s.hovered != "" {
		if _, ok := s.store.GetByID(s.hovered); !ok {
			s.hovered = ""
		}
	}
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.SetTokens(len(ids))
	}
	return nil
}

// HandleFetchError records a failed fetch. The store keeps its last good
// batch and the feed keeps running.
func (s *Session) HandleFetchError(err *provider.FetchError) {
	s.mu.Lock()
	s.loading = false
	s.lastErr = err
	s.mu.Unlock()

	s.logger.Warn("token batch unavailable", "error", err)
}

// onUpdate is the feed listener.
func (s *Session) onUpdate(u model.PriceUpdate) {
	applied, err := s.store.ApplyPriceUpdate(u)
	switch {
	case err != nil:
		s.rejected.Add(1)
		s.observe(resultRejected)
		s.logger.Debug("price update rejected", "token", u.EntityID, "price", u.Price, "error", err)
		return
	case !applied:
		s.unknown.Add(1)
		s.observe(resultUnknown)
		return
	}

	s.applied.Add(1)
	s.observe(resultApplied)
	s.engine.Refresh()

	s.pubMu.RLock()
	pubs := s.publishers
	s.pubMu.RUnlock()

	for _, p := range pubs {
		p.Publish(u)
	}
}

func (s *Session) observe(result string) {
	if s.observer != nil {
		s.observer.Update(result)
	}
}

// SetCategory changes the category filter and returns the new view.
func (s *Session) SetCategory(f model.CategoryFilter) []model.Token {
	return s.engine.SetCategory(f)
}

// SetSearch changes the search text and returns the new view.
func (s *Session) SetSearch(text string) []model.Token {
	return s.engine.SetSearch(text)
}

// SetFilters changes category and search in one recomputation.
func (s *Session) SetFilters(f model.CategoryFilter, text string) []model.Token {
	c := s.engine.Criteria()
	c.Category = f
	c.Search = text
	return s.engine.SetCriteria(c)
}

// RequestSort advances the sort controller for key and re-sorts the view.
// An unknown key changes nothing.
func (s *Session) RequestSort(key model.SortKey) (model.SortConfig, []model.Token, error) {
	sc, err := s.sorter.Request(key)
	if err != nil {
		return model.SortConfig{}, nil, err
	}
	return sc, s.engine.SetSort(&sc), nil
}

// Select marks id as selected and opens its details.
func (s *Session) Select(id string) (model.Token, error) {
	tok, ok := s.store.GetByID(id)
	if !ok {
		return model.Token{}, fmt.Errorf("%w: %s", ErrTokenNotFound, id)
	}

	s.mu.Lock()
	s.selected = id
	s.detailsOpen = true
	s.mu.Unlock()

	return tok, nil
}

// ClearSelection closes the details view and forgets the selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.selected = ""
	s.detailsOpen = false
	s.mu.Unlock()
}

// Hover records the hovered token; an empty id clears it.
func (s *Session) Hover(id string) {
	s.mu.Lock()
	s.hovered = id
	s.mu.Unlock()
}

// Details returns the live record of the selected token while the details
// view is open.
func (s *Session) Details() (model.Token, bool) {
	s.mu.Lock()
	id, open := s.selected, s.detailsOpen
	s.mu.Unlock()

	if !open {
		return model.Token{}, false
	}
	return s.store.GetByID(id)
}

// Token returns the store record for id.
func (s *Session) Token(id string) (model.Token, bool) {
	return s.store.GetByID(id)
}

// View returns the current derived view.
func (s *Session) View() []model.Token {
	return s.engine.View()
}

// Criteria returns the current view criteria.
func (s *Session) Criteria() model.Criteria {
	return s.engine.Criteria()
}

// Status returns the presentation state.
func (s *Session) Status() Status {
	s.mu.Lock()
	st := Status{
		Loading:     s.loading,
		SelectedID:  s.selected,
		DetailsOpen: s.detailsOpen,
		HoveredID:   s.hovered,
	}
	if s.lastErr != nil {
		st.Error = s.lastErr.Message()
	}
	if !s.lastFetch.IsZero() {
		st.LastFetchAt = s.lastFetch.UnixMilli()
	}
	s.mu.Unlock()

	st.Tokens = s.store.Len()
	st.Connected = s.feed.Connected()
	st.Criteria = s.engine.Criteria()
	st.Applied = s.applied.Load()
	st.Unknown = s.unknown.Load()
	st.Rejected = s.rejected.Load()
	return st
}

// Feed exposes the session's feed channel, e.g. for additional listeners.
func (s *Session) Feed() *feed.Channel {
	return s.feed
}

// sameIDSet reports whether a and b hold the same ids regardless of order.
func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	a = slices.Clone(a)
	b = slices.Clone(b)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}
