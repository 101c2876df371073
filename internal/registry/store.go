package registry

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rickgao/tokenscope/internal/model"
	"github.com/rickgao/tokenscope/internal/reducer"
)

// ErrInvalidBatch is returned by ReplaceAll when a batch fails validation.
// The store keeps its previous contents.
var ErrInvalidBatch = errors.New("invalid token batch")

// Store holds the thread-safe canonical token list.
type Store struct {
	mu sync.RWMutex

	// Tokens in insertion order.
	tokens []*model.Token

	// Position of each token in tokens, by id.
	index map[string]int

	// Incremented on every successful mutation.
	version uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		index: make(map[string]int),
	}
}

// ReplaceAll validates batch and replaces the store contents with it.
// Change fields are recomputed from each token's price pair.
// On error nothing is replaced.
func (s *Store) ReplaceAll(batch []model.Token) error {
	tokens := make([]*model.Token, 0, len(batch))
	index := make(map[string]int, len(batch))

	for i, t := range batch {
		if err := validateToken(t); err != nil {
			return fmt.Errorf("%w: token %d: %v", ErrInvalidBatch, i, err)
		}
		if _, dup := index[t.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidBatch, t.ID)
		}

		normalized, err := reducer.Recompute(t)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBatch, err)
		}

		index[t.ID] = len(tokens)
		tokens = append(tokens, &normalized)
	}

	s.mu.Lock()
	s.tokens = tokens
	s.index = index
	s.version++
	s.mu.Unlock()

	return nil
}

// GetByID returns a copy of the token with the given id (read-locked).
func (s *Store) GetByID(id string) (model.Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return model.Token{}, false
	}
	return *s.tokens[i], true
}

// Price returns the current price for id.
func (s *Store) Price(id string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return 0, false
	}
	return s.tokens[i].Price, true
}

// ApplyPriceUpdate applies u to the matching token (write-locked).
// Returns false with a nil error when the id is unknown.
// The token is swapped as a whole so readers never see a partial update.
func (s *Store) ApplyPriceUpdate(u model.PriceUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[u.EntityID]
	if !ok {
		return false, nil
	}

	next, err := reducer.Apply(*s.tokens[i], u)
	if err != nil {
		return false, err
	}

	s.tokens[i] = &next
	s.version++
	return true, nil
}

// Snapshot returns a copy of all tokens in insertion order (read-locked).
func (s *Store) Snapshot() []model.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Token, len(s.tokens))
	for i, t := range s.tokens {
		result[i] = *t
	}
	return result
}

// IDs returns all token ids in insertion order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, len(s.tokens))
	for i, t := range s.tokens {
		ids[i] = t.ID
	}
	return ids
}

// Len returns the number of tokens.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// Version returns the mutation counter.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// validateToken checks the fields a batch provider is responsible for.
func validateToken(t model.Token) error {
	if t.ID == "" {
		return errors.New("empty id")
	}
	if !t.Category.Valid() {
		return fmt.Errorf("%s: unknown category %q", t.ID, t.Category)
	}

	fields := []struct {
		name  string
		value float64
	}{
		{"price", t.Price},
		{"previousPrice", t.PreviousPrice},
		{"volume24h", t.Volume24h},
		{"marketCap", t.MarketCap},
		{"liquidity", t.Liquidity},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return fmt.Errorf("%s: %s must be finite and >= 0, got %v", t.ID, f.name, f.value)
		}
	}
	return nil
}
