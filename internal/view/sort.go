package view

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rickgao/tokenscope/internal/model"
)

// ErrUnknownSortKey is returned for keys that do not name a sortable field.
var ErrUnknownSortKey = errors.New("unknown sort key")

// Next returns the sort config that follows a request to sort by key:
// a new key starts ascending, the same key toggles direction.
// Once a key is chosen the state never returns to unsorted.
func Next(current *model.SortConfig, key model.SortKey) model.SortConfig {
	if current == nil || current.Key != key {
		return model.SortConfig{Key: key, Direction: model.Asc}
	}
	if current.Direction == model.Asc {
		return model.SortConfig{Key: key, Direction: model.Desc}
	}
	return model.SortConfig{Key: key, Direction: model.Asc}
}

// SortController tracks the current sort config across requests.
type SortController struct {
	mu      sync.Mutex
	current *model.SortConfig
}

// NewSortController creates a controller in the unsorted state.
func NewSortController() *SortController {
	return &SortController{}
}

// Request transitions to the next state for key. Unknown keys leave the
// state unchanged.
func (s *SortController) Request(key model.SortKey) (model.SortConfig, error) {
	if !key.Valid() {
		return model.SortConfig{}, fmt.Errorf("%w: %q", ErrUnknownSortKey, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := Next(s.current, key)
	s.current = &next
	return next, nil
}

// Current returns a copy of the current config, nil when unsorted.
func (s *SortController) Current() *model.SortConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}
