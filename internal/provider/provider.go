package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/rickgao/tokenscope/internal/model"
)

// Provider fetches a complete token batch.
type Provider interface {
	Fetch(ctx context.Context) ([]model.Token, error)
}

// Func is a function adapter for Provider.
type Func func(ctx context.Context) ([]model.Token, error)

func (f Func) Fetch(ctx context.Context) ([]model.Token, error) {
	return f(ctx)
}

// FetchError reports a failed batch fetch.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch tokens from %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Message returns a short human-readable description for display.
func (e *FetchError) Message() string {
	return fmt.Sprintf("Failed to load tokens: %v", e.Err)
}

// AsFetchError wraps err in a FetchError unless it already is one.
func AsFetchError(source string, err error) *FetchError {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return &FetchError{Source: source, Err: err}
}
