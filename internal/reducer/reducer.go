// Package reducer applies price updates to tokens.
//
// Apply is a pure function: it has no external state and the same inputs
// always produce the same output.
package reducer

import (
	"errors"
	"fmt"
	"math"

	"github.com/rickgao/tokenscope/internal/model"
)

var (
	// ErrInvalidPrice is returned for negative or non-finite incoming prices.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrNonFiniteChange is returned when a derived change field is not finite.
	// Only a zero previous price is defined (as 0%); anything else is a defect.
	ErrNonFiniteChange = errors.New("non-finite price change")
)

// Apply shifts the current price into PreviousPrice, sets the new price and
// recomputes the absolute and percent change. The input token is not modified.
func Apply(t model.Token, u model.PriceUpdate) (model.Token, error) {
	if math.IsNaN(u.Price) || math.IsInf(u.Price, 0) || u.Price < 0 {
		return t, fmt.Errorf("%w: %v for %s", ErrInvalidPrice, u.Price, u.EntityID)
	}

	next := t
	next.PreviousPrice = t.Price
	next.Price = u.Price
	next.PriceChangeAbsolute = next.Price - next.PreviousPrice

	pct, err := PercentChange(next.Price, next.PreviousPrice)
	if err != nil {
		return t, fmt.Errorf("%s: %w", u.EntityID, err)
	}
	next.PriceChangePercent = pct

	if math.IsInf(next.PriceChangeAbsolute, 0) || math.IsNaN(next.PriceChangeAbsolute) {
		return t, fmt.Errorf("%s: %w", u.EntityID, ErrNonFiniteChange)
	}

	if u.Timestamp > 0 {
		next.UpdatedAt = u.Timestamp
	}
	return next, nil
}

// PercentChange returns (price - prev) / prev * 100, or exactly 0 when prev is 0.
func PercentChange(price, prev float64) (float64, error) {
	if prev == 0 {
		return 0, nil
	}
	pct := (price - prev) / prev * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0, ErrNonFiniteChange
	}
	return pct, nil
}

// Recompute derives both change fields from the token's current Price and
// PreviousPrice. Used when loading batches so derived fields never diverge
// from the price pair.
func Recompute(t model.Token) (model.Token, error) {
	pct, err := PercentChange(t.Price, t.PreviousPrice)
	if err != nil {
		return t, fmt.Errorf("%s: %w", t.ID, err)
	}
	t.PriceChangeAbsolute = t.Price - t.PreviousPrice
	t.PriceChangePercent = pct
	return t, nil
}
