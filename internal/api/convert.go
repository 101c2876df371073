package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/tokenscope/internal/model"
)

// ParseAmount converts a decimal string to float64.
// Empty input is treated as zero; negative amounts are rejected.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("parse amount %q: negative", s)
	}

	return d.InexactFloat64(), nil
}

// ParseTimestamp parses an ISO 8601 timestamp to milliseconds since epoch.
// Returns 0 for empty or invalid input.
func ParseTimestamp(iso string) int64 {
	if iso == "" {
		return 0
	}

	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		// Try without timezone
		t, err = time.Parse("2006-01-02T15:04:05", iso)
		if err != nil {
			return 0
		}
	}

	return t.UnixMilli()
}

// ToModel converts an APIToken to model.Token.
func (t *APIToken) ToModel() (model.Token, error) {
	category, err := model.ParseCategory(t.Category)
	if err != nil {
		return model.Token{}, fmt.Errorf("token %s: %w", t.ID, err)
	}

	out := model.Token{
		ID:          t.ID,
		Symbol:      t.Symbol,
		Name:        t.Name,
		PairAddress: t.PairAddress,
		Category:    category,
		CreatedAt:   ParseTimestamp(t.CreatedTime),
	}

	fields := []struct {
		raw string
		dst *float64
	}{
		{t.Price, &out.Price},
		{t.PreviousPrice, &out.PreviousPrice},
		{t.Volume24h, &out.Volume24h},
		{t.MarketCap, &out.MarketCap},
		{t.Liquidity, &out.Liquidity},
	}
	for _, f := range fields {
		v, err := ParseAmount(f.raw)
		if err != nil {
			return model.Token{}, fmt.Errorf("token %s: %w", t.ID, err)
		}
		*f.dst = v
	}

	return out, nil
}
