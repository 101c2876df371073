package model

import (
	"fmt"
	"strconv"
)

// -----------------------------------------------------------------------------
// Token
// -----------------------------------------------------------------------------

// Category classifies a token by its lifecycle stage. Fixed at creation.
type Category string

const (
	CategoryNew          Category = "new"
	CategoryFinalStretch Category = "final-stretch"
	CategoryMigrated     Category = "migrated"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryNew, CategoryFinalStretch, CategoryMigrated}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryNew, CategoryFinalStretch, CategoryMigrated:
		return true
	}
	return false
}

// ParseCategory parses a category name. "new-pairs" is accepted as an alias for "new".
func ParseCategory(s string) (Category, error) {
	switch s {
	case "new", "new-pairs":
		return CategoryNew, nil
	case "final-stretch":
		return CategoryFinalStretch, nil
	case "migrated":
		return CategoryMigrated, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Token is one tradable token's full record.
type Token struct {
	ID          string   `json:"id"`
	Symbol      string   `json:"symbol"`
	Name        string   `json:"name"`
	PairAddress string   `json:"pairAddress"`
	Category    Category `json:"category"`

	// Prices
	Price               float64 `json:"price"`
	PreviousPrice       float64 `json:"previousPrice"`
	PriceChangeAbsolute float64 `json:"priceChange"`
	PriceChangePercent  float64 `json:"priceChangePercent"`

	// Magnitudes, independent of price updates
	Volume24h float64 `json:"volume24h"`
	MarketCap float64 `json:"marketCap"`
	Liquidity float64 `json:"liquidity"`

	CreatedAt int64 `json:"createdAt"` // ms since epoch
	UpdatedAt int64 `json:"updatedAt"` // ms since epoch of the last applied price update
}

// IsNew reports whether the token is in the new-pairs stage.
func (t Token) IsNew() bool { return t.Category == CategoryNew }

// IsFinalStretch reports whether the token is in the final-stretch stage.
func (t Token) IsFinalStretch() bool { return t.Category == CategoryFinalStretch }

// IsMigrated reports whether the token has migrated.
func (t Token) IsMigrated() bool { return t.Category == CategoryMigrated }

// NumericField returns the value of a numeric sort key.
func (t Token) NumericField(key SortKey) (float64, bool) {
	switch key {
	case SortPrice:
		return t.Price, true
	case SortPreviousPrice:
		return t.PreviousPrice, true
	case SortPriceChange:
		return t.PriceChangeAbsolute, true
	case SortPriceChangePercent:
		return t.PriceChangePercent, true
	case SortVolume24h:
		return t.Volume24h, true
	case SortMarketCap:
		return t.MarketCap, true
	case SortLiquidity:
		return t.Liquidity, true
	case SortCreatedAt:
		return float64(t.CreatedAt), true
	}
	return 0, false
}

// StringField returns the string form of any sort key, used for
// lexicographic ordering of non-numeric fields.
func (t Token) StringField(key SortKey) string {
	switch key {
	case SortID:
		return t.ID
	case SortSymbol:
		return t.Symbol
	case SortName:
		return t.Name
	case SortPairAddress:
		return t.PairAddress
	case SortCategory:
		return string(t.Category)
	case SortIsNew:
		return strconv.FormatBool(t.IsNew())
	case SortIsFinalStretch:
		return strconv.FormatBool(t.IsFinalStretch())
	case SortIsMigrated:
		return strconv.FormatBool(t.IsMigrated())
	}
	if v, ok := t.NumericField(key); ok {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return ""
}

// -----------------------------------------------------------------------------
// Price updates
// -----------------------------------------------------------------------------

// PriceUpdate is a single price change delivered by the feed.
// It is consumed once and discarded.
type PriceUpdate struct {
	EntityID  string  `json:"entityId"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"` // ms since epoch
}

// -----------------------------------------------------------------------------
// View criteria
// -----------------------------------------------------------------------------

// CategoryFilter selects which categories pass the view filter.
type CategoryFilter string

// FilterAll passes every category.
const FilterAll CategoryFilter = "all"

// ParseCategoryFilter parses "all" or any category name.
func ParseCategoryFilter(s string) (CategoryFilter, error) {
	if s == "" || s == string(FilterAll) {
		return FilterAll, nil
	}
	c, err := ParseCategory(s)
	if err != nil {
		return "", err
	}
	return CategoryFilter(c), nil
}

// Matches reports whether c passes the filter.
func (f CategoryFilter) Matches(c Category) bool {
	return f == FilterAll || f == "" || Category(f) == c
}

// SortKey names a sortable token field. Values match the JSON field names.
type SortKey string

const (
	SortID                 SortKey = "id"
	SortSymbol             SortKey = "symbol"
	SortName               SortKey = "name"
	SortPairAddress        SortKey = "pairAddress"
	SortCategory           SortKey = "category"
	SortPrice              SortKey = "price"
	SortPreviousPrice      SortKey = "previousPrice"
	SortPriceChange        SortKey = "priceChange"
	SortPriceChangePercent SortKey = "priceChangePercent"
	SortVolume24h          SortKey = "volume24h"
	SortMarketCap          SortKey = "marketCap"
	SortLiquidity          SortKey = "liquidity"
	SortCreatedAt          SortKey = "createdAt"
	SortIsNew              SortKey = "isNew"
	SortIsFinalStretch     SortKey = "isFinalStretch"
	SortIsMigrated         SortKey = "isMigrated"
)

var sortKeys = map[SortKey]bool{
	SortID: false, SortSymbol: false, SortName: false, SortPairAddress: false,
	SortCategory: false, SortIsNew: false, SortIsFinalStretch: false, SortIsMigrated: false,
	SortPrice: true, SortPreviousPrice: true, SortPriceChange: true,
	SortPriceChangePercent: true, SortVolume24h: true, SortMarketCap: true,
	SortLiquidity: true, SortCreatedAt: true,
}

// Valid reports whether k names a sortable field.
func (k SortKey) Valid() bool {
	_, ok := sortKeys[k]
	return ok
}

// Numeric reports whether k compares numerically.
func (k SortKey) Numeric() bool {
	return sortKeys[k]
}

// SortDirection is the ordering direction for a sort key.
type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// SortConfig is a concrete (key, direction) ordering.
type SortConfig struct {
	Key       SortKey       `json:"key"`
	Direction SortDirection `json:"direction"`
}

// Criteria is the full set of view inputs. A nil Sort keeps store order.
type Criteria struct {
	Category CategoryFilter `json:"selectedCategory"`
	Search   string         `json:"searchText"`
	Sort     *SortConfig    `json:"sortConfig"`
}
