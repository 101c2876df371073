package view

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/rickgao/tokenscope/internal/model"
)

// Derive returns the filtered, searched and sorted projection of tokens.
// The result is a fresh slice; tokens is never modified. With a nil sort the
// input order is preserved.
func Derive(tokens []model.Token, c model.Criteria) []model.Token {
	query := strings.ToLower(c.Search)

	out := make([]model.Token, 0, len(tokens))
	for _, t := range tokens {
		if !c.Category.Matches(t.Category) {
			continue
		}
		if query != "" && !matchesSearch(t, query) {
			continue
		}
		out = append(out, t)
	}

	if c.Sort != nil && c.Sort.Key.Valid() {
		slices.SortStableFunc(out, comparator(*c.Sort))
	}

	return out
}

// matchesSearch reports whether name or symbol contains the lower-cased query.
func matchesSearch(t model.Token, query string) bool {
	return strings.Contains(strings.ToLower(t.Name), query) ||
		strings.Contains(strings.ToLower(t.Symbol), query)
}

// comparator builds the ordering for a sort config. Numeric keys compare
// numerically, everything else through an English collator.
func comparator(sc model.SortConfig) func(a, b model.Token) int {
	sign := 1
	if sc.Direction == model.Desc {
		sign = -1
	}

	if sc.Key.Numeric() {
		return func(a, b model.Token) int {
			av, _ := a.NumericField(sc.Key)
			bv, _ := b.NumericField(sc.Key)
			return sign * cmp.Compare(av, bv)
		}
	}

	// Collators keep internal buffers; one per derivation.
	col := collate.New(language.English)
	return func(a, b model.Token) int {
		return sign * col.CompareString(a.StringField(sc.Key), b.StringField(sc.Key))
	}
}
