package database

import (
	"errors"
	"testing"
	"time"

	"github.com/rickgao/tokenscope/internal/model"
)

// fakeRow implements pgx.Row over a fixed set of values.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *float64:
			*p = r.values[i].(float64)
		case *time.Time:
			*p = r.values[i].(time.Time)
		default:
			return errors.New("unsupported destination")
		}
	}
	return nil
}

func tokenRow(category string) fakeRow {
	return fakeRow{values: []any{
		"t1", "ETH", "ETH Token", "0xabc", category,
		110.0, 100.0, 1e6, 5e8, 2e5,
		time.UnixMilli(1705321845000),
	}}
}

func TestScanToken(t *testing.T) {
	tok, err := scanToken(tokenRow("migrated"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tok.ID != "t1" || tok.Symbol != "ETH" || tok.PairAddress != "0xabc" {
		t.Errorf("identity fields = %+v", tok)
	}
	if tok.Category != model.CategoryMigrated {
		t.Errorf("Category = %q, want migrated", tok.Category)
	}
	if tok.Price != 110 || tok.PreviousPrice != 100 {
		t.Errorf("prices = %v/%v", tok.Price, tok.PreviousPrice)
	}
	if tok.CreatedAt != 1705321845000 {
		t.Errorf("CreatedAt = %d", tok.CreatedAt)
	}
}

func TestScanTokenErrors(t *testing.T) {
	if _, err := scanToken(tokenRow("graduated")); err == nil {
		t.Error("expected error for unknown category")
	}
	if _, err := scanToken(fakeRow{err: errors.New("boom")}); err == nil {
		t.Error("expected scan error")
	}
}
