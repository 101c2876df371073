package model

import "testing"

func TestCategoryFlags(t *testing.T) {
	tests := []struct {
		category                        Category
		isNew, isFinalStretch, migrated bool
	}{
		{CategoryNew, true, false, false},
		{CategoryFinalStretch, false, true, false},
		{CategoryMigrated, false, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			tok := Token{Category: tt.category}
			if tok.IsNew() != tt.isNew {
				t.Errorf("IsNew() = %v, want %v", tok.IsNew(), tt.isNew)
			}
			if tok.IsFinalStretch() != tt.isFinalStretch {
				t.Errorf("IsFinalStretch() = %v, want %v", tok.IsFinalStretch(), tt.isFinalStretch)
			}
			if tok.IsMigrated() != tt.migrated {
				t.Errorf("IsMigrated() = %v, want %v", tok.IsMigrated(), tt.migrated)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{"new", CategoryNew, false},
		{"new-pairs", CategoryNew, false},
		{"final-stretch", CategoryFinalStretch, false},
		{"migrated", CategoryMigrated, false},
		{"all", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseCategory(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCategory(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategoryFilter_Matches(t *testing.T) {
	all, err := ParseCategoryFilter("all")
	if err != nil {
		t.Fatalf("ParseCategoryFilter(all): %v", err)
	}
	for _, c := range Categories {
		if !all.Matches(c) {
			t.Errorf("all should match %q", c)
		}
	}

	migrated, err := ParseCategoryFilter("migrated")
	if err != nil {
		t.Fatalf("ParseCategoryFilter(migrated): %v", err)
	}
	if migrated.Matches(CategoryNew) {
		t.Error("migrated filter should not match new")
	}
	if !migrated.Matches(CategoryMigrated) {
		t.Error("migrated filter should match migrated")
	}

	if _, err := ParseCategoryFilter("bogus"); err == nil {
		t.Error("expected error for unknown filter")
	}
}

func TestSortKey(t *testing.T) {
	if !SortPrice.Valid() || !SortPrice.Numeric() {
		t.Error("price should be a valid numeric key")
	}
	if !SortName.Valid() || SortName.Numeric() {
		t.Error("name should be a valid string key")
	}
	if SortKey("bogus").Valid() {
		t.Error("bogus should not be valid")
	}
}

func TestToken_Fields(t *testing.T) {
	tok := Token{
		ID:        "token-1",
		Symbol:    "ETH",
		Name:      "ETH Token",
		Category:  CategoryMigrated,
		Price:     12.5,
		Volume24h: 1000,
		CreatedAt: 1705321845000,
	}

	if v, ok := tok.NumericField(SortPrice); !ok || v != 12.5 {
		t.Errorf("NumericField(price) = %v, %v", v, ok)
	}
	if v, ok := tok.NumericField(SortCreatedAt); !ok || v != 1705321845000 {
		t.Errorf("NumericField(createdAt) = %v, %v", v, ok)
	}
	if _, ok := tok.NumericField(SortName); ok {
		t.Error("name should not be numeric")
	}
	if got := tok.StringField(SortSymbol); got != "ETH" {
		t.Errorf("StringField(symbol) = %q, want ETH", got)
	}
	if got := tok.StringField(SortIsMigrated); got != "true" {
		t.Errorf("StringField(isMigrated) = %q, want true", got)
	}
}
