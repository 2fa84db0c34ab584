package catalog

import (
	"testing"

	"github.com/ppiankov/orderparse/internal/model"
)

func testProducts() []model.CatalogProduct {
	return []model.CatalogProduct{
		{ID: 1, Name: "Spinach Namul", Price: 4000, Type: model.ProductRegular},
		{ID: 2, Name: "Kimchi", Price: 5000, Type: model.ProductRegular},
		{ID: 3, Name: "Spinach Namul Large", Price: 7000, Type: model.ProductRegular},
		{ID: 4, Name: "Galbi Special", Price: 15000, Type: model.ProductSpecial, TargetDate: "2026-01-30"},
		{ID: 5, Name: "오늘의 반찬", Price: 6000, Type: model.ProductDaily, TargetDate: "2026-01-29"},
		{ID: 6, Name: "  ", Price: 1, Type: model.ProductRegular},
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Spinach Namul", "spinachnamul"},
		{"  KIMCHI\t", "kimchi"},
		{"오늘의 반찬", "오늘의반찬"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewIndex_LongestFirst(t *testing.T) {
	idx := NewIndex(testProducts())

	if idx.Len() != 5 {
		t.Fatalf("expected 5 entries (blank name skipped), got %d", idx.Len())
	}

	products := idx.Products()
	if products[0].Name != "Spinach Namul Large" {
		t.Errorf("expected longest name first, got %q", products[0].Name)
	}
	for i := 1; i < len(products); i++ {
		prev := len([]rune(NormalizeName(products[i-1].Name)))
		cur := len([]rune(NormalizeName(products[i].Name)))
		if cur > prev {
			t.Errorf("entry %d (%q) longer than entry %d", i, products[i].Name, i-1)
		}
	}
}

func TestIndex_Match(t *testing.T) {
	idx := NewIndex(testProducts())

	tests := []struct {
		name   string
		item   string
		date   string
		wantID int64
		wantOK bool
	}{
		{"exact", "Spinach Namul", "", 1, true},
		{"case and spaces", "spinachnamul", "", 1, true},
		{"padded free text", "Kimchi 1kg pack", "", 2, true},
		{"abbreviated free text", "Namul Large", "", 3, true},
		{"special on its date", "Galbi Special", "2026-01-30", 4, true},
		{"special on another date", "Galbi Special", "2026-01-31", 0, false},
		{"special without date", "Galbi Special", "", 0, false},
		{"daily on its date", "오늘의 반찬", "2026-01-29", 5, true},
		{"unknown", "Bulgogi", "", 0, false},
		{"single rune not reverse matched", "K", "", 0, false},
		{"empty", "   ", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := idx.Match(tt.item, tt.date)
			if ok != tt.wantOK {
				t.Fatalf("Match(%q, %q) ok = %v, want %v", tt.item, tt.date, ok, tt.wantOK)
			}
			if ok && p.ID != tt.wantID {
				t.Errorf("Match(%q) = id %d, want %d", tt.item, p.ID, tt.wantID)
			}
		})
	}
}

func TestIndex_ForDate(t *testing.T) {
	idx := NewIndex(testProducts())

	if got := len(idx.ForDate("")); got != 3 {
		t.Errorf("expected 3 undated products, got %d", got)
	}
	if got := len(idx.ForDate("2026-01-30")); got != 4 {
		t.Errorf("expected 4 products on 2026-01-30, got %d", got)
	}
}

func TestIndex_EmptyCatalog(t *testing.T) {
	idx := NewIndex(nil)
	if _, ok := idx.Match("Kimchi", ""); ok {
		t.Error("expected no match against empty catalog")
	}

	var nilIdx *Index
	if _, ok := nilIdx.Match("Kimchi", ""); ok {
		t.Error("expected no match against nil index")
	}
	if nilIdx.Len() != 0 {
		t.Error("expected nil index to be empty")
	}
}

func TestIndex_Fingerprint(t *testing.T) {
	a := NewIndex(testProducts())
	b := NewIndex(testProducts())
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("expected identical catalogs to share a fingerprint")
	}

	changed := testProducts()
	changed[1].Price = 5500
	if NewIndex(changed).Fingerprint() == a.Fingerprint() {
		t.Error("expected price change to alter the fingerprint")
	}
}
