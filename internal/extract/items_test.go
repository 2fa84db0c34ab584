package extract

import (
	"testing"

	"github.com/ppiankov/orderparse/internal/catalog"
	"github.com/ppiankov/orderparse/internal/model"
)

func TestExtractItems_Rules(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  Candidate
		match bool
	}{
		{"zone inline price", "D zone 6,600원", Candidate{Name: "D zone", Quantity: 1, Price: 6600, Rule: model.RuleZone}, true},
		{"zone korean suffix", "B존 3,300원", Candidate{Name: "B존", Quantity: 1, Price: 3300, Rule: model.RuleZone}, true},
		{"paren with price", "Kimchi(2)5,000원", Candidate{Name: "Kimchi", Quantity: 2, Price: 5000, Rule: model.RuleParen}, true},
		{"paren with unit", "Kimchi (3개)", Candidate{Name: "Kimchi", Quantity: 3, Rule: model.RuleParen}, true},
		{"paren quantity too large", "Bulgogi(1500)", Candidate{}, false},
		{"coupon discount", "쿠폰할인 -2,000원", Candidate{Name: "쿠폰할인", Quantity: 1, Price: -2000, Rule: model.RuleDiscount}, true},
		{"discount printed positive", "할인 2,000원", Candidate{Name: "할인", Quantity: 1, Price: -2000, Rule: model.RuleDiscount}, true},
		{"english coupon", "Coupon discount 1,500 won", Candidate{Name: "coupon discount", Quantity: 1, Price: -1500, Rule: model.RuleDiscount}, true},
		{"english discount no currency", "Discount -500", Candidate{Name: "discount", Quantity: 1, Price: -500, Rule: model.RuleDiscount}, true},
		{"percent discount", "10% 할인", Candidate{Name: "할인", Quantity: 1, Rule: model.RuleDiscount}, true},
		{"labeled", "상품명: Spinach Namul", Candidate{Name: "Spinach Namul", Quantity: 1, Rule: model.RuleLabeled}, true},
		{"labeled english", "Item: Kimchi", Candidate{Name: "Kimchi", Quantity: 1, Rule: model.RuleLabeled}, true},
		{"bare", "Spinach Namul 2", Candidate{Name: "Spinach Namul", Quantity: 2, Rule: model.RuleBare}, true},
		{"bare with unit", "Kimchi 2개", Candidate{Name: "Kimchi", Quantity: 2, Rule: model.RuleBare}, true},
		{"bare status word", "예약 확정 2", Candidate{}, false},
		{"bare english status word", "Order received 3", Candidate{}, false},
		{"bare quantity too large", "Table 150", Candidate{}, false},
		{"thousands are not quantities", "Kimchi 2,000", Candidate{}, false},
		{"plain sentence", "감사합니다", Candidate{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := SplitLines(tt.text)
			got, claimed := ExtractItems(lines, NewClaimedSet(), DefaultRules())
			if !tt.match {
				if len(got) != 0 {
					t.Fatalf("Expected no candidate, got %+v", got)
				}
				if claimed.Len() != 0 {
					t.Errorf("Expected no claims, got %d", claimed.Len())
				}
				return
			}
			if len(got) != 1 {
				t.Fatalf("Expected 1 candidate, got %d: %+v", len(got), got)
			}
			c := got[0]
			if c.Name != tt.want.Name || c.Quantity != tt.want.Quantity || c.Price != tt.want.Price || c.Rule != tt.want.Rule {
				t.Errorf("Expected %+v, got %+v", tt.want, c)
			}
			if owner, _ := claimed.Owner(0); owner != tt.want.Rule {
				t.Errorf("Expected line claimed by %s, got %q", tt.want.Rule, owner)
			}
		})
	}
}

func TestExtractItems_PriceLookahead(t *testing.T) {
	lines := SplitLines("B존\n3,300원\nKimchi(2)\n5,000원\nSoup(1)\nBread 2")
	got, claimed := ExtractItems(lines, NewClaimedSet(), DefaultRules())

	if len(got) != 4 {
		t.Fatalf("Expected 4 candidates, got %d: %+v", len(got), got)
	}
	if got[0].Price != 3300 || !got[0].UsedNext {
		t.Errorf("Expected zone price from next line, got %+v", got[0])
	}
	if got[1].Price != 5000 || !got[1].UsedNext {
		t.Errorf("Expected paren price from next line, got %+v", got[1])
	}
	if got[2].Price != 0 || got[2].UsedNext {
		t.Errorf("Expected Soup unpriced, got %+v", got[2])
	}
	if got[3].Name != "Bread" || got[3].Rule != model.RuleBare {
		t.Errorf("Expected Bread bare item after unpriced Soup, got %+v", got[3])
	}

	for i, want := range []string{model.RuleZone, model.RuleZone, model.RuleParen, model.RuleParen, model.RuleParen, model.RuleBare} {
		if owner, _ := claimed.Owner(i); owner != want {
			t.Errorf("Line %d: expected owner %s, got %q", i, want, owner)
		}
	}
}

func TestExtractItems_SkipsClaimedLines(t *testing.T) {
	lines := SplitLines("Kimchi(2)\n5,000원")
	claimed := NewClaimedSet()
	claimed.claim(1, "field:payment_amount")

	got, out := ExtractItems(lines, claimed, DefaultRules())
	if len(got) != 1 || got[0].Price != 0 || got[0].UsedNext {
		t.Fatalf("Expected claimed price line to stay unread, got %+v", got)
	}
	if owner, _ := out.Owner(1); owner != "field:payment_amount" {
		t.Errorf("Expected earlier owner kept, got %q", owner)
	}
	if claimed.Has(0) {
		t.Error("Expected input set left unmodified")
	}
}

func TestBareRule_Options(t *testing.T) {
	lines := SplitLines("품절 2\nKimchi 12")

	got, _ := ExtractItems(lines, NewClaimedSet(), DefaultRules())
	if len(got) != 2 {
		t.Fatalf("Expected both lines as items with defaults, got %+v", got)
	}

	rules := newRules([]string{"품절"}, 10)
	got, _ = ExtractItems(lines, NewClaimedSet(), rules)
	if len(got) != 0 {
		t.Errorf("Expected deny-list and bound to reject both lines, got %+v", got)
	}
}

func TestBareRule_CountLabels(t *testing.T) {
	lines := SplitLines("총 2\n수량 3\n합계 4\n총 수량 5\nA 2\nKimchi 2")

	got, claimed := ExtractItems(lines, NewClaimedSet(), DefaultRules())
	if len(got) != 1 {
		t.Fatalf("Expected only Kimchi read as an item, got %+v", got)
	}
	if got[0].Name != "Kimchi" || got[0].Quantity != 2 {
		t.Errorf("Expected Kimchi x2, got %+v", got[0])
	}
	if claimed.Len() != 1 {
		t.Errorf("Expected label lines left unclaimed, got %v", claimed.Indices())
	}
}

func TestDedupe(t *testing.T) {
	candidates := []Candidate{
		{Name: "D zone", Quantity: 1, Price: 0, Rule: model.RuleZone, Line: 0},
		{Name: "Kimchi", Quantity: 2, Price: 0, Rule: model.RuleParen, Line: 1},
		{Name: "D zone", Quantity: 1, Price: 6600, Rule: model.RuleZone, Line: 2},
		{Name: "kimchi", Quantity: 5, Price: 0, Rule: model.RuleBare, Line: 3},
		{Name: "Soup", Quantity: 1, Price: 3000, Rule: model.RuleParen, Line: 4},
		{Name: "S oup", Quantity: 1, Price: 3500, Rule: model.RuleParen, Line: 5},
	}

	got := Dedupe(candidates)
	if len(got) != 3 {
		t.Fatalf("Expected 3 groups, got %d: %+v", len(got), got)
	}
	if got[0].Name != "D zone" || got[0].Price != 6600 {
		t.Errorf("Expected priced D zone to win, got %+v", got[0])
	}
	if got[1].Quantity != 2 {
		t.Errorf("Expected first unpriced Kimchi kept, got %+v", got[1])
	}
	if got[2].Price != 3000 {
		t.Errorf("Expected first priced Soup kept, got %+v", got[2])
	}
}

func TestResolve(t *testing.T) {
	products := []model.CatalogProduct{
		{ID: 1, Name: "Spinach Namul", Price: 4000, Type: model.ProductRegular},
		{ID: 2, Name: "할인", Price: 999, Type: model.ProductRegular},
	}
	candidates := []Candidate{
		{Name: "spinach namul", Quantity: 2, Rule: model.RuleBare},
		{Name: "할인", Quantity: 1, Price: -1000, Rule: model.RuleDiscount},
		{Name: "Mystery", Quantity: 1, Price: 1200, Rule: model.RuleParen},
	}

	items := Resolve(candidates, catalog.NewIndex(products), "")
	if items[0].Name != "Spinach Namul" || items[0].Price != 4000 || items[0].ProductID != 1 {
		t.Errorf("Expected catalog match, got %+v", items[0])
	}
	if items[1].Price != -1000 || items[1].ProductID != 0 {
		t.Errorf("Expected discount never resolved, got %+v", items[1])
	}
	if items[2].Price != 1200 || items[2].ProductID != 0 {
		t.Errorf("Expected unmatched item kept as read, got %+v", items[2])
	}

	huge := []model.CatalogProduct{{ID: 9, Name: "Kimchi", Price: MaxAmount + 1, Type: model.ProductRegular}}
	items = Resolve([]Candidate{{Name: "Kimchi", Quantity: 2, Price: 5000, Rule: model.RuleParen}}, catalog.NewIndex(huge), "")
	if items[0].ProductID != 9 || items[0].Price != 5000 {
		t.Errorf("Expected out-of-range catalog price not taken, got %+v", items[0])
	}

	if got := Resolve(nil, nil, ""); got == nil {
		t.Error("Expected non-nil items for no candidates")
	}
}

func TestReconcile(t *testing.T) {
	order := model.NewParsedOrder()
	order.DeliveryFee = 3000
	order.DiscountValue = 1000
	order.Items = []model.OrderItem{
		{Name: "Kimchi", Quantity: 2, Price: 5000, Rule: model.RuleParen},
	}

	if got := Reconcile(order).DerivedTotal; got != 12000 {
		t.Errorf("Expected 12000, got %d", got)
	}

	order.Items = append(order.Items, model.OrderItem{Name: "할인", Quantity: 1, Price: -1000, Rule: model.RuleDiscount})
	if got := Reconcile(order).DerivedTotal; got != 12000 {
		t.Errorf("Expected discount counted once, got %d", got)
	}

	order.Items[1].Price = 0
	if got := Reconcile(order).DerivedTotal; got != 12000 {
		t.Errorf("Expected summary discount used when the item carries none, got %d", got)
	}
}
