package review

import (
	"testing"

	"github.com/ppiankov/orderparse/internal/model"
)

func completeOrder() model.ParsedOrder {
	vendor := int64(10000)
	order := model.NewParsedOrder()
	order.CustomerName = "홍길동"
	order.Contact = "010-1234-5678"
	order.Date = "2026-01-30"
	order.Time = "12:30"
	order.Items = []model.OrderItem{{Name: "Kimchi", Quantity: 2, Price: 5000, Rule: model.RuleParen}}
	order.DerivedTotal = 10000
	order.VendorTotal = &vendor
	return order
}

func findSignal(signals []model.Signal, typ model.SignalType) (model.Signal, bool) {
	for _, s := range signals {
		if s.Type == typ {
			return s, true
		}
	}
	return model.Signal{}, false
}

func TestReviewer_CleanOrder(t *testing.T) {
	result := NewReviewer().Review(completeOrder())

	if result.NeedsReview {
		t.Errorf("Expected clean order not to need review, got %+v", result.Signals)
	}
	s, ok := findSignal(result.Signals, model.SignalTotalMismatch)
	if !ok || s.Severity != model.SeverityInfo {
		t.Errorf("Expected info totals signal, got %+v", s)
	}
}

func TestReviewer_TotalMismatch(t *testing.T) {
	tests := []struct {
		name     string
		derived  int64
		severity model.SignalSeverity
	}{
		{"small difference", 9000, model.SeverityWarning},
		{"half missing", 4000, model.SeverityCritical},
		{"match", 10000, model.SeverityInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := completeOrder()
			order.DerivedTotal = tt.derived

			result := NewReviewer().Review(order)
			s, ok := findSignal(result.Signals, model.SignalTotalMismatch)
			if !ok {
				t.Fatal("Expected totals signal")
			}
			if s.Severity != tt.severity {
				t.Errorf("Expected %s, got %s", tt.severity, s.Severity)
			}
			if want := tt.severity != model.SeverityInfo; result.NeedsReview != want {
				t.Errorf("Expected NeedsReview=%v, got %v", want, result.NeedsReview)
			}
			if tt.severity != model.SeverityInfo && s.Data["difference"] != tt.derived-10000 {
				t.Errorf("Expected difference in data, got %v", s.Data["difference"])
			}
		})
	}
}

func TestReviewer_NoVendorTotal(t *testing.T) {
	order := completeOrder()
	order.VendorTotal = nil

	result := NewReviewer().Review(order)
	if result.NeedsReview {
		t.Error("Expected a missing vendor total alone not to need review")
	}
}

func TestReviewer_Items(t *testing.T) {
	order := completeOrder()
	order.Items = append(order.Items,
		model.OrderItem{Name: "Mystery", Quantity: 1, Rule: model.RuleBare},
		model.OrderItem{Name: "할인", Quantity: 1, Price: 0, Rule: model.RuleDiscount},
	)

	result := NewReviewer().Review(order)
	s, ok := findSignal(result.Signals, model.SignalUnpricedItem)
	if !ok {
		t.Fatal("Expected unpriced item signal")
	}
	if s.Data["unpriced"] != 1 {
		t.Errorf("Expected discount lines not counted, got %v", s.Data["unpriced"])
	}
	if !result.NeedsReview {
		t.Error("Expected unpriced item to need review")
	}

	order.Items = []model.OrderItem{}
	result = NewReviewer().Review(order)
	s, ok = findSignal(result.Signals, model.SignalNoItems)
	if !ok || s.Severity != model.SeverityCritical {
		t.Errorf("Expected critical no-items signal, got %+v", s)
	}
}

func TestReviewer_MissingFields(t *testing.T) {
	order := completeOrder()
	order.CustomerName = ""
	order.Contact = ""
	order.Date = ""
	order.Fulfillment = model.FulfillmentDelivery

	result := NewReviewer().Review(order)
	for _, typ := range []model.SignalType{model.SignalMissingContact, model.SignalMissingSchedule, model.SignalMissingAddress} {
		s, ok := findSignal(result.Signals, typ)
		if !ok || s.Severity != model.SeverityWarning {
			t.Errorf("Expected warning %s, got %+v", typ, s)
		}
	}

	order = completeOrder()
	order.Contact = ""
	order.Time = ""
	result = NewReviewer().Review(order)
	if result.NeedsReview {
		t.Errorf("Expected info-only gaps not to need review, got %+v", result.Signals)
	}
}
