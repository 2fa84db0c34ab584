package review

import (
	"fmt"
	"strings"

	"github.com/ppiankov/orderparse/internal/model"
)

// Reviewer turns a parsed order into data-quality signals for a human
type Reviewer struct{}

// NewReviewer creates a new reviewer
func NewReviewer() *Reviewer {
	return &Reviewer{}
}

// Review checks an order and decides whether it needs a human look.
// Any warning or critical signal marks the order for review.
func (r *Reviewer) Review(order model.ParsedOrder) model.Review {
	var signals []model.Signal

	// 1. Totals (always reported)
	signals = append(signals, r.checkTotals(order))

	// 2. Items
	signals = append(signals, r.checkItems(order)...)

	// 3. Customer identity
	if s, ok := r.checkContact(order); ok {
		signals = append(signals, s)
	}

	// 4. Schedule
	if s, ok := r.checkSchedule(order); ok {
		signals = append(signals, s)
	}

	// 5. Delivery address
	if s, ok := r.checkAddress(order); ok {
		signals = append(signals, s)
	}

	needsReview := false
	for _, s := range signals {
		if s.Severity != model.SeverityInfo {
			needsReview = true
			break
		}
	}

	return model.Review{
		NeedsReview: needsReview,
		Signals:     signals,
	}
}

// checkTotals compares the derived total against the vendor-stated one
func (r *Reviewer) checkTotals(order model.ParsedOrder) model.Signal {
	if order.VendorTotal == nil {
		return model.Signal{
			Type:        model.SignalTotalMismatch,
			Severity:    model.SeverityInfo,
			Description: "No vendor total in text; derived total not cross-checked",
			Data: map[string]interface{}{
				"derived": order.DerivedTotal,
			},
		}
	}

	vendor := *order.VendorTotal
	diff := order.DerivedTotal - vendor
	data := map[string]interface{}{
		"derived":    order.DerivedTotal,
		"vendor":     vendor,
		"difference": diff,
		"formula":    "sum(price * quantity) + delivery_fee - discount",
	}

	if diff == 0 {
		return model.Signal{
			Type:        model.SignalTotalMismatch,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("Derived total matches vendor total (%d)", vendor),
			Data:        data,
		}
	}

	// Off by half the order or more usually means items were missed entirely
	severity := model.SeverityWarning
	if vendor > 0 && abs(diff)*2 >= vendor {
		severity = model.SeverityCritical
	}

	return model.Signal{
		Type:        model.SignalTotalMismatch,
		Severity:    severity,
		Description: fmt.Sprintf("Derived total %d differs from vendor total %d by %d", order.DerivedTotal, vendor, diff),
		Data:        data,
	}
}

// checkItems flags an empty item list and items left without a price
func (r *Reviewer) checkItems(order model.ParsedOrder) []model.Signal {
	if len(order.Items) == 0 {
		return []model.Signal{{
			Type:        model.SignalNoItems,
			Severity:    model.SeverityCritical,
			Description: "No items recognized",
			Data:        map[string]interface{}{"items": 0},
		}}
	}

	var unpriced []string
	for _, item := range order.Items {
		if item.Price == 0 && !item.IsDiscount() {
			unpriced = append(unpriced, item.Name)
		}
	}
	if len(unpriced) == 0 {
		return nil
	}

	return []model.Signal{{
		Type:        model.SignalUnpricedItem,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d item(s) need manual pricing: %s", len(unpriced), strings.Join(unpriced, ", ")),
		Data: map[string]interface{}{
			"unpriced": len(unpriced),
			"items":    len(order.Items),
			"names":    unpriced,
		},
	}}
}

func (r *Reviewer) checkContact(order model.ParsedOrder) (model.Signal, bool) {
	switch {
	case order.CustomerName == "" && order.Contact == "":
		return model.Signal{
			Type:        model.SignalMissingContact,
			Severity:    model.SeverityWarning,
			Description: "No customer name or phone number",
		}, true
	case order.Contact == "":
		return model.Signal{
			Type:        model.SignalMissingContact,
			Severity:    model.SeverityInfo,
			Description: "No phone number",
			Data:        map[string]interface{}{"customer_name": order.CustomerName},
		}, true
	}
	return model.Signal{}, false
}

func (r *Reviewer) checkSchedule(order model.ParsedOrder) (model.Signal, bool) {
	switch {
	case order.Date == "":
		return model.Signal{
			Type:        model.SignalMissingSchedule,
			Severity:    model.SeverityWarning,
			Description: "No order date; date-bound products were not matched",
			Data:        map[string]interface{}{"time": order.Time},
		}, true
	case order.Time == "":
		return model.Signal{
			Type:        model.SignalMissingSchedule,
			Severity:    model.SeverityInfo,
			Description: "No order time",
			Data:        map[string]interface{}{"date": order.Date},
		}, true
	}
	return model.Signal{}, false
}

func (r *Reviewer) checkAddress(order model.ParsedOrder) (model.Signal, bool) {
	if order.Fulfillment != model.FulfillmentDelivery || order.Address != "" {
		return model.Signal{}, false
	}
	return model.Signal{
		Type:        model.SignalMissingAddress,
		Severity:    model.SeverityWarning,
		Description: "Delivery order without an address",
	}, true
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
