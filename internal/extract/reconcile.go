package extract

import "github.com/ppiankov/orderparse/internal/model"

// Reconcile computes the derived total: item lines plus delivery fee minus
// the discount. The summary discount is only subtracted when no discount
// pseudo-item already carries a reduction. The vendor total is left as read.
func Reconcile(order model.ParsedOrder) model.ParsedOrder {
	var total, itemDiscount int64
	for _, item := range order.Items {
		total += item.LineTotal()
		if item.IsDiscount() {
			itemDiscount += item.LineTotal()
		}
	}
	total += order.DeliveryFee
	if itemDiscount == 0 {
		total -= order.DiscountValue
	}
	order.DerivedTotal = total
	return order
}
