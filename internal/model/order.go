package model

// Fulfillment is how the customer receives the order
type Fulfillment string

const (
	FulfillmentPickup   Fulfillment = "pickup"
	FulfillmentDelivery Fulfillment = "delivery"
)

// ParsedOrder is the structured record recovered from one block of order text.
// Optional string fields are empty when the text did not carry them.
type ParsedOrder struct {
	CustomerName  string      `json:"customer_name,omitempty" yaml:"customer_name,omitempty"`
	Contact       string      `json:"contact,omitempty" yaml:"contact,omitempty"`
	Recipient     string      `json:"recipient,omitempty" yaml:"recipient,omitempty"`
	Fulfillment   Fulfillment `json:"fulfillment" yaml:"fulfillment"`
	Address       string      `json:"address,omitempty" yaml:"address,omitempty"`
	Date          string      `json:"date,omitempty" yaml:"date,omitempty"` // YYYY-MM-DD
	Time          string      `json:"time,omitempty" yaml:"time,omitempty"` // HH:MM, 24-hour
	Request       string      `json:"request,omitempty" yaml:"request,omitempty"`
	PaymentStatus string      `json:"payment_status,omitempty" yaml:"payment_status,omitempty"`

	DeliveryFee   int64 `json:"delivery_fee" yaml:"delivery_fee"`
	DiscountValue int64 `json:"discount_value" yaml:"discount_value"`

	Items        []OrderItem `json:"items" yaml:"items"`
	DerivedTotal int64       `json:"derived_total" yaml:"derived_total"`
	VendorTotal  *int64      `json:"vendor_total,omitempty" yaml:"vendor_total,omitempty"`
}

// NewParsedOrder returns an empty order with a non-nil item list
func NewParsedOrder() ParsedOrder {
	return ParsedOrder{
		Fulfillment: FulfillmentPickup,
		Items:       []OrderItem{},
	}
}

// OrderItem is one line of the order.
// Price is a unit price in whole won; it is negative only for discount lines.
type OrderItem struct {
	Name      string `json:"name" yaml:"name"`
	Quantity  int    `json:"quantity" yaml:"quantity"`
	Price     int64  `json:"price" yaml:"price"`
	ProductID int64  `json:"product_id,omitempty" yaml:"product_id,omitempty"` // 0 when not matched against the catalog
	Rule      string `json:"rule,omitempty" yaml:"rule,omitempty"`             // recognizer that produced the line
}

// LineTotal returns price × quantity
func (i OrderItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// IsDiscount reports whether the item is a discount pseudo-entry
func (i OrderItem) IsDiscount() bool {
	return i.Rule == RuleDiscount
}

// Names of the item recognizers, in priority order
const (
	RuleZone     = "zone"
	RuleParen    = "paren_quantity"
	RuleDiscount = "discount"
	RuleLabeled  = "labeled"
	RuleBare     = "bare_quantity"
)
