package model

// ProductType classifies catalog products
type ProductType string

const (
	ProductRegular  ProductType = "regular"
	ProductDaily    ProductType = "daily"    // bound to TargetDate
	ProductSpecial  ProductType = "special"  // bound to TargetDate
	ProductLunchbox ProductType = "lunchbox"
)

// IsDateBound reports whether products of this type only match on their target date
func (t ProductType) IsDateBound() bool {
	return t == ProductDaily || t == ProductSpecial
}

// CatalogProduct is a read-only product master record
type CatalogProduct struct {
	ID         int64       `json:"id" yaml:"id"`
	Name       string      `json:"name" yaml:"name"`
	Price      int64       `json:"price" yaml:"price"`
	Type       ProductType `json:"type" yaml:"type"`
	TargetDate string      `json:"target_date,omitempty" yaml:"target_date,omitempty"` // YYYY-MM-DD
}
