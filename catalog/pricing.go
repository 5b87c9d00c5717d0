package catalog

import (
	"github.com/shopspring/decimal"

	"storefront/models"
)

const DefaultDiscountColor = "Black"

var DefaultDiscountRate = decimal.RequireFromString("0.7")

// Pricing decides which variants are on sale. Exactly the variants whose
// color equals DiscountColor are discounted, to Rate of their list price.
type Pricing struct {
	DiscountColor string
	Rate          decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{DiscountColor: DefaultDiscountColor, Rate: DefaultDiscountRate}
}

func (p Pricing) OnSale(v models.Variant) bool {
	return v.Color == p.DiscountColor
}

// SalePrice is the list price scaled by Rate, rounded to 2 decimal places.
func (p Pricing) SalePrice(v models.Variant) decimal.Decimal {
	return v.Price.Mul(p.Rate).Round(2)
}

// UnitPrice is the price a variant is added to the cart at.
func (p Pricing) UnitPrice(v models.Variant) decimal.Decimal {
	if p.OnSale(v) {
		return p.SalePrice(v)
	}
	return v.Price
}
