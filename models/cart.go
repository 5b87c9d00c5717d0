package models

import "github.com/shopspring/decimal"

// LineItem represents a single entry of the session cart. UnitPrice and Stock
// are snapshotted when the item is first added.
type LineItem struct {
	ID        ID              `json:"id"`
	Name      string          `json:"name"`
	Color     string          `json:"color"`
	UnitPrice decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
}

// Subtotal is UnitPrice * Quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// OrderItem is the wire form of a line item sent to POST /orders and echoed
// back in the confirmed order.
func (li LineItem) OrderItem() OrderItem {
	return OrderItem{
		ID:       li.ID,
		Name:     li.Name,
		Color:    li.Color,
		Quantity: li.Quantity,
		Price:    li.UnitPrice,
		ImageURL: li.ImageURL,
	}
}
