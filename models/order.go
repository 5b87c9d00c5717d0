package models

import "github.com/shopspring/decimal"

type OrderItem struct {
	ID       ID              `json:"id"`
	Name     string          `json:"name"`
	Color    string          `json:"color"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url"`
}

// Total is Price * Quantity.
func (it OrderItem) Total() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// OrderRequest is the body of POST /orders.
type OrderRequest struct {
	Items []OrderItem `json:"items"`
	User  User        `json:"user"`
}

// Order is the confirmed order returned by the order API. It is never
// modified after it is received.
type Order struct {
	OrderID ID          `json:"orderId"`
	Items   []OrderItem `json:"items"`
	User    *User       `json:"user,omitempty"`
}

// Total sums the item totals.
func (o Order) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.Total())
	}
	return sum
}
