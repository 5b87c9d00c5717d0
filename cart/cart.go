package cart

import (
	"errors"

	"github.com/shopspring/decimal"

	"storefront/models"
)

var (
	// ErrStockExceeded is returned when incrementing an existing line item
	// would go past the stock recorded when it was added.
	ErrStockExceeded = errors.New("you can't add more than the available stock")
	// ErrOutOfStock is returned when adding a variant with no stock.
	ErrOutOfStock = errors.New("out of stock")
)

// Cart is an ordered collection of line items keyed by variant id. It is not
// safe for concurrent use; the owning session serializes access.
//
// Every entry satisfies 1 <= Quantity <= Stock, where Stock is the value seen
// when the entry was created. Stock and price are never revalidated.
type Cart struct {
	items []models.LineItem
}

func New() *Cart {
	return &Cart{}
}

func (c *Cart) index(id models.ID) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Add increments the line item for variant, or inserts it with quantity 1 at
// unitPrice. On error the cart is unchanged.
func (c *Cart) Add(product models.Product, variant models.Variant, unitPrice decimal.Decimal) error {
	if i := c.index(variant.ID); i >= 0 {
		if c.items[i].Quantity+1 > c.items[i].Stock {
			return ErrStockExceeded
		}
		c.items[i].Quantity++
		return nil
	}

	if variant.Stock < 1 {
		return ErrOutOfStock
	}

	c.items = append(c.items, models.LineItem{
		ID:        variant.ID,
		Name:      product.Name,
		Color:     variant.Color,
		UnitPrice: unitPrice,
		ImageURL:  variant.ImageURL,
		Quantity:  1,
		Stock:     variant.Stock,
	})
	return nil
}

// Remove deletes the line item with the given id, if present.
func (c *Cart) Remove(id models.ID) {
	if i := c.index(id); i >= 0 {
		c.items = append(c.items[:i:i], c.items[i+1:]...)
	}
}

// SetQuantity stores n clamped into [1, stock] for the given id. Unknown ids
// are ignored.
func (c *Cart) SetQuantity(id models.ID, n int) {
	i := c.index(id)
	if i < 0 {
		return
	}
	c.items[i].Quantity = clamp(n, 1, c.items[i].Stock)
}

func clamp(n, lo, hi int) int {
	if n > hi {
		n = hi
	}
	if n < lo {
		n = lo
	}
	return n
}

func (c *Cart) Clear() {
	c.items = nil
}

// TotalPrice sums UnitPrice * Quantity over all entries.
func (c *Cart) TotalPrice() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

// TotalCount sums the quantities.
func (c *Cart) TotalCount() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []models.LineItem {
	out := make([]models.LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Get(id models.ID) (models.LineItem, bool) {
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	return models.LineItem{}, false
}

// Quantity returns the quantity held for id, 0 when absent.
func (c *Cart) Quantity(id models.ID) int {
	if i := c.index(id); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

func (c *Cart) Len() int      { return len(c.items) }
func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// OrderItems projects the cart into the order request shape.
func (c *Cart) OrderItems() []models.OrderItem {
	out := make([]models.OrderItem, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it.OrderItem())
	}
	return out
}

// Summary is the cart as returned to the client.
type Summary struct {
	Items      []models.LineItem `json:"items"`
	TotalCount int               `json:"totalCount"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
}

func (c *Cart) Summary() Summary {
	return Summary{
		Items:      c.Items(),
		TotalCount: c.TotalCount(),
		TotalPrice: c.TotalPrice(),
	}
}
