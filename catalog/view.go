package catalog

import (
	"github.com/shopspring/decimal"

	"storefront/models"
)

// Stock levels shown next to a variant.
const (
	StockHigh   = "high"
	StockMedium = "medium"
	StockLow    = "low"
)

// ProductCard is what the client renders for one product.
type ProductCard struct {
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Colors      []string        `json:"colors"`
	ActiveColor string          `json:"activeColor"`
	Variant     models.Variant  `json:"variant"`
	OnSale      bool            `json:"onSale"`
	Price       decimal.Decimal `json:"price"`
	ListPrice   decimal.Decimal `json:"listPrice"`
	StockLevel  string          `json:"stockLevel"`
	CanAdd      bool            `json:"canAdd"`
}

type TypeSection struct {
	Type     string        `json:"type"`
	Products []ProductCard `json:"products"`
}

// View renders the catalog with the active variant of every product.
// inCart reports the quantity of a variant already in the cart.
func View(c models.Catalog, sel *Selector, pricing Pricing, inCart func(models.ID) int) []TypeSection {
	types := c.Types()
	sections := make([]TypeSection, 0, len(types))
	for _, t := range types {
		section := TypeSection{Type: t.Name, Products: make([]ProductCard, 0, len(t.Products))}
		for _, p := range t.Products {
			section.Products = append(section.Products, Card(p, sel, pricing, inCart))
		}
		sections = append(sections, section)
	}
	return sections
}

// Card renders a single product.
func Card(p models.Product, sel *Selector, pricing Pricing, inCart func(models.ID) int) ProductCard {
	v := sel.ActiveVariant(p)
	colors := make([]string, 0, len(p.Variants))
	for _, pv := range p.Variants {
		colors = append(colors, pv.Color)
	}

	qty := 0
	if inCart != nil {
		qty = inCart(v.ID)
	}

	return ProductCard{
		Name:        p.Name,
		Type:        p.Type,
		Colors:      colors,
		ActiveColor: v.Color,
		Variant:     v,
		OnSale:      pricing.OnSale(v),
		Price:       pricing.UnitPrice(v),
		ListPrice:   v.Price,
		StockLevel:  StockLevel(v.Stock),
		CanAdd:      v.Stock > 0 && !(qty > 0 && qty >= v.Stock),
	}
}

func StockLevel(stock int) string {
	switch {
	case stock > 10:
		return StockHigh
	case stock > 5:
		return StockMedium
	default:
		return StockLow
	}
}
