package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// The product and order APIs speak plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductRow is one record of GET /products. Colors carries a single color
// name despite the plural.
type ProductRow struct {
	ID       ID              `json:"id"`
	Type     string          `json:"type"`
	Name     string          `json:"name"`
	Colors   string          `json:"colors"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	ImageURL string          `json:"image_url"`
}

// Variant is a color/stock/price option of a product.
type Variant struct {
	ID       ID              `json:"id"`
	Color    string          `json:"color"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	ImageURL string          `json:"image_url"`
}

// Product groups the variants sharing a type and a name.
type Product struct {
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Variants []Variant `json:"variants"`
}

// Variant returns the variant with the given color.
func (p Product) Variant(color string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.Color == color {
			return v, true
		}
	}
	return Variant{}, false
}

// ProductType holds the products of one type in first-seen order.
type ProductType struct {
	Name     string    `json:"type"`
	Products []Product `json:"products"`
}

// Catalog is the type → name → product grouping. The zero value is an
// empty catalog. Values are never mutated after construction.
type Catalog struct {
	types []ProductType
}

// NewCatalog wraps an already grouped list.
func NewCatalog(types []ProductType) Catalog {
	return Catalog{types: types}
}

// Types returns the product types in first-seen order.
func (c Catalog) Types() []ProductType {
	out := make([]ProductType, len(c.types))
	copy(out, c.types)
	return out
}

// Products returns the products of the given type.
func (c Catalog) Products(typ string) []Product {
	for _, t := range c.types {
		if t.Name == typ {
			out := make([]Product, len(t.Products))
			copy(out, t.Products)
			return out
		}
	}
	return nil
}

// Lookup finds a product by type and name.
func (c Catalog) Lookup(typ, name string) (Product, bool) {
	for _, t := range c.types {
		if t.Name != typ {
			continue
		}
		for _, p := range t.Products {
			if p.Name == name {
				return p, true
			}
		}
	}
	return Product{}, false
}

// FindProduct returns the first product with the given name across types.
func (c Catalog) FindProduct(name string) (Product, bool) {
	for _, t := range c.types {
		for _, p := range t.Products {
			if p.Name == name {
				return p, true
			}
		}
	}
	return Product{}, false
}

// FindVariant locates a variant and its product by id.
func (c Catalog) FindVariant(id ID) (Product, Variant, bool) {
	for _, t := range c.types {
		for _, p := range t.Products {
			for _, v := range p.Variants {
				if v.ID == id {
					return p, v, true
				}
			}
		}
	}
	return Product{}, Variant{}, false
}

// Len reports the number of products.
func (c Catalog) Len() int {
	n := 0
	for _, t := range c.types {
		n += len(t.Products)
	}
	return n
}
