package catalog

import "storefront/models"

// Selector tracks the displayed color per product name. Entries are created
// lazily on first selection.
type Selector struct {
	selected map[string]string
}

func NewSelector() *Selector {
	return &Selector{selected: make(map[string]string)}
}

// SelectColor records color as the active color of productName. Colors the
// product does not offer are stored but ignored by ActiveVariant.
func (s *Selector) SelectColor(productName, color string) {
	if s.selected == nil {
		s.selected = make(map[string]string)
	}
	s.selected[productName] = color
}

// Selected returns the explicit selection for productName, if any.
func (s *Selector) Selected(productName string) (string, bool) {
	c, ok := s.selected[productName]
	return c, ok
}

// ActiveVariant returns the variant matching the selected color, or the
// first variant when nothing valid is selected.
func (s *Selector) ActiveVariant(p models.Product) models.Variant {
	if len(p.Variants) == 0 {
		return models.Variant{}
	}
	if color, ok := s.selected[p.Name]; ok {
		if v, found := p.Variant(color); found {
			return v
		}
	}
	return p.Variants[0]
}

// ActiveColor is the color of ActiveVariant.
func (s *Selector) ActiveColor(p models.Product) string {
	return s.ActiveVariant(p).Color
}

// Reset forgets every selection.
func (s *Selector) Reset() {
	s.selected = make(map[string]string)
}
