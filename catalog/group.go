package catalog

import "storefront/models"

// Group folds product rows into the type → name → product grouping. Rows that
// share a type and a name become variants of one product, in arrival order.
// The input is not modified and the returned catalog shares no memory with
// any previous grouping.
func Group(rows []models.ProductRow) models.Catalog {
	var types []models.ProductType
	typeIdx := make(map[string]int)
	productIdx := make(map[[2]string]int)

	for _, row := range rows {
		ti, ok := typeIdx[row.Type]
		if !ok {
			ti = len(types)
			typeIdx[row.Type] = ti
			types = append(types, models.ProductType{Name: row.Type})
		}

		key := [2]string{row.Type, row.Name}
		pi, ok := productIdx[key]
		if !ok {
			pi = len(types[ti].Products)
			productIdx[key] = pi
			types[ti].Products = append(types[ti].Products, models.Product{
				Name: row.Name,
				Type: row.Type,
			})
		}

		p := &types[ti].Products[pi]
		p.Variants = append(p.Variants, models.Variant{
			ID:       row.ID,
			Color:    row.Colors,
			Price:    row.Price,
			Stock:    row.Stock,
			ImageURL: row.ImageURL,
		})
	}

	return models.NewCatalog(types)
}
