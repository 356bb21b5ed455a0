package store

import "catalog-admin/internal/domain"

// Metrics are the dashboard counters derived from cached state
type Metrics struct {
	TotalProducts    int
	TotalCategories  int
	ActiveProducts   int
	LowStockProducts int
}

// ComputeMetrics counts over the cached products and categories. Low stock
// means fewer than domain.LowStockThreshold units.
func ComputeMetrics(products ProductState, categories CategoryState) Metrics {
	m := Metrics{
		TotalProducts:   len(products.Items),
		TotalCategories: len(categories.Items),
	}
	for _, p := range products.Items {
		if p.IsActive {
			m.ActiveProducts++
		}
		if p.Stock < domain.LowStockThreshold {
			m.LowStockProducts++
		}
	}
	return m
}

// LowStock returns the cached products below the low stock threshold, in cache order
func LowStock(products ProductState) []domain.Product {
	low := []domain.Product{}
	for _, p := range products.Items {
		if p.Stock < domain.LowStockThreshold {
			low = append(low, p)
		}
	}
	return low
}
