package usecase

import (
	"strings"

	"github.com/user/leafmarket/internal/domain"
)

// lowStockThreshold marks products about to run out.
const lowStockThreshold = 5

// taxRate is the fixed checkout tax applied to the cart subtotal.
const taxRate = 0.10

// AllCategories is the filter value that matches every category.
const AllCategories = "All"

// ProductStats summarizes a product list for the admin dashboard.
type ProductStats struct {
	Total          int     `json:"total"`
	Active         int     `json:"active"`
	Inactive       int     `json:"inactive"`
	LowStock       int     `json:"lowStock"`
	InventoryValue float64 `json:"inventoryValue"`
}

// ComputeProductStats reduces a product list to its dashboard summary.
// Pure; recomputed on every call.
func ComputeProductStats(products []domain.Product) ProductStats {
	stats := ProductStats{Total: len(products)}
	for _, p := range products {
		if p.Status == domain.StatusActive {
			stats.Active++
		} else {
			stats.Inactive++
		}
		if p.Stock <= lowStockThreshold {
			stats.LowStock++
		}
		stats.InventoryValue += p.Price * float64(p.Stock)
	}
	return stats
}

// FilterProducts narrows a product list by exact category match (skipped
// for "All") and a case-insensitive substring match against name or
// description. An empty search term matches everything.
func FilterProducts(products []domain.Product, category, searchTerm string) []domain.Product {
	filtered := make([]domain.Product, 0, len(products))
	term := strings.ToLower(searchTerm)
	for _, p := range products {
		if category != AllCategories && category != "" && p.Category != category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// OrderStats summarizes an order list. Revenue counts delivered orders
// only.
type OrderStats struct {
	Total     int     `json:"total"`
	Pending   int     `json:"pending"`
	Confirmed int     `json:"confirmed"`
	Shipped   int     `json:"shipped"`
	Delivered int     `json:"delivered"`
	Cancelled int     `json:"cancelled"`
	Revenue   float64 `json:"revenue"`
}

// ComputeOrderStats reduces an order list to its per-status counts and
// delivered revenue.
func ComputeOrderStats(orders []domain.Order) OrderStats {
	stats := OrderStats{Total: len(orders)}
	for _, o := range orders {
		switch o.Status {
		case domain.OrderPending:
			stats.Pending++
		case domain.OrderConfirmed:
			stats.Confirmed++
		case domain.OrderShipped:
			stats.Shipped++
		case domain.OrderDelivered:
			stats.Delivered++
			stats.Revenue += o.Total
		case domain.OrderCancelled:
			stats.Cancelled++
		}
	}
	return stats
}

// ComputeCartTotals sums the cart lines and applies the fixed tax rate.
func ComputeCartTotals(items []domain.CartItem) domain.CartTotals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	tax := subtotal * taxRate
	return domain.CartTotals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}
