package domain

import "time"

// Product mirrors the backend product resource.
type Product struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	Description  string    `json:"description,omitempty"`
	Price        float64   `json:"price"`
	Stock        int       `json:"stock_quantity"`
	MinStock     int       `json:"minimum_stock"`
	CategoryID   int       `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	LowStock     bool      `json:"is_low_stock"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsLowStock recomputes the low-stock threshold locally. The server sends
// is_low_stock too; this exists for rows mutated in place after a stock
// adjustment, before the next refetch.
func (p Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

// ProductSortColumns are the column keys the product list can sort by,
// in the order they cycle on screen.
var ProductSortColumns = []string{"name", "sku", "price", "stock_quantity"}
