package domain

import "time"

// Transaction types. Stock-in raises a product's stock, stock-out lowers it.
const (
	StockIn  = "stock_in"
	StockOut = "stock_out"
)

// ValidTransactionTypes lists the types a transaction form may submit.
var ValidTransactionTypes = []string{StockIn, StockOut}

// Transaction mirrors the backend stock movement resource.
// CurrentStock is only populated on create responses, where the server
// reports the product's stock after applying the movement.
type Transaction struct {
	ID           int       `json:"id"`
	ProductID    int       `json:"product_id"`
	ProductName  string    `json:"product_name,omitempty"`
	Type         string    `json:"type"`
	Quantity     int       `json:"quantity"`
	Note         string    `json:"note,omitempty"`
	CreatedBy    int       `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	CurrentStock int       `json:"current_stock,omitempty"`
}

// ValidTransactionType returns true if t is a known transaction type.
func ValidTransactionType(t string) bool {
	return t == StockIn || t == StockOut
}
