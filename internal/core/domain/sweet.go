package domain

import "time"

// Sweet is a named, priced, stock-tracked product entry.
//
// Quantity never goes negative: every decrement is guarded by an
// availability check executed atomically with the write.
type Sweet struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Quantity  int64     `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
