package models

import "time"

type Category struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type Supplier struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

type Product struct {
	Id           string    `json:"id"`
	Name         string    `json:"name"`
	CategoryId   string    `json:"categoryId"`
	Stock        int       `json:"stock"`
	ReorderPoint int       `json:"reorderPoint"`
	ReorderLot   int       `json:"reorderLot"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}

// Understocked reports whether the product is at or below its reorder
// threshold and therefore a candidate for the next quote round.
func (p Product) Understocked() bool {
	return p.Stock <= p.ReorderPoint
}
