package models

import "time"

// Product представляет товар каталога
type Product struct {
	ID          string    `json:"id"`
	SKU         string    `json:"sku" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price" validate:"gte=0"`
	Currency    Currency  `json:"currency" validate:"required,oneof=USD EUR ILS"`
	Stock       int       `json:"stock" validate:"gte=0"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
