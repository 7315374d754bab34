package models

import "time"

// OrderStatus — статус жизненного цикла заказа.
// Сервис заказов создаёт заказы только в статусе pending,
// дальнейшие переходы выполняют внешние сервисы.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusCancelled OrderStatus = "cancelled"
)

// Currency — код валюты, фиксируется для каждой позиции заказа
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyILS Currency = "ILS"
)

// Address — адрес доставки, телефон — единственное необязательное поле
type Address struct {
	FullName string `json:"fullName" validate:"required"`
	Street   string `json:"street" validate:"required"`
	Country  string `json:"country" validate:"required"`
	ZipCode  string `json:"zipCode" validate:"required"`
	Phone    string `json:"phone,omitempty"`
}

// OrderItem — позиция заказа. Название, sku, цена и валюта снимаются
// из каталога в момент заказа и дальше не пересчитываются.
type OrderItem struct {
	ProductID string   `json:"productId" validate:"required,uuid4"`
	SKU       string   `json:"sku,omitempty"`
	Name      string   `json:"name" validate:"required"`
	Size      string   `json:"size,omitempty"`
	Color     string   `json:"color,omitempty"`
	Quantity  int      `json:"quantity" validate:"required,gte=1"`
	UnitPrice float64  `json:"unitPrice" validate:"gte=0"`
	Currency  Currency `json:"currency" validate:"required,oneof=USD EUR ILS"`
}

// Order представляет заказ
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId" validate:"required,uuid4"`
	Items           []OrderItem `json:"items" validate:"required,min=1,dive"`
	Status          OrderStatus `json:"status" validate:"required,oneof=pending paid shipped cancelled"`
	Subtotal        float64     `json:"subtotal" validate:"gte=0"`
	ShippingCost    float64     `json:"shippingCost" validate:"gte=0"`
	Total           float64     `json:"total" validate:"gte=0"`
	ShippingAddress Address     `json:"shippingAddress"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}
