package models

import "github.com/google/uuid"

// Product is a sellable item referenced by order lines.
type Product struct {
	Record
	SKU         string  `gorm:"size:64;uniqueIndex" json:"sku"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `gorm:"size:128;index" json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"imageUrl"`
	IsActive    bool    `gorm:"not null" json:"isActive"`
}

// Customer is the billing and shipping identity copied onto orders.
type Customer struct {
	Record
	Email   string `gorm:"size:255;uniqueIndex" json:"email"`
	Name    string `json:"name"`
	Phone   string `gorm:"size:32" json:"phone"`
	Address string `json:"address"`
}

// Review is a customer's rating of a delivered order.
type Review struct {
	Record
	OrderID    uuid.UUID  `gorm:"size:36;uniqueIndex" json:"orderId"`
	CustomerID *uuid.UUID `gorm:"size:36" json:"customerId,omitempty"`
	ProductID  *uuid.UUID `gorm:"size:36;index" json:"productId,omitempty"`
	Rating     int        `json:"rating"`
	Comment    string     `json:"comment"`
}
