package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Order is a customer purchase with its lifecycle, payment and delivery state.
// Version is bumped on every write and used for compare-and-swap updates.
type Order struct {
	Record
	OrderNumber     string         `gorm:"size:64;uniqueIndex" json:"orderNumber"`
	CustomerID      *uuid.UUID     `gorm:"size:36;index" json:"customerId,omitempty"`
	CustomerName    string         `gorm:"size:255" json:"customer"`
	CustomerPhone   string         `gorm:"size:32" json:"customerPhone,omitempty"`
	CustomerEmail   string         `gorm:"size:255" json:"customerEmail,omitempty"`
	ShippingAddress string         `json:"shippingAddress"`
	OrderDate       time.Time      `json:"date"`
	TotalAmount     float64        `json:"totalAmount"`
	Status          OrderStatus    `gorm:"size:32;index" json:"status"`
	PaymentStatus   PaymentStatus  `gorm:"size:32" json:"paymentStatus"`
	PaymentMethod   PaymentMethod  `gorm:"size:32" json:"paymentMethod"`
	DeliveryStatus  DeliveryStatus `gorm:"size:32;index" json:"deliveryStatus"`
	ShipperID       *uuid.UUID     `gorm:"size:36;index" json:"shipperId,omitempty"`
	AcceptedAt      *time.Time     `json:"acceptedAt,omitempty"`
	PickedUpAt      *time.Time     `json:"pickedUpAt,omitempty"`
	InTransitAt     *time.Time     `json:"inTransitAt,omitempty"`
	DeliveredAt     *time.Time     `json:"deliveredAt,omitempty"`
	CancelledAt     *time.Time     `json:"cancelledAt,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	Version         int64          `gorm:"not null;default:1" json:"version"`
	Items           []OrderItem    `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// OrderItem is one line of an order. Name and price are snapshots taken when
// the order was placed.
type OrderItem struct {
	Record
	OrderID     uuid.UUID  `gorm:"size:36;index" json:"orderId"`
	ProductID   *uuid.UUID `gorm:"size:36" json:"productId,omitempty"`
	ProductName string     `json:"productName"`
	SKU         string     `gorm:"size:64" json:"sku,omitempty"`
	Quantity    int        `json:"quantity"`
	UnitPrice   float64    `json:"unitPrice"`
	LineTotal   float64    `json:"lineTotal"`
}

// AssignIDs keys the order and every line, and links the lines to the order.
func (o *Order) AssignIDs() {
	id := o.EnsureID()
	for i := range o.Items {
		o.Items[i].EnsureID()
		o.Items[i].OrderID = id
	}
}

// AssignedTo reports whether courierID holds the claim on the order.
func (o *Order) AssignedTo(courierID uuid.UUID) bool {
	return o.ShipperID != nil && *o.ShipperID == courierID
}

// Available reports whether a courier may claim the order.
func (o *Order) Available() bool {
	return o.Status == StatusCompleted && o.ShipperID == nil && o.DeliveryStatus == DeliveryUnset
}

// ItemsTotal sums the line totals.
func (o *Order) ItemsTotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += it.LineTotal
	}
	return sum
}

// MarshalJSON adds the Vietnamese labels next to each enum code.
func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		StatusLabel         string `json:"statusLabel"`
		PaymentStatusLabel  string `json:"paymentStatusLabel"`
		PaymentMethodLabel  string `json:"paymentMethodLabel"`
		DeliveryStatusLabel string `json:"deliveryStatusLabel"`
	}{
		plain:               plain(o),
		StatusLabel:         o.Status.Label(),
		PaymentStatusLabel:  o.PaymentStatus.Label(),
		PaymentMethodLabel:  o.PaymentMethod.Label(),
		DeliveryStatusLabel: o.DeliveryStatus.Label(),
	})
}
