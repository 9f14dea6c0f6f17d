package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/example/shopops/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when a unique field is already used by another record.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrVersionConflict is returned when a compare-and-swap update lost a race.
	ErrVersionConflict = errors.New("version conflict")
)

// Queue names one of the three courier views over the order collection.
type Queue int

const (
	QueueAvailable Queue = iota + 1
	QueueAssigned
	QueueDelivered
)

func (q Queue) String() string {
	switch q {
	case QueueAvailable:
		return "available"
	case QueueAssigned:
		return "assigned"
	case QueueDelivered:
		return "delivered"
	}
	return "unknown"
}

// OrderSummary aggregates orders placed inside a time window.
type OrderSummary struct {
	TotalOrders     int64                          `json:"totalOrders"`
	ByStatus        map[models.OrderStatus]int64   `json:"byStatus"`
	ByPaymentStatus map[models.PaymentStatus]int64 `json:"byPaymentStatus"`
	Revenue         float64                        `json:"revenue"`
	Delivered       int64                          `json:"delivered"`
}

func newOrderSummary() *OrderSummary {
	return &OrderSummary{
		ByStatus:        make(map[models.OrderStatus]int64),
		ByPaymentStatus: make(map[models.PaymentStatus]int64),
	}
}

// OrderRepository persists orders. Update is a compare-and-swap on Version:
// it writes only when the stored version equals expectedVersion and then
// sets order.Version to expectedVersion+1.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	OrderNumberTaken(ctx context.Context, orderNumber string, exclude uuid.UUID) (bool, error)
	List(ctx context.Context, offset, limit int) ([]models.Order, int64, error)
	ListQueue(ctx context.Context, queue Queue, courierID uuid.UUID) ([]models.Order, error)
	Update(ctx context.Context, order *models.Order, expectedVersion int64) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) (int64, error)
	Summarize(ctx context.Context, since time.Time) (*OrderSummary, error)
}
