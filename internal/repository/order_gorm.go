package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/shopops/internal/models"
)

// GormOrderRepository stores orders in a SQL database through gorm.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository constructs GormOrderRepository.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.Version == 0 {
		order.Version = 1
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return TranslateSQLError(err)
	}
	return nil
}

func (r *GormOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		return nil, TranslateSQLError(err)
	}
	return &order, nil
}

func (r *GormOrderRepository) OrderNumberTaken(ctx context.Context, orderNumber string, exclude uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_number = ? AND id <> ?", orderNumber, exclude).
		Count(&count).Error
	return count > 0, err
}

func (r *GormOrderRepository) List(ctx context.Context, offset, limit int) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("order_date desc, created_at desc").
		Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *GormOrderRepository) ListQueue(ctx context.Context, queue Queue, courierID uuid.UUID) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Preload("Items")

	switch queue {
	case QueueAvailable:
		query = query.
			Where("status = ? AND shipper_id IS NULL", models.StatusCompleted).
			Where("(delivery_status = ? OR delivery_status IS NULL)", models.DeliveryUnset).
			Order("order_date asc")
	case QueueAssigned:
		query = query.
			Where("shipper_id = ? AND status <> ?", courierID, models.StatusCancelled).
			Where("(delivery_status <> ? OR delivery_status IS NULL)", models.DeliveryDelivered).
			Order("accepted_at asc")
	case QueueDelivered:
		query = query.
			Where("shipper_id = ? AND delivery_status = ?", courierID, models.DeliveryDelivered).
			Order("delivered_at desc")
	default:
		return nil, fmt.Errorf("unknown queue %d", queue)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormOrderRepository) Update(ctx context.Context, order *models.Order, expectedVersion int64) error {
	next := expectedVersion + 1
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, expectedVersion).
		Updates(orderColumns(order, next))
	if res.Error != nil {
		return TranslateSQLError(res.Error)
	}

	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}

	order.Version = next
	return nil
}

func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Order{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Delete(&models.OrderItem{}, "order_id = ?", id).Error
	})
}

func (r *GormOrderRepository) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("1 = 1").Delete(&models.Order{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

func (r *GormOrderRepository) Summarize(ctx context.Context, since time.Time) (*OrderSummary, error) {
	summary := newOrderSummary()
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Order{}).Where("order_date >= ?", since)
	}

	type statusRow struct {
		Status string
		Count  int64
		Amount float64
	}
	var byStatus []statusRow
	if err := base().
		Select("status, count(*) as count, COALESCE(SUM(total_amount), 0) as amount").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		status := models.OrderStatus(row.Status)
		summary.ByStatus[status] = row.Count
		summary.TotalOrders += row.Count
		if status != models.StatusCancelled {
			summary.Revenue += row.Amount
		}
	}

	type paymentRow struct {
		PaymentStatus string
		Count         int64
	}
	var byPayment []paymentRow
	if err := base().
		Select("payment_status, count(*) as count").
		Group("payment_status").
		Scan(&byPayment).Error; err != nil {
		return nil, err
	}
	for _, row := range byPayment {
		summary.ByPaymentStatus[models.PaymentStatus(row.PaymentStatus)] = row.Count
	}

	if err := base().Where("delivery_status = ?", models.DeliveryDelivered).
		Count(&summary.Delivered).Error; err != nil {
		return nil, err
	}

	return summary, nil
}

// orderColumns lists every mutable column so zero values (cleared claims,
// empty delivery status) are written too.
func orderColumns(o *models.Order, version int64) map[string]any {
	return map[string]any{
		"order_number":     o.OrderNumber,
		"customer_id":      o.CustomerID,
		"customer_name":    o.CustomerName,
		"customer_phone":   o.CustomerPhone,
		"customer_email":   o.CustomerEmail,
		"shipping_address": o.ShippingAddress,
		"order_date":       o.OrderDate,
		"total_amount":     o.TotalAmount,
		"status":           o.Status,
		"payment_status":   o.PaymentStatus,
		"delivery_status":  o.DeliveryStatus,
		"shipper_id":       o.ShipperID,
		"accepted_at":      o.AcceptedAt,
		"picked_up_at":     o.PickedUpAt,
		"in_transit_at":    o.InTransitAt,
		"delivered_at":     o.DeliveredAt,
		"cancelled_at":     o.CancelledAt,
		"notes":            o.Notes,
		"version":          version,
		"updated_at":       time.Now(),
	}
}

// TranslateSQLError maps gorm and driver errors onto the repository sentinels.
func TranslateSQLError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
