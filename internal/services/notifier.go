package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/shopops/internal/models"
)

// Order event actions.
const (
	ActionCreated        = "order.created"
	ActionConfirmed      = "order.confirmed"
	ActionCancelled      = "order.cancelled"
	ActionPaymentChanged = "order.payment_status"
	ActionEdited         = "order.edited"
	ActionDeleted        = "order.deleted"
	ActionClearedAll     = "order.cleared_all"
	ActionAccepted       = "order.accepted"
	ActionRejected       = "order.rejected"
	ActionDelivery       = "order.delivery_status"
)

// OrderEvent describes one applied order mutation.
type OrderEvent struct {
	Action string
	Actor  Actor
	Order  *models.Order
	From   string
	To     string
}

// Notifier delivers order events to people outside the service.
type Notifier interface {
	NotifyOrderEvent(ctx context.Context, event OrderEvent) error
}

// MultiNotifier fans an event out to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) NotifyOrderEvent(ctx context.Context, event OrderEvent) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.NotifyOrderEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FormatPrice formats amount with thousand separators and the currency suffix.
func FormatPrice(amount float64, currency string) string {
	if currency == "" {
		currency = "₫"
	}
	str := fmt.Sprintf("%d", int64(amount))
	negative := strings.HasPrefix(str, "-")
	str = strings.TrimPrefix(str, "-")

	var result strings.Builder
	if negative {
		result.WriteString("-")
	}
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(".")
		}
		result.WriteRune(digit)
	}

	return result.String() + " " + currency
}

func eventTitle(action string) string {
	switch action {
	case ActionCreated:
		return "ĐƠN HÀNG MỚI"
	case ActionConfirmed:
		return "ĐƠN HÀNG ĐÃ XÁC NHẬN"
	case ActionCancelled:
		return "ĐƠN HÀNG ĐÃ HỦY"
	case ActionPaymentChanged:
		return "CẬP NHẬT THANH TOÁN"
	case ActionEdited:
		return "ĐƠN HÀNG ĐÃ SỬA"
	case ActionDeleted:
		return "ĐƠN HÀNG ĐÃ XÓA"
	case ActionClearedAll:
		return "ĐÃ XÓA TOÀN BỘ ĐƠN HÀNG"
	case ActionAccepted:
		return "SHIPPER ĐÃ NHẬN ĐƠN"
	case ActionRejected:
		return "SHIPPER ĐÃ TRẢ ĐƠN"
	case ActionDelivery:
		return "CẬP NHẬT GIAO HÀNG"
	}
	return action
}
