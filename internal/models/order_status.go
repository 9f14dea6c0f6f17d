package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OrderStatus is the order lifecycle field.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus tracks money collection for an order.
type PaymentStatus string

const (
	PaymentAwaiting PaymentStatus = "awaiting_payment"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentMethod is fixed at creation and decides the payment status on confirmation.
type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "cod"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

// DeliveryStatus is the courier sub-lifecycle. The zero value means no courier
// has touched the order yet.
type DeliveryStatus string

const (
	DeliveryUnset     DeliveryStatus = ""
	DeliveryPickedUp  DeliveryStatus = "picked_up"
	DeliveryInTransit DeliveryStatus = "in_transit"
	DeliveryDelivered DeliveryStatus = "delivered"
)

var statusLabels = map[OrderStatus]string{
	StatusPending:   "Đang xử lý",
	StatusCompleted: "Đã hoàn thành",
	StatusCancelled: "Đã hủy",
}

var paymentStatusLabels = map[PaymentStatus]string{
	PaymentAwaiting: "Chờ thanh toán",
	PaymentPaid:     "Đã thanh toán",
	PaymentRefunded: "Đã hoàn tiền",
}

var paymentMethodLabels = map[PaymentMethod]string{
	PaymentCOD:          "COD",
	PaymentBankTransfer: "Chuyển khoản",
}

var deliveryStatusLabels = map[DeliveryStatus]string{
	DeliveryUnset:     "Chờ lấy hàng",
	DeliveryPickedUp:  "Đã nhận hàng",
	DeliveryInTransit: "Đang giao",
	DeliveryDelivered: "Đã giao hàng",
}

// StatusTransitions lists the lifecycle moves the engine accepts. Cancel is
// allowed from every non-cancelled state; Completed is reachable only from Pending.
var StatusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusCompleted, StatusCancelled},
	StatusCompleted: {StatusCancelled},
	StatusCancelled: {},
}

// deliverySequence is the only order in which couriers may advance an order.
var deliverySequence = []DeliveryStatus{
	DeliveryUnset,
	DeliveryPickedUp,
	DeliveryInTransit,
	DeliveryDelivered,
}

// CanTransition reports whether from -> to is in the transition table.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range StatusTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Label returns the Vietnamese display string.
func (s OrderStatus) Label() string { return statusLabels[s] }

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s PaymentStatus) Label() string { return paymentStatusLabels[s] }

func (s PaymentStatus) Valid() bool {
	_, ok := paymentStatusLabels[s]
	return ok
}

func (m PaymentMethod) Label() string { return paymentMethodLabels[m] }

func (m PaymentMethod) Valid() bool {
	_, ok := paymentMethodLabels[m]
	return ok
}

// PaymentStatusOnConfirm derives the payment status an order gets when an admin
// confirms it: cash on delivery still has to be collected, a bank transfer is
// already settled.
func (m PaymentMethod) PaymentStatusOnConfirm() PaymentStatus {
	if m == PaymentBankTransfer {
		return PaymentPaid
	}
	return PaymentAwaiting
}

func (d DeliveryStatus) Label() string { return deliveryStatusLabels[d] }

func (d DeliveryStatus) Valid() bool {
	_, ok := deliveryStatusLabels[d]
	return ok
}

// Next returns the single status that may follow d. ok is false for Delivered.
func (d DeliveryStatus) Next() (DeliveryStatus, bool) {
	for i, s := range deliverySequence {
		if s == d && i+1 < len(deliverySequence) {
			return deliverySequence[i+1], true
		}
	}
	return "", false
}

// ParseOrderStatus accepts a code ("pending") or its label ("Đang xử lý").
func ParseOrderStatus(v string) (OrderStatus, error) {
	for code, label := range statusLabels {
		if matches(v, string(code), label) {
			return code, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", v)
}

// ParsePaymentStatus accepts a code or its label.
func ParsePaymentStatus(v string) (PaymentStatus, error) {
	for code, label := range paymentStatusLabels {
		if matches(v, string(code), label) {
			return code, nil
		}
	}
	return "", fmt.Errorf("unknown payment status %q", v)
}

// ParsePaymentMethod accepts "cod", "COD", "bank_transfer" or "Chuyển khoản".
func ParsePaymentMethod(v string) (PaymentMethod, error) {
	for code, label := range paymentMethodLabels {
		if matches(v, string(code), label) {
			return code, nil
		}
	}
	return "", fmt.Errorf("unknown payment method %q", v)
}

// ParseDeliveryStatus accepts a code or its label. An empty string is unset.
func ParseDeliveryStatus(v string) (DeliveryStatus, error) {
	if strings.TrimSpace(v) == "" {
		return DeliveryUnset, nil
	}
	for code, label := range deliveryStatusLabels {
		if code != DeliveryUnset && matches(v, string(code), label) {
			return code, nil
		}
	}
	return "", fmt.Errorf("unknown delivery status %q", v)
}

func matches(v, code, label string) bool {
	v = strings.TrimSpace(v)
	return strings.EqualFold(v, code) || v == label
}

// UnmarshalJSON lets clients send either the code or the Vietnamese label.
// An unknown value is kept as sent and fails Valid, so request validation can
// report it against the field.
func (s *OrderStatus) UnmarshalJSON(b []byte) error {
	v, err := decodeEnum(b, ParseOrderStatus)
	*s = v
	return err
}

func (s *PaymentStatus) UnmarshalJSON(b []byte) error {
	v, err := decodeEnum(b, ParsePaymentStatus)
	*s = v
	return err
}

func (m *PaymentMethod) UnmarshalJSON(b []byte) error {
	v, err := decodeEnum(b, ParsePaymentMethod)
	*m = v
	return err
}

func (d *DeliveryStatus) UnmarshalJSON(b []byte) error {
	v, err := decodeEnum(b, ParseDeliveryStatus)
	*d = v
	return err
}

func decodeEnum[T ~string](b []byte, parse func(string) (T, error)) (T, error) {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return "", err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if parsed, err := parse(raw); err == nil {
		return parsed, nil
	}
	return T(raw), nil
}
