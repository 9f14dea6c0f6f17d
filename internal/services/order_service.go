package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/example/shopops/internal/logger"
	"github.com/example/shopops/internal/models"
	"github.com/example/shopops/internal/repository"
	"github.com/example/shopops/internal/utils"
)

// ConfirmPhrase must be sent verbatim to clear every order.
const ConfirmPhrase = "DELETE ALL"

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

const (
	notifyQueueSize = 256
	notifyTimeout   = 15 * time.Second
)

// OrderService applies the order lifecycle and the courier delivery flow.
type OrderService struct {
	orders   repository.OrderRepository
	ratings  repository.RatingReader
	stats    *StatsService
	notifier Notifier
	now      func() time.Time

	events  chan OrderEvent
	pending sync.WaitGroup
}

// NewOrderService builds an OrderService. stats and notifier may be nil.
// Notifications are delivered in order by one background worker.
func NewOrderService(orders repository.OrderRepository, ratings repository.RatingReader, stats *StatsService, notifier Notifier) *OrderService {
	s := &OrderService{
		orders:   orders,
		ratings:  ratings,
		stats:    stats,
		notifier: notifier,
		now:      time.Now,
	}
	if notifier != nil {
		s.events = make(chan OrderEvent, notifyQueueSize)
		go s.dispatch()
	}
	return s
}

// Wait blocks until every queued notification has been handed to the notifier.
func (s *OrderService) Wait() {
	s.pending.Wait()
}

// OrderItemInput is one line of a new order.
type OrderItemInput struct {
	ProductID   *uuid.UUID `json:"productId"`
	ProductName string     `json:"productName" validate:"required"`
	SKU         string     `json:"sku"`
	Quantity    int        `json:"quantity" validate:"gte=1"`
	UnitPrice   float64    `json:"unitPrice" validate:"gte=0"`
}

// CreateOrderInput is the payload of an admin-entered order.
type CreateOrderInput struct {
	OrderNumber     string               `json:"orderNumber" validate:"max=64"`
	CustomerID      *uuid.UUID           `json:"customerId"`
	Customer        string               `json:"customer" validate:"required"`
	CustomerPhone   string               `json:"customerPhone"`
	CustomerEmail   string               `json:"customerEmail" validate:"omitempty,email"`
	ShippingAddress string               `json:"shippingAddress"`
	Date            *time.Time           `json:"date"`
	TotalAmount     float64              `json:"totalAmount" validate:"gte=0"`
	Status          models.OrderStatus   `json:"status"`
	PaymentStatus   models.PaymentStatus `json:"paymentStatus"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod"`
	Notes           string               `json:"notes"`
	Items           []OrderItemInput     `json:"items" validate:"dive"`
}

// EditOrderInput is the full-record edit form. PaymentMethod is not editable.
type EditOrderInput struct {
	OrderNumber     string               `json:"orderNumber" validate:"required,max=64"`
	Customer        string               `json:"customer" validate:"required"`
	CustomerPhone   string               `json:"customerPhone"`
	CustomerEmail   string               `json:"customerEmail" validate:"omitempty,email"`
	Date            *time.Time           `json:"date" validate:"required"`
	TotalAmount     *float64             `json:"totalAmount" validate:"required,gte=0"`
	Status          models.OrderStatus   `json:"status" validate:"required"`
	PaymentStatus   models.PaymentStatus `json:"paymentStatus" validate:"required"`
	ShippingAddress string               `json:"shippingAddress" validate:"required"`
	Notes           string               `json:"notes"`
}

// OrderPage is one page of the admin order table.
type OrderPage struct {
	Orders      []models.Order `json:"orders"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
	TotalOrders int64          `json:"totalOrders"`
}

// Create stores a new order. A missing orderNumber is generated. New orders
// always start pending; completing or cancelling goes through Confirm/Cancel.
func (s *OrderService) Create(ctx context.Context, actor Actor, in CreateOrderInput) (*models.Order, error) {
	in.OrderNumber = strings.TrimSpace(in.OrderNumber)
	fields := checkEnums(utils.ValidateStruct(in), in.Status, in.PaymentStatus, in.PaymentMethod)
	if in.Status.Valid() && in.Status != models.StatusPending {
		if fields == nil {
			fields = map[string]string{}
		}
		fields["status"] = fmt.Sprintf("Đơn hàng mới phải ở trạng thái %s", models.StatusPending.Label())
	}
	if err := newValidationError(fields); err != nil {
		return nil, err
	}
	if in.OrderNumber == "" {
		in.OrderNumber = s.generateOrderNumber()
	}

	now := s.now()
	order := &models.Order{
		OrderNumber:     in.OrderNumber,
		CustomerID:      in.CustomerID,
		CustomerName:    strings.TrimSpace(in.Customer),
		CustomerPhone:   in.CustomerPhone,
		CustomerEmail:   in.CustomerEmail,
		ShippingAddress: in.ShippingAddress,
		OrderDate:       now,
		TotalAmount:     in.TotalAmount,
		Status:          models.StatusPending,
		PaymentStatus:   in.PaymentStatus,
		PaymentMethod:   in.PaymentMethod,
		Notes:           in.Notes,
	}
	if in.Date != nil {
		order.OrderDate = *in.Date
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = models.PaymentCOD
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = models.PaymentAwaiting
	}

	for _, it := range in.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			SKU:         it.SKU,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.UnitPrice * float64(it.Quantity),
		})
	}
	if order.TotalAmount == 0 && len(order.Items) > 0 {
		order.TotalAmount = order.ItemsTotal()
	}

	if err := s.ensureOrderNumberFree(ctx, order.OrderNumber, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, s.wrapWriteError("create order", err)
	}

	s.applied(ctx, OrderEvent{Action: ActionCreated, Actor: actor, Order: order, To: string(order.Status)})
	return order, nil
}

// List returns one page of orders, newest first.
func (s *OrderService) List(ctx context.Context, pg utils.Pagination) (*OrderPage, error) {
	orders, total, err := s.orders.List(ctx, pg.Offset, pg.Limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &OrderPage{
		Orders:      orders,
		CurrentPage: pg.Page,
		TotalPages:  pg.TotalPages(total),
		TotalOrders: total,
	}, nil
}

// Get returns one order.
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return order, nil
}

// Confirm moves a pending order to completed and derives its payment status
// from the payment method.
func (s *OrderService) Confirm(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != models.StatusPending {
		return nil, fmt.Errorf("confirm %s from %s: %w", order.OrderNumber, order.Status, ErrInvalidTransition)
	}

	from := order.Status
	order.Status = models.StatusCompleted
	order.PaymentStatus = order.PaymentMethod.PaymentStatusOnConfirm()
	if err := s.update(ctx, order); err != nil {
		return nil, err
	}

	s.applied(ctx, OrderEvent{Action: ActionConfirmed, Actor: actor, Order: order, From: string(from), To: string(order.Status)})
	return order, nil
}

// Cancel moves any non-cancelled order to cancelled. Stock is not restored.
func (s *OrderService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransition(models.StatusCancelled) {
		return nil, fmt.Errorf("cancel %s from %s: %w", order.OrderNumber, order.Status, ErrInvalidTransition)
	}

	from := order.Status
	now := s.now()
	order.Status = models.StatusCancelled
	order.CancelledAt = &now
	if err := s.update(ctx, order); err != nil {
		return nil, err
	}

	s.applied(ctx, OrderEvent{Action: ActionCancelled, Actor: actor, Order: order, From: string(from), To: string(order.Status)})
	return order, nil
}

// SetPaymentStatus sets any payment status other than the current one.
func (s *OrderService) SetPaymentStatus(ctx context.Context, actor Actor, id uuid.UUID, status models.PaymentStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"paymentStatus": "paymentStatus không hợp lệ"}}
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == status {
		return nil, fmt.Errorf("payment status of %s already %s: %w", order.OrderNumber, status, ErrInvalidTransition)
	}

	from := order.PaymentStatus
	order.PaymentStatus = status
	if err := s.update(ctx, order); err != nil {
		return nil, err
	}

	s.applied(ctx, OrderEvent{Action: ActionPaymentChanged, Actor: actor, Order: order, From: string(from), To: string(status)})
	return order, nil
}

// Edit replaces the editable fields. A status change must follow the
// transition table. The order may keep its own orderNumber.
func (s *OrderService) Edit(ctx context.Context, actor Actor, id uuid.UUID, in EditOrderInput) (*models.Order, error) {
	in.OrderNumber = strings.TrimSpace(in.OrderNumber)
	fields := checkEnums(utils.ValidateStruct(in), in.Status, in.PaymentStatus, "")
	if err := newValidationError(fields); err != nil {
		return nil, err
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status != order.Status && !order.Status.CanTransition(in.Status) {
		return nil, fmt.Errorf("edit %s from %s to %s: %w", order.OrderNumber, order.Status, in.Status, ErrInvalidTransition)
	}
	if err := s.ensureOrderNumberFree(ctx, in.OrderNumber, order.ID); err != nil {
		return nil, err
	}

	from := order.Status
	if in.Status == models.StatusCancelled && from != models.StatusCancelled {
		now := s.now()
		order.CancelledAt = &now
	}
	order.OrderNumber = in.OrderNumber
	order.CustomerName = strings.TrimSpace(in.Customer)
	order.CustomerPhone = in.CustomerPhone
	order.CustomerEmail = in.CustomerEmail
	order.OrderDate = *in.Date
	order.TotalAmount = *in.TotalAmount
	order.Status = in.Status
	order.PaymentStatus = in.PaymentStatus
	order.ShippingAddress = in.ShippingAddress
	order.Notes = in.Notes

	if err := s.update(ctx, order); err != nil {
		return nil, err
	}

	s.applied(ctx, OrderEvent{Action: ActionEdited, Actor: actor, Order: order, From: string(from), To: string(order.Status)})
	return order, nil
}

// Delete removes one order and its lines.
func (s *OrderService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	order, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}

	s.applied(ctx, OrderEvent{Action: ActionDeleted, Actor: actor, Order: order})
	return nil
}

// DeleteAll removes every order. Only an admin sending ConfirmPhrase may do it.
func (s *OrderService) DeleteAll(ctx context.Context, actor Actor, phrase string) (int64, error) {
	if actor.Role != models.RoleAdmin {
		return 0, fmt.Errorf("clear all by %s: %w", actor.Role, ErrForbidden)
	}
	if strings.TrimSpace(phrase) != ConfirmPhrase {
		return 0, &ValidationError{Fields: map[string]string{
			"confirmPhrase": fmt.Sprintf("Vui lòng nhập \"%s\" để xác nhận", ConfirmPhrase),
		}}
	}

	deleted, err := s.orders.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete all orders: %w", err)
	}

	s.applied(ctx, OrderEvent{Action: ActionClearedAll, Actor: actor, To: fmt.Sprintf("%d", deleted)})
	return deleted, nil
}

func (s *OrderService) ensureOrderNumberFree(ctx context.Context, orderNumber string, exclude uuid.UUID) error {
	taken, err := s.orders.OrderNumberTaken(ctx, orderNumber, exclude)
	if err != nil {
		return fmt.Errorf("check order number: %w", err)
	}
	if taken {
		return orderNumberDuplicate()
	}
	return nil
}

// checkEnums adds a message for every non-empty enum value that is unknown.
func checkEnums(fields map[string]string, status models.OrderStatus, payment models.PaymentStatus, method models.PaymentMethod) map[string]string {
	add := func(field string) {
		if fields == nil {
			fields = map[string]string{}
		}
		if _, ok := fields[field]; !ok {
			fields[field] = field + " không hợp lệ"
		}
	}
	if status != "" && !status.Valid() {
		add("status")
	}
	if payment != "" && !payment.Valid() {
		add("paymentStatus")
	}
	if method != "" && !method.Valid() {
		add("paymentMethod")
	}
	return fields
}

func orderNumberDuplicate() error {
	return &DuplicateError{Field: "orderNumber", Message: "Mã đơn hàng đã tồn tại"}
}

// update writes order with a compare-and-swap on the version it was read at.
func (s *OrderService) update(ctx context.Context, order *models.Order) error {
	if err := s.orders.Update(ctx, order, order.Version); err != nil {
		return s.wrapWriteError(fmt.Sprintf("update order %s", order.ID), err)
	}
	return nil
}

func (s *OrderService) wrapWriteError(op string, err error) error {
	if errors.Is(err, repository.ErrDuplicateKey) {
		return orderNumberDuplicate()
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *OrderService) generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", s.now().Format("20060102"), suffix)
}

// applied runs the side effects of a successful mutation.
func (s *OrderService) applied(ctx context.Context, event OrderEvent) {
	fields := logrus.Fields{
		"action":   event.Action,
		"actor_id": event.Actor.ID.String(),
		"role":     string(event.Actor.Role),
	}
	if event.Order != nil {
		fields["order_id"] = event.Order.ID.String()
		fields["order_number"] = event.Order.OrderNumber
		fields["version"] = event.Order.Version
	}
	if event.From != "" || event.To != "" {
		fields["from"] = event.From
		fields["to"] = event.To
	}
	logger.Audit().WithFields(fields).Info(event.Action)

	s.stats.Invalidate(ctx)
	s.notify(event)
}

// notify queues event for the dispatch worker. The order is copied so later
// mutations of the caller's value do not leak into the message.
func (s *OrderService) notify(event OrderEvent) {
	if s.events == nil {
		return
	}
	if event.Order != nil {
		snapshot := *event.Order
		snapshot.Items = append([]models.OrderItem(nil), event.Order.Items...)
		event.Order = &snapshot
	}

	s.pending.Add(1)
	select {
	case s.events <- event:
	default:
		s.pending.Done()
		logger.App().WithField("action", event.Action).Warn("[Notify] queue full, order event dropped")
	}
}

func (s *OrderService) dispatch() {
	for event := range s.events {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		if err := s.notifier.NotifyOrderEvent(ctx, event); err != nil {
			logger.App().WithError(err).WithField("action", event.Action).Warn("[Notify] order event not delivered")
		}
		cancel()
		s.pending.Done()
	}
}
