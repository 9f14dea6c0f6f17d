package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/shopops/internal/models"
	"github.com/example/shopops/internal/repository"
)

// DeliveredStats summarizes a courier's delivered history.
type DeliveredStats struct {
	TotalOrders            int     `json:"totalOrders"`
	TotalRevenue           float64 `json:"totalRevenue"`
	AverageDeliveryMinutes float64 `json:"averageDeliveryMinutes"`
	AverageRating          float64 `json:"averageRating"`
	RatedOrders            int64   `json:"ratedOrders"`
}

// DeliveredQueue is the delivered history with its stats.
type DeliveredQueue struct {
	Orders []models.Order `json:"orders"`
	Stats  DeliveredStats `json:"stats"`
}

// AvailableOrders lists confirmed orders no courier has claimed.
func (s *OrderService) AvailableOrders(ctx context.Context, actor Actor) ([]models.Order, error) {
	if err := requireCourier(actor); err != nil {
		return nil, err
	}
	return s.queue(ctx, repository.QueueAvailable, actor.ID)
}

// AssignedOrders lists the courier's claimed orders that are not delivered yet.
func (s *OrderService) AssignedOrders(ctx context.Context, actor Actor) ([]models.Order, error) {
	if err := requireCourier(actor); err != nil {
		return nil, err
	}
	return s.queue(ctx, repository.QueueAssigned, actor.ID)
}

// DeliveredOrders lists the courier's delivered orders, newest first.
func (s *OrderService) DeliveredOrders(ctx context.Context, actor Actor) (*DeliveredQueue, error) {
	if err := requireCourier(actor); err != nil {
		return nil, err
	}
	orders, err := s.queue(ctx, repository.QueueDelivered, actor.ID)
	if err != nil {
		return nil, err
	}

	stats := deliveredStats(orders)
	if s.ratings != nil && len(orders) > 0 {
		ids := make([]uuid.UUID, 0, len(orders))
		for _, o := range orders {
			ids = append(ids, o.ID)
		}
		avg, count, err := s.ratings.AverageRating(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("average rating: %w", err)
		}
		stats.AverageRating = decimal.NewFromFloat(avg).Round(1).InexactFloat64()
		stats.RatedOrders = count
	}

	return &DeliveredQueue{Orders: orders, Stats: stats}, nil
}

// Accept claims an available order for the courier. Of two couriers racing
// for the same order exactly one wins; the other gets ErrVersionConflict.
func (s *OrderService) Accept(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	if err := requireCourier(actor); err != nil {
		return nil, err
	}
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.ShipperID != nil && !order.AssignedTo(actor.ID) {
		return nil, fmt.Errorf("accept %s: claimed by another courier: %w", order.OrderNumber, repository.ErrVersionConflict)
	}
	if !order.Available() {
		return nil, fmt.Errorf("accept %s in status %s: %w", order.OrderNumber, order.Status, ErrInvalidTransition)
	}

	now := s.now()
	order.ShipperID = &actor.ID
	order.AcceptedAt = &now
	if err := s.update(ctx, order); err != nil {
		return nil, err
	}

	s.applied(ctx, OrderEvent{Action: ActionAccepted, Actor: actor, Order: order, To: actor.ID.String()})
	return order, nil
}

// Reject releases a claimed order back to the available queue. Only the
// assigned courier may do it, and only before pick-up.
func (s *OrderService) Reject(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if order.DeliveryStatus != models.DeliveryUnset {
		return nil, fmt.Errorf("reject %s after %s: %w", order.OrderNumber, order.DeliveryStatus, ErrInvalidTransition)
	}

	order.ShipperID = nil
	order.AcceptedAt = nil
	if err := s.update(ctx, order); err != nil {
		return nil, err
	}

	s.applied(ctx, OrderEvent{Action: ActionRejected, Actor: actor, Order: order, From: actor.ID.String()})
	return order, nil
}

// AdvanceDelivery moves the delivery status to next, which must be the
// immediate successor of the current one.
func (s *OrderService) AdvanceDelivery(ctx context.Context, actor Actor, id uuid.UUID, next models.DeliveryStatus) (*models.Order, error) {
	order, err := s.ownedOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if order.Status == models.StatusCancelled {
		return nil, fmt.Errorf("deliver cancelled order %s: %w", order.OrderNumber, ErrInvalidTransition)
	}

	from := order.DeliveryStatus
	expected, ok := from.Next()
	if !ok || next != expected {
		return nil, fmt.Errorf("delivery %s from %q to %q: %w", order.OrderNumber, from, next, ErrInvalidTransition)
	}

	now := s.now()
	order.DeliveryStatus = next
	switch next {
	case models.DeliveryPickedUp:
		order.PickedUpAt = &now
	case models.DeliveryInTransit:
		order.InTransitAt = &now
	case models.DeliveryDelivered:
		order.DeliveredAt = &now
	}
	if err := s.update(ctx, order); err != nil {
		return nil, err
	}

	s.applied(ctx, OrderEvent{Action: ActionDelivery, Actor: actor, Order: order, From: string(from), To: string(next)})
	return order, nil
}

// ConfirmDelivered is the terminal step from in-transit to delivered.
func (s *OrderService) ConfirmDelivered(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	return s.AdvanceDelivery(ctx, actor, id, models.DeliveryDelivered)
}

func (s *OrderService) ownedOrder(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	if err := requireCourier(actor); err != nil {
		return nil, err
	}
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.AssignedTo(actor.ID) {
		return nil, fmt.Errorf("order %s not assigned to %s: %w", order.OrderNumber, actor.ID, ErrForbidden)
	}
	return order, nil
}

func (s *OrderService) queue(ctx context.Context, q repository.Queue, courierID uuid.UUID) ([]models.Order, error) {
	orders, err := s.orders.ListQueue(ctx, q, courierID)
	if err != nil {
		return nil, fmt.Errorf("list %s queue: %w", q, err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func requireCourier(actor Actor) error {
	if actor.Role != models.RoleShipper || actor.ID == uuid.Nil {
		return fmt.Errorf("role %q is not a courier: %w", actor.Role, ErrForbidden)
	}
	return nil
}

func deliveredStats(orders []models.Order) DeliveredStats {
	stats := DeliveredStats{TotalOrders: len(orders)}
	revenue := decimal.Zero
	minutes := decimal.Zero
	timed := 0

	for _, o := range orders {
		revenue = revenue.Add(decimal.NewFromFloat(o.TotalAmount))
		if o.DeliveredAt == nil {
			continue
		}
		start := o.OrderDate
		if o.AcceptedAt != nil {
			start = *o.AcceptedAt
		}
		minutes = minutes.Add(decimal.NewFromFloat(o.DeliveredAt.Sub(start).Minutes()))
		timed++
	}

	stats.TotalRevenue = revenue.InexactFloat64()
	if timed > 0 {
		stats.AverageDeliveryMinutes = minutes.Div(decimal.NewFromInt(int64(timed))).Round(1).InexactFloat64()
	}
	return stats
}
