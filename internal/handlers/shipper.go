package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/shopops/internal/models"
	"github.com/example/shopops/internal/services"
)

// ShipperHandler serves the courier delivery console.
type ShipperHandler struct {
	orders *services.OrderService
}

// NewShipperHandler constructs ShipperHandler.
func NewShipperHandler(orders *services.OrderService) *ShipperHandler {
	return &ShipperHandler{orders: orders}
}

// Available lists confirmed orders nobody has claimed.
func (h *ShipperHandler) Available(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	orders, err := h.orders.AvailableOrders(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "orders": orders})
}

// Assigned lists the caller's claimed orders that are still on the way.
func (h *ShipperHandler) Assigned(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	orders, err := h.orders.AssignedOrders(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "orders": orders})
}

// Delivered lists the caller's delivered orders with the history stats.
func (h *ShipperHandler) Delivered(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	queue, err := h.orders.DeliveredOrders(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "orders": queue.Orders, "stats": queue.Stats})
}

// Accept claims an order ("Nhận đơn hàng").
func (h *ShipperHandler) Accept(c *fiber.Ctx) error {
	return h.apply(c, h.orders.Accept)
}

// Reject releases a claimed order before pick-up.
func (h *ShipperHandler) Reject(c *fiber.Ctx) error {
	return h.apply(c, h.orders.Reject)
}

// ConfirmDelivered is the "Xác nhận giao hàng" step.
func (h *ShipperHandler) ConfirmDelivered(c *fiber.Ctx) error {
	return h.apply(c, h.orders.ConfirmDelivered)
}

type deliveryStatusRequest struct {
	DeliveryStatus models.DeliveryStatus `json:"deliveryStatus"`
	Status         models.DeliveryStatus `json:"status"`
}

// UpdateStatus advances the delivery status by exactly one step.
func (h *ShipperHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req deliveryStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	next := req.DeliveryStatus
	if next == models.DeliveryUnset {
		next = req.Status
	}
	if next == models.DeliveryUnset {
		return &services.ValidationError{Fields: map[string]string{"deliveryStatus": "deliveryStatus là bắt buộc"}}
	}
	if !next.Valid() {
		return &services.ValidationError{Fields: map[string]string{"deliveryStatus": "deliveryStatus không hợp lệ"}}
	}

	order, err := h.orders.AdvanceDelivery(c.UserContext(), actor, id, next)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

func (h *ShipperHandler) apply(c *fiber.Ctx, op orderTransition) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	order, err := op(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}
