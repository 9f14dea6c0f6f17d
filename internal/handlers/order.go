package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/shopops/internal/models"
	"github.com/example/shopops/internal/services"
	"github.com/example/shopops/internal/utils"
)

// ConfirmPhraseHeader carries the typed confirmation for clear-all.
const ConfirmPhraseHeader = "X-Confirm-Phrase"

// OrderHandler serves the admin order console.
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// ListOrders returns one page of orders. limit is one of 10, 25 or 50.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	page, err := h.orders.List(c.UserContext(), utils.ParsePagination(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"orders":      page.Orders,
		"currentPage": page.CurrentPage,
		"totalPages":  page.TotalPages,
		"totalOrders": page.TotalOrders,
	})
}

// GetOrder returns one order with its lines.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	order, err := h.orders.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

// CreateOrder stores an admin-entered order.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	var req services.CreateOrderInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}

	order, err := h.orders.Create(c.UserContext(), actor, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": order})
}

// UpdateOrder applies the full edit form.
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req services.EditOrderInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}

	order, err := h.orders.Edit(c.UserContext(), actor, id, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

// DeleteOrder hard-deletes one order.
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.orders.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Đã xóa đơn hàng"})
}

// ClearAll deletes every order. The request must carry the confirmation
// phrase in the X-Confirm-Phrase header or a confirmPhrase body field.
func (h *OrderHandler) ClearAll(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	phrase := c.Get(ConfirmPhraseHeader)
	if phrase == "" && len(c.Body()) > 0 {
		var req struct {
			ConfirmPhrase string `json:"confirmPhrase"`
		}
		if err := c.BodyParser(&req); err == nil {
			phrase = req.ConfirmPhrase
		}
	}

	deleted, err := h.orders.DeleteAll(c.UserContext(), actor, phrase)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Đã xóa toàn bộ đơn hàng",
		"deletedCount": deleted,
	})
}

// ConfirmOrder is the "Xác nhận" quick action.
func (h *OrderHandler) ConfirmOrder(c *fiber.Ctx) error {
	return h.transition(c, h.orders.Confirm)
}

// CancelOrder is the "Hủy" quick action.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	return h.transition(c, h.orders.Cancel)
}

type paymentStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
}

// SetPaymentStatus is the "Đã TT" quick action and its refund counterpart.
func (h *OrderHandler) SetPaymentStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req paymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}

	order, err := h.orders.SetPaymentStatus(c.UserContext(), actor, id, req.PaymentStatus)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

type orderTransition func(ctx context.Context, actor services.Actor, id uuid.UUID) (*models.Order, error)

func (h *OrderHandler) transition(c *fiber.Ctx, apply orderTransition) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	order, err := apply(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}
