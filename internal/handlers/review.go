package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/shopops/internal/models"
	"github.com/example/shopops/internal/services"
	"github.com/example/shopops/internal/utils"
)

// ReviewHandler manages ratings of delivered orders.
type ReviewHandler struct {
	db     *gorm.DB
	orders *services.OrderService
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(db *gorm.DB, orders *services.OrderService) *ReviewHandler {
	return &ReviewHandler{db: db, orders: orders}
}

type reviewRequest struct {
	OrderID    uuid.UUID  `json:"orderId" validate:"required"`
	CustomerID *uuid.UUID `json:"customerId"`
	ProductID  *uuid.UUID `json:"productId"`
	Rating     int        `json:"rating" validate:"gte=1,lte=5"`
	Comment    string     `json:"comment" validate:"max=2000"`
}

// CreateReview rates a delivered order. Each order takes one review.
func (h *ReviewHandler) CreateReview(c *fiber.Ctx) error {
	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	if fields := utils.ValidateStruct(req); fields != nil {
		return &services.ValidationError{Fields: fields}
	}

	order, err := h.orders.Get(c.UserContext(), req.OrderID)
	if err != nil {
		return err
	}
	if order.DeliveryStatus != models.DeliveryDelivered {
		return &services.ValidationError{Fields: map[string]string{"orderId": "Chỉ có thể đánh giá đơn hàng đã giao"}}
	}

	review := models.Review{
		OrderID:    order.ID,
		CustomerID: req.CustomerID,
		ProductID:  req.ProductID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if review.CustomerID == nil {
		review.CustomerID = order.CustomerID
	}

	if err := h.db.WithContext(c.UserContext()).Create(&review).Error; err != nil {
		if isDuplicate(err) {
			return &services.DuplicateError{Field: "orderId", Message: "Đơn hàng này đã được đánh giá"}
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": review})
}

// ListReviews returns reviews, optionally for one ?orderId=.
func (h *ReviewHandler) ListReviews(c *fiber.Ctx) error {
	query := h.db.WithContext(c.UserContext()).Model(&models.Review{})
	if v := c.Query("orderId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "orderId không hợp lệ")
		}
		query = query.Where("order_id = ?", id)
	}

	pg := utils.ParsePagination(c)
	var reviews []models.Review
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&reviews).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": reviews})
}
