package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/shopops/internal/models"
	"github.com/example/shopops/internal/services"
)

// DashboardHandler manages admin dashboard endpoints.
type DashboardHandler struct {
	db    *gorm.DB
	stats *services.StatsService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(db *gorm.DB, stats *services.StatsService) *DashboardHandler {
	return &DashboardHandler{db: db, stats: stats}
}

// OrderStats returns order metrics for ?period=week|month|year.
func (h *DashboardHandler) OrderStats(c *fiber.Ctx) error {
	period, err := services.ParsePeriod(c.Query("period"))
	if err != nil {
		return err
	}

	stats, err := h.stats.OrderStats(c.UserContext(), period)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": stats})
}

// Overview returns record counts for the dashboard header cards.
func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	ctx := c.UserContext()

	count := func(model interface{}, query ...interface{}) (int64, error) {
		var n int64
		q := h.db.WithContext(ctx).Model(model)
		if len(query) > 0 {
			q = q.Where(query[0], query[1:]...)
		}
		err := q.Count(&n).Error
		return n, err
	}

	totalProducts, err := count(&models.Product{})
	if err != nil {
		return err
	}
	totalCustomers, err := count(&models.Customer{})
	if err != nil {
		return err
	}
	totalShippers, err := count(&models.User{}, "role = ?", models.RoleShipper)
	if err != nil {
		return err
	}
	outOfStock, err := count(&models.Product{}, "stock <= ?", 0)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"totalProducts":  totalProducts,
			"totalCustomers": totalCustomers,
			"totalShippers":  totalShippers,
			"outOfStock":     outOfStock,
		},
	})
}
