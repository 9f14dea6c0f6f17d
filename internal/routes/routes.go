package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/shopops/internal/config"
	"github.com/example/shopops/internal/handlers"
	"github.com/example/shopops/internal/middleware"
	"github.com/example/shopops/internal/models"
	"github.com/example/shopops/internal/services"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	DB     *gorm.DB
	Orders *services.OrderService
	Stats  *services.StatsService
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, cfg *config.Config, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.DB, cfg)
	orderHandler := handlers.NewOrderHandler(deps.Orders)
	shipperHandler := handlers.NewShipperHandler(deps.Orders)
	dashboardHandler := handlers.NewDashboardHandler(deps.DB, deps.Stats)
	productHandler := handlers.NewProductHandler(deps.DB)
	customerHandler := handlers.NewCustomerHandler(deps.DB)
	reviewHandler := handlers.NewReviewHandler(deps.DB, deps.Orders)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "status": "ok"})
	})

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg.JWTSecret))
	admin := middleware.RequireRole(models.RoleAdmin)
	shipper := middleware.RequireRole(models.RoleShipper)

	protected.Get("/auth/me", authHandler.Me)
	protected.Get("/auth/shippers", admin, authHandler.ListShippers)
	protected.Post("/auth/shippers", admin, authHandler.CreateShipper)

	// Courier queues must be registered before /orders/:id.
	courier := protected.Group("/orders/shipper", shipper)
	courier.Get("/available", shipperHandler.Available)
	courier.Get("/assigned", shipperHandler.Assigned)
	courier.Get("/delivered", shipperHandler.Delivered)
	courier.Post("/accept/:id", shipperHandler.Accept)
	courier.Post("/reject/:id", shipperHandler.Reject)
	courier.Put("/status/:id", shipperHandler.UpdateStatus)
	courier.Post("/delivered/:id", shipperHandler.ConfirmDelivered)

	orders := protected.Group("/orders", admin)
	orders.Get("/", orderHandler.ListOrders)
	orders.Post("/", orderHandler.CreateOrder)
	orders.Delete("/clear-all", orderHandler.ClearAll)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Put("/:id", orderHandler.UpdateOrder)
	orders.Delete("/:id", orderHandler.DeleteOrder)
	orders.Post("/:id/confirm", orderHandler.ConfirmOrder)
	orders.Post("/:id/cancel", orderHandler.CancelOrder)
	orders.Put("/:id/payment-status", orderHandler.SetPaymentStatus)

	dashboard := protected.Group("/dashboard", admin)
	dashboard.Get("/orders", dashboardHandler.OrderStats)
	dashboard.Get("/overview", dashboardHandler.Overview)

	products := protected.Group("/products", admin)
	products.Get("/", productHandler.ListProducts)
	products.Post("/", productHandler.CreateProduct)
	products.Get("/:id", productHandler.GetProduct)
	products.Put("/:id", productHandler.UpdateProduct)
	products.Delete("/:id", productHandler.DeleteProduct)

	customers := protected.Group("/customers", admin)
	customers.Get("/", customerHandler.ListCustomers)
	customers.Post("/", customerHandler.CreateCustomer)
	customers.Get("/:id", customerHandler.GetCustomer)
	customers.Put("/:id", customerHandler.UpdateCustomer)
	customers.Delete("/:id", customerHandler.DeleteCustomer)

	reviews := protected.Group("/reviews")
	reviews.Get("/", reviewHandler.ListReviews)
	reviews.Post("/", reviewHandler.CreateReview)
}
