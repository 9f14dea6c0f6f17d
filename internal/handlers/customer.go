package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/shopops/internal/models"
	"github.com/example/shopops/internal/repository"
	"github.com/example/shopops/internal/services"
	"github.com/example/shopops/internal/utils"
)

// CustomerHandler manages customer records.
type CustomerHandler struct {
	db *gorm.DB
}

// NewCustomerHandler constructs CustomerHandler.
func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

type customerRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (r customerRequest) apply(cu *models.Customer) {
	cu.Email = strings.ToLower(strings.TrimSpace(r.Email))
	cu.Name = r.Name
	cu.Phone = r.Phone
	cu.Address = r.Address
}

// ListCustomers returns paginated customers.
func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.WithContext(c.UserContext()).Model(&models.Customer{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?)", q, q, q)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var customers []models.Customer
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&customers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"data":        customers,
		"currentPage": pg.Page,
		"totalPages":  pg.TotalPages(total),
		"total":       total,
	})
}

// GetCustomer loads one customer.
func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var customer models.Customer
	if err := h.db.WithContext(c.UserContext()).First(&customer, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return repository.ErrNotFound
		}
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": customer})
}

// CreateCustomer stores a customer. email must be unique.
func (h *CustomerHandler) CreateCustomer(c *fiber.Ctx) error {
	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	if fields := utils.ValidateStruct(req); fields != nil {
		return &services.ValidationError{Fields: fields}
	}

	var customer models.Customer
	req.apply(&customer)
	if err := h.db.WithContext(c.UserContext()).Create(&customer).Error; err != nil {
		if isDuplicate(err) {
			return emailTaken()
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": customer})
}

// UpdateCustomer replaces a customer's fields.
func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req customerRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	if fields := utils.ValidateStruct(req); fields != nil {
		return &services.ValidationError{Fields: fields}
	}

	db := h.db.WithContext(c.UserContext())
	var customer models.Customer
	if err := db.First(&customer, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return repository.ErrNotFound
		}
		return err
	}

	req.apply(&customer)
	if err := db.Save(&customer).Error; err != nil {
		if isDuplicate(err) {
			return emailTaken()
		}
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": customer})
}

// DeleteCustomer removes a customer. Orders keep their denormalized identity.
func (h *CustomerHandler) DeleteCustomer(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	res := h.db.WithContext(c.UserContext()).Delete(&models.Customer{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return c.JSON(fiber.Map{"success": true, "message": "Đã xóa khách hàng"})
}

func emailTaken() error {
	return &services.DuplicateError{Field: "email", Message: "Email đã được sử dụng"}
}
