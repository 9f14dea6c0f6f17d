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

// ProductHandler manages product CRUD.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

type productRequest struct {
	SKU         string  `json:"sku" validate:"required,max=64"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	ImageURL    string  `json:"imageUrl"`
	IsActive    *bool   `json:"isActive"`
}

func (r productRequest) apply(p *models.Product) {
	p.SKU = strings.TrimSpace(r.SKU)
	p.Name = r.Name
	p.Description = r.Description
	p.Category = r.Category
	p.Price = r.Price
	p.Stock = r.Stock
	p.ImageURL = r.ImageURL
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
}

// ListProducts returns paginated products with optional category and search filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.WithContext(c.UserContext()).Model(&models.Product{})

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ?)", q, q)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"data":        products,
		"currentPage": pg.Page,
		"totalPages":  pg.TotalPages(total),
		"total":       total,
	})
}

// GetProduct loads one product.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var product models.Product
	if err := h.db.WithContext(c.UserContext()).First(&product, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return repository.ErrNotFound
		}
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": product})
}

// CreateProduct stores a product. sku must be unique.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	if fields := utils.ValidateStruct(req); fields != nil {
		return &services.ValidationError{Fields: fields}
	}

	product := models.Product{IsActive: true}
	req.apply(&product)
	if err := h.db.WithContext(c.UserContext()).Create(&product).Error; err != nil {
		if isDuplicate(err) {
			return skuTaken()
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct replaces a product's fields.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	if fields := utils.ValidateStruct(req); fields != nil {
		return &services.ValidationError{Fields: fields}
	}

	db := h.db.WithContext(c.UserContext())
	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return repository.ErrNotFound
		}
		return err
	}

	req.apply(&product)
	if err := db.Save(&product).Error; err != nil {
		if isDuplicate(err) {
			return skuTaken()
		}
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a product. Order lines keep their snapshot.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	res := h.db.WithContext(c.UserContext()).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return c.JSON(fiber.Map{"success": true, "message": "Đã xóa sản phẩm"})
}

func skuTaken() error {
	return &services.DuplicateError{Field: "sku", Message: "Mã SKU đã tồn tại"}
}
