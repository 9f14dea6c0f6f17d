package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/shopops/internal/config"
	"github.com/example/shopops/internal/middleware"
	"github.com/example/shopops/internal/models"
	"github.com/example/shopops/internal/repository"
	"github.com/example/shopops/internal/services"
	"github.com/example/shopops/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates an admin, courier or customer account.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if fields := utils.ValidateStruct(req); fields != nil {
		return &services.ValidationError{Fields: fields}
	}

	var user models.User
	if err := h.db.WithContext(c.UserContext()).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "Email hoặc mật khẩu không đúng")
		}
		return err
	}

	if !user.IsActive || !user.CheckPassword(req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "Email hoặc mật khẩu không đúng")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, string(user.Role), h.cfg.TokenTTL())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Vui lòng đăng nhập")
	}

	var user models.User
	if err := h.db.WithContext(c.UserContext()).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrNotFound
		}
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": user})
}

type createShipperRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=8"`
}

// CreateShipper lets an admin open a courier account.
func (h *AuthHandler) CreateShipper(c *fiber.Ctx) error {
	var req createShipperRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if fields := utils.ValidateStruct(req); fields != nil {
		return &services.ValidationError{Fields: fields}
	}

	user := models.User{
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     models.RoleShipper,
		IsActive: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return err
	}

	if err := h.db.WithContext(c.UserContext()).Create(&user).Error; err != nil {
		if isDuplicate(err) {
			return emailTaken()
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": user})
}

// ListShippers returns every courier account.
func (h *AuthHandler) ListShippers(c *fiber.Ctx) error {
	var users []models.User
	if err := h.db.WithContext(c.UserContext()).
		Where("role = ?", models.RoleShipper).
		Order("full_name asc").
		Find(&users).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": users})
}
