package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/shopops/internal/middleware"
	"github.com/example/shopops/internal/repository"
	"github.com/example/shopops/internal/services"
)

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "ID không hợp lệ")
	}
	return id, nil
}

func currentActor(c *fiber.Ctx) (services.Actor, error) {
	id, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return services.Actor{}, fiber.NewError(fiber.StatusUnauthorized, "Vui lòng đăng nhập")
	}
	return services.Actor{ID: id, Role: middleware.GetCurrentRole(c)}, nil
}

func badBody() error {
	return fiber.NewError(fiber.StatusBadRequest, "Dữ liệu gửi lên không hợp lệ")
}

func isDuplicate(err error) bool {
	return errors.Is(repository.TranslateSQLError(err), repository.ErrDuplicateKey)
}

func isNotFound(err error) bool {
	return errors.Is(repository.TranslateSQLError(err), repository.ErrNotFound)
}
