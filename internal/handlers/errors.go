package handlers

import (
	"errors"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"github.com/example/shopops/internal/logger"
	"github.com/example/shopops/internal/repository"
	"github.com/example/shopops/internal/services"
)

const genericErrorMessage = "Đã có lỗi xảy ra"

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ErrorHandler maps service and repository errors to HTTP statuses.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code, body := classify(err)

	entry := logger.App().WithFields(map[string]interface{}{
		"status":     code,
		"method":     c.Method(),
		"path":       c.Path(),
		"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
	}).WithError(err)

	if code >= fiber.StatusInternalServerError {
		entry.Error("Request error")
		if hub := sentry.CurrentHub(); hub.Client() != nil {
			hub.Clone().CaptureException(err)
		}
	} else {
		entry.Debug("Request rejected")
	}

	return c.Status(code).JSON(body)
}

func classify(err error) (int, errorBody) {
	var (
		verr     *services.ValidationError
		dup      *services.DuplicateError
		fiberErr *fiber.Error
	)

	switch {
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, errorBody{Message: "Dữ liệu không hợp lệ", Errors: verr.Fields}
	case errors.As(err, &dup):
		return fiber.StatusBadRequest, errorBody{Message: dup.Message, Errors: map[string]string{dup.Field: dup.Message}}
	case errors.Is(err, repository.ErrDuplicateKey):
		return fiber.StatusBadRequest, errorBody{Message: "Dữ liệu đã tồn tại"}
	case errors.Is(err, repository.ErrNotFound):
		return fiber.StatusNotFound, errorBody{Message: "Không tìm thấy dữ liệu"}
	case errors.Is(err, services.ErrInvalidTransition):
		return fiber.StatusConflict, errorBody{Message: "Trạng thái đơn hàng không cho phép thao tác này"}
	case errors.Is(err, repository.ErrVersionConflict):
		return fiber.StatusConflict, errorBody{Message: "Đơn hàng vừa được cập nhật bởi người khác, vui lòng tải lại"}
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden, errorBody{Message: "Bạn không có quyền thực hiện thao tác này"}
	case errors.As(err, &fiberErr):
		if fiberErr.Code >= fiber.StatusInternalServerError {
			return fiberErr.Code, errorBody{Message: genericErrorMessage}
		}
		return fiberErr.Code, errorBody{Message: fiberErr.Message}
	}
	return fiber.StatusInternalServerError, errorBody{Message: genericErrorMessage}
}
