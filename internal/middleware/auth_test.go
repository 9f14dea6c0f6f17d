package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopops/internal/models"
	"github.com/example/shopops/internal/utils"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Get("/shipper", AuthMiddleware("secret"), RequireRole(models.RoleShipper), func(c *fiber.Ctx) error {
		id, ok := GetCurrentUserID(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		return c.SendString(id.String() + ":" + string(GetCurrentRole(c)))
	})
	return app
}

func request(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/shipper", nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddleware(t *testing.T) {
	app := newApp()

	shipper, err := utils.GenerateToken("secret", uuid.New(), string(models.RoleShipper), time.Hour)
	require.NoError(t, err)
	admin, err := utils.GenerateToken("secret", uuid.New(), string(models.RoleAdmin), time.Hour)
	require.NoError(t, err)
	expired, err := utils.GenerateToken("secret", uuid.New(), string(models.RoleShipper), -time.Hour)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, request(t, app, shipper))
	assert.Equal(t, fiber.StatusForbidden, request(t, app, admin))
	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, expired))
	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, ""))
	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "garbage"))
}
