package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superrabbithero/appmanage/auth"
	"github.com/superrabbithero/appmanage/models"
)

func newApp(svc *auth.Service) *fiber.App {
	app := fiber.New()
	app.Get("/me", AuthMiddleware(svc), func(c *fiber.Ctx) error {
		id, ok := CurrentUserID(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(strconv.FormatUint(uint64(id), 10))
	})
	return app
}

func TestAuthMiddlewareRejects(t *testing.T) {
	app := newApp(auth.NewService("secret", "appmanage", time.Hour))

	for _, header := range []string{"", "Bearer garbage", "Basic abc"} {
		req := httptest.NewRequest("GET", "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, header)
	}
}

func TestAuthMiddlewareAccepts(t *testing.T) {
	svc := auth.NewService("secret", "appmanage", time.Hour)
	app := newApp(svc)

	tokenStr, err := svc.Issue(&models.User{ID: 9, UserName: "bob"})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{Name: "JWT", Value: tokenStr})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
