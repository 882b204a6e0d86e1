package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStaffApp() *fiber.App {
	app := fiber.New()
	app.Use(AdminAuthMiddleware("secret"), StaffContextMiddleware())
	app.Post("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(StaffID(c) + "|" + StaffRole(c))
	})
	return app
}

func staffRequest(t *testing.T, app *fiber.App, headers map[string]string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/whoami", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestStaffContext(t *testing.T) {
	app := newStaffApp()

	status, body := staffRequest(t, app, map[string]string{
		"Authorization": "Bearer secret",
		"X-Staff-ID":    "c-42",
		"X-Staff-Role":  "referee",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "c-42|Referee", body)

	status, body = staffRequest(t, app, map[string]string{"Authorization": "secret"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "|", body)

	status, _ = staffRequest(t, app, map[string]string{"Authorization": "Bearer secret", "X-Staff-Role": "caster"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = staffRequest(t, app, map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, status)
}
