package router

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var openAPIPath = filepath.Join("..", "..", "..", "public", "docs", "v1", "openapi.yml")

func TestDocsRouterServesSwaggerUI(t *testing.T) {
	app := fiber.New()
	InstallRouter(app, NewDocsRouter(openAPIPath))
	app.Get("/other", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/docs/api/v1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")

	resp, err = app.Test(httptest.NewRequest("GET", "/other", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestDocsRouterSkipsMissingDocument(t *testing.T) {
	app := fiber.New()
	require.NotPanics(t, func() {
		InstallRouter(app, NewDocsRouter(filepath.Join(t.TempDir(), "missing.yml")))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/docs/api/v1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
