package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	apiv1 "github.com/Beki78/fetan-pay/internal/api/v1"
	"github.com/Beki78/fetan-pay/internal/pkg/middleware"
)

type ApiRouter struct {
	server   *apiv1.APIServer
	adminKey string
	storage  fiber.Storage
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Storage:    h.storage,
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "FetanPay lifecycle api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	apiv1.RegisterHandlers(v1, h.server, middleware.AdminAPIKeyMiddleware(h.adminKey))
}

// NewApiRouter wires the v1 server. storage backs the rate limiter and may be
// nil, in which case the limiter keeps its counters in memory.
func NewApiRouter(server *apiv1.APIServer, adminKey string, storage fiber.Storage) *ApiRouter {
	return &ApiRouter{server: server, adminKey: adminKey, storage: storage}
}
