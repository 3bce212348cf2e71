package router

import (
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// DocsBasePath is where Swagger UI is mounted; the v1 UI lives under it at "v1".
const DocsBasePath = "/docs/api/"

// DocsRouter serves the OpenAPI document of the v1 API through Swagger UI.
type DocsRouter struct {
	filePath string
}

func (d DocsRouter) InstallRouter(app *fiber.App) {
	// swagger.New panics on a missing file
	if _, err := os.Stat(d.filePath); err != nil {
		log.Warnf("[Router] OpenAPI document %s unavailable, API docs disabled: %v", d.filePath, err)
		return
	}

	app.Use(swagger.New(swagger.Config{
		BasePath: DocsBasePath,
		FilePath: d.filePath,
		Path:     "v1",
		Title:    "FetanPay Lifecycle API",
	}))
}

func NewDocsRouter(filePath string) *DocsRouter {
	return &DocsRouter{filePath: filePath}
}
