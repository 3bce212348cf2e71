package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	apiv1 "github.com/Beki78/fetan-pay/internal/api/v1"
	"github.com/Beki78/fetan-pay/internal/pkg/cache"
	"github.com/Beki78/fetan-pay/internal/pkg/database"
	"github.com/Beki78/fetan-pay/internal/pkg/env"
	"github.com/Beki78/fetan-pay/internal/pkg/jobs"
	"github.com/Beki78/fetan-pay/internal/pkg/lifecycle"
	"github.com/Beki78/fetan-pay/internal/pkg/middleware"
	metrics "github.com/Beki78/fetan-pay/internal/pkg/metrics/counter"
	"github.com/Beki78/fetan-pay/internal/pkg/router"
)

func main() {
	os.Exit(run())
}

func run() int {
	env.SetupEnvFile()

	dsn, err := database.DSNFromEnv()
	if err != nil {
		log.Print(err)
		return 1
	}
	db, err := database.Open(dsn)
	if err != nil {
		log.Print(err)
		return 1
	}
	defer database.Close(db)

	if env.GetEnvBool("DB_AUTO_MIGRATE", false) {
		if err := database.AutoMigrate(db); err != nil {
			log.Printf("auto migrate: %v", err)
			return 1
		}
	}

	cache.SetupCache()
	app, manager := NewApplication(db)
	manager.Start()
	defer manager.Stop()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	return serve(app, fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
}

type listener interface {
	Listen(addr string) error
}

// serve blocks until the server stops. Listen returns nil after a graceful
// shutdown, so any error is a bind or serve failure.
func serve(app listener, addr string) int {
	if err := app.Listen(addr); err != nil {
		log.Printf("listen on %s: %v", addr, err)
		return 1
	}
	return 0
}

func NewApplication(db *gorm.DB) (*fiber.App, *jobs.Manager) {
	redisClient := cache.GetClient()
	store := cache.NewStore(redisClient)
	recorder := metrics.New(redisClient)
	adminKey := env.GetEnv("ADMIN_API_KEY", "")

	window := time.Duration(env.GetEnvInt("EXPIRING_SOON_DAYS", 3)) * 24 * time.Hour
	service := lifecycle.NewServiceFromDB(db).WithExpiringSoonWindow(window)
	manager := jobs.NewManager(service, store, recorder, jobs.ConfigFromEnv())

	app := fiber.New(fiber.Config{
		AppName: "fetanpay-lifecycle",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", middleware.AdminAPIKeyMiddleware(adminKey), monitor.New())

	server := apiv1.NewAPIServer(service, manager, recorder, store)
	router.InstallRouter(app,
		router.NewDocsRouter(env.GetEnv("OPENAPI_PATH", "./public/docs/v1/openapi.yml")),
		router.NewApiRouter(server, adminKey, router.NewLimiterStorage(redisClient)),
	)

	return app, manager
}
