// Package server assembles the Fiber application from its repositories and services.
package server

import (
	"errors"
	"time"

	"vitrine/internal/config"
	"vitrine/internal/handlers"
	"vitrine/internal/middleware"
	"vitrine/internal/repositories"
	"vitrine/internal/services"
	"vitrine/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Dependencies are the collaborators the HTTP layer is built on.
// Publisher and RateCounter may be nil.
type Dependencies struct {
	Products    repositories.ProductRepository
	Users       repositories.UserRepository
	Images      *storage.ImageStore
	Publisher   services.EventPublisher
	RateCounter middleware.Counter
}

// New builds the application with every route registered.
func New(cfg config.Config, deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "vitrine",
		// leave room for multipart framing so oversize images reach the handler
		BodyLimit:    int(deps.Images.MaxBytes()) + 1<<20,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	authService := services.NewAuthService(deps.Users, cfg.JWTSecret, cfg.TokenTTL)
	productService := services.NewProductService(deps.Products, deps.Publisher)

	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService, deps.Images)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	authHandler.RegisterRoutes(app, middleware.RateLimiter(deps.RateCounter, int64(cfg.RateLimitPerMinute), time.Minute))
	productHandler.RegisterPublicRoutes(app)
	productHandler.RegisterRoutes(app, middleware.AuthRequired(authService))

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"message": err.Error(),
	})
}
