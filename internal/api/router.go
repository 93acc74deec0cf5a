package api

import (
	"fatturaflow/internal/api/handlers"
	"fatturaflow/pkg/auth"
	"fatturaflow/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	importHandler *handlers.ImportHandler,
	quarantineHandler *handlers.QuarantineHandler,
	invoiceHandler *handlers.InvoiceHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 64 * 1024 * 1024, // batches of P7M files get large
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes (public)
	authGroup := app.Group("/company/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	company := protected.Group("/company")
	company.Get("", authHandler.GetProfile)
	company.Put("/tax-id", authHandler.UpdateTaxID)

	imports := protected.Group("/import")
	imports.Post("/batches", importHandler.UploadBatch)
	imports.Get("/batches/:id", importHandler.GetBatch)
	imports.Post("/batches/:id/confirm", importHandler.ConfirmBatch)

	quarantine := protected.Group("/quarantine")
	quarantine.Get("", quarantineHandler.List)
	quarantine.Post("/:id/retry", quarantineHandler.Retry)
	quarantine.Delete("/:id", quarantineHandler.Archive)
	quarantine.Get("/:id/download", quarantineHandler.Download)

	protected.Get("/invoices", invoiceHandler.List)

	return app
}
