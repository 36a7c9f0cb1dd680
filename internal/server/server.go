package server

import (
	"context"
	"time"

	"ai-chatbot-be/internal/bootstrap"
	"ai-chatbot-be/internal/config"
	"ai-chatbot-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const module = "Server"

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "ai-chatbot-be",
		BodyLimit:    10 * 1024 * 1024, // 10MB, covers FAQ CSV imports
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // hosted generation can be slow
		IdleTimeout:  2 * time.Minute,
	})

	app.Use(recover.New())
	app.Use(requestid.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: cfg.App.CorsAllowedOrigins != "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Telegram-Bot-Api-Secret-Token",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type",
	}))

	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.container.Logger.Info(module, "Server is running", map[string]interface{}{"port": s.cfg.App.Port})
	return s.app.Listen(":" + s.cfg.App.Port)
}

// Shutdown stops accepting requests and waits for in-flight ones up to ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	admin := serverutils.AdminMiddleware(cfg.App.JWTSecret)

	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"status":         "ok",
			"feed_clients":   c.WebSocketHub.ClientCount(),
			"indexed_chunks": c.KnowledgeService.IndexSize(),
			"time":           time.Now().UTC(),
		})
	})

	api := app.Group("/api")
	c.ChatController.RegisterRoutes(api)
	// Login must be registered before the protected /admin group.
	c.AuthController.RegisterRoutes(api)
	c.AdminController.RegisterRoutes(api, admin)

	c.WebhookController.RegisterRoutes(app, admin)
	c.FeedHandler.RegisterRoutes(app)
}
