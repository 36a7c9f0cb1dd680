package controller

import (
	"time"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/serverutils"
	"ai-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Login attempts allowed per client IP and window.
const (
	loginAttempts = 10
	loginWindow   = time.Minute
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
}

type authController struct {
	auth service.IAuthService
}

func NewAuthController(auth service.IAuthService) IAuthController {
	return &authController{auth: auth}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	throttle := limiter.New(limiter.Config{
		Max:        loginAttempts,
		Expiration: loginWindow,
		LimitReached: func(ctx *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many login attempts, try again later")
		},
	})
	r.Post("/admin/login", throttle, c.Login)
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.auth.LoginAdmin(ctx.Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Admin login successful", res))
}
