package controller

import (
	"strings"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/serverutils"
	"ai-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	GetConfig(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.Chat)
	r.Get("/search", c.Search)
	r.Get("/config", c.GetConfig)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Chat(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Message processed", res))
}

func (c *chatController) Search(ctx *fiber.Ctx) error {
	query := strings.TrimSpace(ctx.Query("q"))
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Query parameter q is required")
	}
	topK := ctx.QueryInt("top_k", 0)
	if topK < 0 || topK > 20 {
		return fiber.NewError(fiber.StatusBadRequest, "top_k must be between 1 and 20")
	}

	res := c.service.Search(ctx.Context(), query, topK)
	return ctx.JSON(serverutils.SuccessResponse("Search results", res))
}

func (c *chatController) GetConfig(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Business config", c.service.PublicConfig()))
}
