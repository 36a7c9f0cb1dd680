package controller

import (
	"strings"

	"ai-chatbot-be/internal/channel/telegram"
	"ai-chatbot-be/internal/channel/twilio"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/pkg/serverutils"
	"ai-chatbot-be/internal/service"
	"ai-chatbot-be/pkg/orchestrator"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

const ChannelWeb = "web"

type IWebhookController interface {
	RegisterRoutes(r fiber.Router, admin fiber.Handler)
	Web(ctx *fiber.Ctx) error
	Twilio(ctx *fiber.Ctx) error
	SetTelegramWebhook(ctx *fiber.Ctx) error
}

type webhookController struct {
	chat           service.IChatService
	telegram       *telegram.Bot // nil when no bot token is configured
	telegramSecret string
	twilio         *twilio.Webhook
	logger         logger.ILogger
}

func NewWebhookController(chat service.IChatService, bot *telegram.Bot, telegramSecret string, tw *twilio.Webhook, log logger.ILogger) IWebhookController {
	return &webhookController{chat: chat, telegram: bot, telegramSecret: telegramSecret, twilio: tw, logger: log}
}

func (c *webhookController) RegisterRoutes(r fiber.Router, admin fiber.Handler) {
	h := r.Group("/webhook")
	h.Post("/web", c.Web)
	h.Post("/twilio", c.Twilio)
	h.Post("/telegram/set-webhook", admin, c.SetTelegramWebhook)
	if c.telegram != nil {
		h.Post("/telegram", adaptor.HTTPHandlerFunc(c.telegram.WebhookHandler()))
	}
}

func (c *webhookController) Web(ctx *fiber.Ctx) error {
	var req dto.WebWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = strings.TrimSpace(req.SessionID)
	}
	if userID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_id or session_id is required")
	}

	res := c.chat.Process(ctx.Context(), orchestrator.Message{
		Text:    req.Text,
		UserID:  userID,
		Channel: ChannelWeb,
		Meta:    map[string]interface{}{"session_id": req.SessionID},
	})

	return ctx.JSON(dto.WebWebhookResponse{
		Message:      res.Reply,
		QuickReplies: res.QuickReplies,
		FlowActive:   res.DialogueActive,
	})
}

// Twilio always answers with TwiML; only a foreign account gets an error status.
func (c *webhookController) Twilio(ctx *fiber.Ctx) error {
	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)

	var in twilio.Inbound
	if err := ctx.BodyParser(&in); err != nil {
		return ctx.Send(twilio.ErrorTwiML())
	}
	if err := serverutils.ValidateRequest(in); err != nil {
		return ctx.Send(twilio.ErrorTwiML())
	}

	doc, err := c.twilio.Handle(ctx.Context(), in)
	if err != nil {
		if mapped := httpError(err); mapped != err {
			return mapped
		}
		c.logger.Error("Twilio", "Failed to answer message", map[string]interface{}{"error": err.Error()})
		return ctx.Send(twilio.ErrorTwiML())
	}
	return ctx.Send(doc)
}

type setWebhookRequest struct {
	URL string `json:"url" validate:"required,url"`
}

func (c *webhookController) SetTelegramWebhook(ctx *fiber.Ctx) error {
	if c.telegram == nil {
		return httpError(telegram.ErrNotConfigured)
	}

	var req setWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.telegram.SetWebhook(ctx.Context(), req.URL, c.telegramSecret); err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return ctx.JSON(serverutils.SuccessResponse("Webhook set", fiber.Map{"url": req.URL}))
}
