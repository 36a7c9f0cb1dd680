package handler

import (
	"fmt"
	"strings"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/pkg/serverutils"
	internalWS "ai-chatbot-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// FeedHandler streams live chat, order and index events to admin dashboards.
type FeedHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewFeedHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *FeedHandler {
	return &FeedHandler{hub: hub, jwtSecret: jwtSecret, logger: log}
}

func (h *FeedHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/admin", h.ServeWs)
}

// ServeWs authenticates the handshake and upgrades it. Browsers cannot set
// headers on a websocket, so the token may come as a query parameter.
func (h *FeedHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
	}

	claims, err := serverutils.ParseToken(tokenStr, h.jwtSecret)
	if err != nil {
		h.logger.Warn("FeedHandler", "Invalid token in websocket handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}
	if role, _ := claims["role"].(string); role != serverutils.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(fiber.StatusForbidden, "Admin access required"))
	}
	adminID := fmt.Sprint(claims["user_id"])

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("FeedHandler", "Admin feed connected", map[string]interface{}{"admin_id": adminID})
		internalWS.Serve(h.hub, conn, adminID)
		h.logger.Info("FeedHandler", "Admin feed disconnected", map[string]interface{}{"admin_id": adminID})
	})(c)
}
