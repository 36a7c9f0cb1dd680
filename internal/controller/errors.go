package controller

import (
	"errors"

	"ai-chatbot-be/internal/channel/telegram"
	"ai-chatbot-be/internal/channel/twilio"
	"ai-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// httpError maps service errors onto status codes. Anything unknown stays a 500.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrFAQNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrAdminNotConfigured),
		errors.Is(err, telegram.ErrNotConfigured):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, service.ErrInvalidSettings):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, twilio.ErrAccountMismatch):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	}
	return err
}
