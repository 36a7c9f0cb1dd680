package service

import (
	"context"
	"fmt"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/pkg/mailer"
	"ai-chatbot-be/pkg/events"
	"ai-chatbot-be/pkg/nats"
)

const FeedOrderNotified = "order_notified"

const notificationDurable = "order-notifications"

// EventSubscriber is satisfied by the NATS subscriber.
type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType string, durableName string, handler nats.EventHandler) error
}

type INotificationService interface {
	Start(ctx context.Context) error
	HandleOrderCreated(ctx context.Context, event events.Event) error
}

type notificationService struct {
	subscriber   EventSubscriber
	mailer       mailer.IEmailService
	notifyEmail  string
	businessName string
	feed         IFeed
	logger       logger.ILogger
}

// NewNotificationService e-mails notifyEmail for every ORDER_CREATED event.
// Without a mailer or address the order is only announced on the feed.
func NewNotificationService(subscriber EventSubscriber, m mailer.IEmailService, notifyEmail, businessName string, feed IFeed, log logger.ILogger) INotificationService {
	return &notificationService{
		subscriber:   subscriber,
		mailer:       m,
		notifyEmail:  notifyEmail,
		businessName: businessName,
		feed:         feedOrNop(feed),
		logger:       log,
	}
}

func (s *notificationService) Start(ctx context.Context) error {
	return s.subscriber.Subscribe(ctx, events.OrderCreated, notificationDurable, s.HandleOrderCreated)
}

// HandleOrderCreated returns an error only when the mail should be retried.
func (s *notificationService) HandleOrderCreated(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	notice := mailer.OrderNotice{
		BusinessName: s.businessName,
		OrderID:      payloadString(payload, "order_id"),
		CustomerName: payloadString(payload, "customer_name"),
		Phone:        payloadString(payload, "phone"),
		Product:      payloadString(payload, "product"),
		Quantity:     payloadInt(payload, "quantity"),
		Channel:      payloadString(payload, "channel"),
	}

	emailed := false
	if s.mailer != nil && s.notifyEmail != "" {
		if err := s.mailer.SendOrderNotification(s.notifyEmail, notice); err != nil {
			return fmt.Errorf("send order notification: %w", err)
		}
		emailed = true
	}

	s.logger.Info("NotificationService", "Order notification handled", map[string]interface{}{
		"order_id": notice.OrderID,
		"emailed":  emailed,
	})
	s.feed.Publish(FeedOrderNotified, map[string]interface{}{
		"order_id": notice.OrderID,
		"customer": notice.CustomerName,
		"emailed":  emailed,
	})
	return nil
}

func payloadString(payload map[string]interface{}, key string) string {
	switch v := payload[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// payloadInt accepts both Go ints and the float64 JSON decoding produces.
func payloadInt(payload map[string]interface{}, key string) int {
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
