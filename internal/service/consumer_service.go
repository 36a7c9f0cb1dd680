package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-chatbot-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	consumerModule = "Consumer"
	rebuildRetries = 3
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	knowledge  IKnowledgeService
	logger     logger.ILogger

	// lastStarted is when the last successful rebuild began. Requests made
	// before it are already reflected in the index. Only the consume loop
	// touches it.
	lastStarted time.Time
	retryDelay  time.Duration
}

// NewConsumerService runs queued index rebuilds one at a time.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	knowledge IKnowledgeService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		knowledge:  knowledge,
		logger:     log,
		retryDelay: 2 * time.Second,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.handle(ctx, msg)
			// Failures are retried in handle; redelivery would only spin.
			msg.Ack()
		}
	}()
	return nil
}

func (cs *consumerService) handle(ctx context.Context, msg *message.Message) {
	var req RebuildRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		cs.logger.Error(consumerModule, "Dropping malformed rebuild request", map[string]interface{}{"error": err.Error()})
		return
	}

	if !req.RequestedAt.IsZero() && req.RequestedAt.Before(cs.lastStarted) {
		cs.logger.Debug(consumerModule, "Rebuild request already covered", map[string]interface{}{"reason": req.Reason})
		return
	}

	for attempt := 1; attempt <= rebuildRetries; attempt++ {
		started := time.Now().UTC()
		res, err := cs.knowledge.Rebuild(ctx)
		if err == nil {
			cs.lastStarted = started
			cs.logger.Info(consumerModule, "Index rebuilt", map[string]interface{}{
				"reason": req.Reason, "faqs": res.FAQs, "menu": res.Menu, "docs": res.Docs, "error": res.Error,
			})
			return
		}

		cs.logger.Warn(consumerModule, "Index rebuild failed", map[string]interface{}{"reason": req.Reason, "attempt": attempt, "error": err.Error()})
		select {
		case <-ctx.Done():
			return
		case <-time.After(cs.retryDelay * time.Duration(attempt)):
		}
	}
	cs.logger.Error(consumerModule, "Giving up on index rebuild", map[string]interface{}{"reason": req.Reason})
}
