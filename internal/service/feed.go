package service

import "ai-chatbot-be/pkg/events"

// Feed event types pushed to the admin websocket feed.
const (
	FeedMessageProcessed = "message_processed"
	FeedOrderCreated     = "order_created"
	FeedIndexRebuilt     = "index_rebuilt"
)

// IFeed receives live admin feed events. The websocket hub implements it.
type IFeed interface {
	Publish(eventType string, data interface{})
}

type nopFeed struct{}

func (nopFeed) Publish(string, interface{}) {}

func feedOrNop(f IFeed) IFeed {
	if f == nil {
		return nopFeed{}
	}
	return f
}

func publisherOrNop(p events.Publisher) events.Publisher {
	if p == nil {
		return events.NopPublisher{}
	}
	return p
}
