package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is a domain fact published after it happened. ID is unique per
// occurrence so a bus can drop redeliveries.
type Event interface {
	EventID() string
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// BaseEvent is the only Event implementation. Constructors in this package
// fill it; the bus rebuilds it on the consuming side.
type BaseEvent struct {
	ID         string
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventID() string                 { return e.ID }
func (e BaseEvent) EventType() string               { return e.Type }
func (e BaseEvent) Payload() map[string]interface{} { return e.Data }
func (e BaseEvent) Timestamp() time.Time            { return e.OccurredAt }

func newEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{ID: uuid.NewString(), Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}

// Publisher sends events to whatever bus is configured.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. It stands in when no bus is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event Event) error { return nil }
