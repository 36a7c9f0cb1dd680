package dto

import "ai-chatbot-be/pkg/orchestrator"

type ChatRequest struct {
	Channel string                 `json:"channel" validate:"omitempty,max=32"`
	UserID  string                 `json:"user_id" validate:"required,max=255"`
	Text    string                 `json:"text" validate:"required,max=4000"`
	Meta    map[string]interface{} `json:"meta"`
}

type ChatResponse struct {
	Reply        string             `json:"reply"`
	QuickReplies []string           `json:"quick_replies"`
	Trace        orchestrator.Trace `json:"trace"`
}

// WebWebhookRequest is the payload of the embeddable web widget. SessionID
// stands in for UserID when the widget has no user.
type WebWebhookRequest struct {
	Text      string `json:"text" validate:"required,max=4000"`
	UserID    string `json:"user_id" validate:"max=255"`
	SessionID string `json:"session_id" validate:"max=255"`
}

type WebWebhookResponse struct {
	Message      string   `json:"message"`
	QuickReplies []string `json:"quick_replies"`
	FlowActive   bool     `json:"flow_active"`
}

type SearchHit struct {
	Text     string                 `json:"text"`
	Score    float64                `json:"score"`
	Source   string                 `json:"source"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type SearchResponse struct {
	Query string      `json:"query"`
	Hits  []SearchHit `json:"hits"`
}

type PublicConfigResponse struct {
	BusinessName string   `json:"business_name"`
	Address      string   `json:"address"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	Hours        string   `json:"hours"`
	Info         string   `json:"info"`
	Mode         string   `json:"mode"`
	QuickReplies []string `json:"quick_replies"`
	OrdersEnable bool     `json:"orders_enabled"`
}
