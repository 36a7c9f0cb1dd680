package dto

import (
	"time"

	"ai-chatbot-be/internal/pkg/logger"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type FAQRequest struct {
	Id       uuid.UUID
	Question string `json:"question" validate:"required,max=1000"`
	Answer   string `json:"answer" validate:"required,max=4000"`
	Tags     string `json:"tags" validate:"max=255"`
}

type FAQResponse struct {
	Id        uuid.UUID  `json:"id"`
	Question  string     `json:"question"`
	Answer    string     `json:"answer"`
	Tags      string     `json:"tags"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ProductRequest struct {
	Id          uuid.UUID
	Name        string  `json:"name" validate:"required,max=255"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description" validate:"max=2000"`
	Category    string  `json:"category" validate:"max=100"`
	Available   *bool   `json:"available"` // nil means available
}

type ProductResponse struct {
	Id          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Price       float64    `json:"price"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Available   bool       `json:"available"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type OrderListRequest struct {
	Status  string `query:"status" validate:"omitempty,oneof=new confirmed cancelled fulfilled"`
	Channel string `query:"channel" validate:"max=32"`
	Limit   int    `query:"limit" validate:"gte=0,lte=200"`
	Offset  int    `query:"offset" validate:"gte=0"`
}

type UpdateOrderStatusRequest struct {
	Id     uuid.UUID
	Status string `json:"status" validate:"required,oneof=new confirmed cancelled fulfilled"`
	Notes  string `json:"notes" validate:"max=2000"`
}

type OrderResponse struct {
	Id           uuid.UUID  `json:"id"`
	UserId       string     `json:"user_id"`
	CustomerName string     `json:"customer_name"`
	Phone        string     `json:"phone"`
	Product      string     `json:"product"`
	Quantity     int        `json:"quantity"`
	Channel      string     `json:"channel"`
	Status       string     `json:"status"`
	Notes        string     `json:"notes"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type OrderListResponse struct {
	Orders []*OrderResponse `json:"orders"`
	Total  int64            `json:"total"`
}

type RebuildIndexResponse struct {
	FAQs  int    `json:"faqs"`
	Menu  int    `json:"menu"`
	Docs  int    `json:"docs"`
	Error string `json:"error,omitempty"`
}

type AnalyticsSummaryResponse struct {
	TotalMessages     int64            `json:"total_messages"`
	MessagesLast24h   int64            `json:"messages_last_24h"`
	MessagesByIntent  map[string]int64 `json:"messages_by_intent"`
	MessagesBySource  map[string]int64 `json:"messages_by_source"`
	MessagesByChannel map[string]int64 `json:"messages_by_channel"`
	TotalOrders       int64            `json:"total_orders"`
	OrdersByStatus    map[string]int64 `json:"orders_by_status"`
	IndexDocuments    int              `json:"index_documents"`
	IndexHasVectors   bool             `json:"index_has_vectors"`
	FeedClients       int              `json:"feed_clients"`
}

type UpdateSettingsRequest struct {
	Values map[string]string `json:"values" validate:"required,min=1"`
}

type SettingsResponse struct {
	Values map[string]string `json:"values"`
}

type LogListRequest struct {
	Level  string `query:"level"`
	Module string `query:"module"`
	Limit  int    `query:"limit" validate:"gte=0,lte=500"`
	Offset int    `query:"offset" validate:"gte=0"`
}

type LogListResponse struct {
	Logs []logger.LogEntry `json:"logs"`
}
