package mapper

import (
	"time"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/model"
)

type OrderMapper struct{}

func NewOrderMapper() *OrderMapper {
	return &OrderMapper{}
}

func (m *OrderMapper) ToEntity(o *model.Order) *entity.Order {
	if o == nil {
		return nil
	}

	var updatedAt *time.Time
	if !o.UpdatedAt.IsZero() {
		t := o.UpdatedAt
		updatedAt = &t
	}

	return &entity.Order{
		Id:           o.Id,
		UserId:       o.UserId,
		CustomerName: o.CustomerName,
		Phone:        o.Phone,
		Product:      o.Product,
		Quantity:     o.Quantity,
		Channel:      o.Channel,
		Status:       entity.OrderStatus(o.Status),
		Notes:        o.Notes,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *OrderMapper) ToModel(o *entity.Order) *model.Order {
	if o == nil {
		return nil
	}

	var updatedAt time.Time
	if o.UpdatedAt != nil {
		updatedAt = *o.UpdatedAt
	}
	status := o.Status
	if status == "" {
		status = entity.OrderStatusNew
	}

	return &model.Order{
		Id:           o.Id,
		UserId:       o.UserId,
		CustomerName: o.CustomerName,
		Phone:        o.Phone,
		Product:      o.Product,
		Quantity:     o.Quantity,
		Channel:      o.Channel,
		Status:       string(status),
		Notes:        o.Notes,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *OrderMapper) ToEntities(orders []*model.Order) []*entity.Order {
	entities := make([]*entity.Order, len(orders))
	for i, o := range orders {
		entities[i] = m.ToEntity(o)
	}
	return entities
}
