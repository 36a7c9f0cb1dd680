package implementation

import (
	"context"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/mapper"
	"ai-chatbot-be/internal/model"
	"ai-chatbot-be/internal/repository/contract"
	"ai-chatbot-be/internal/repository/specification"

	"gorm.io/gorm"
)

var orderGroupColumns = []string{"status", "channel"}

type orderRepository struct {
	crud[entity.Order, model.Order]
}

func NewOrderRepository(db *gorm.DB) contract.OrderRepository {
	return &orderRepository{crud[entity.Order, model.Order]{db: db, mapper: mapper.NewOrderMapper()}}
}

func (r *orderRepository) CountBy(ctx context.Context, column string, specs ...specification.Specification) ([]entity.GroupCount, error) {
	return r.countBy(ctx, column, orderGroupColumns, specs)
}
