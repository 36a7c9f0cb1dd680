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

var messageGroupColumns = []string{"intent", "source", "channel"}

// messageRepository is append-only: messages are never edited or deleted.
type messageRepository struct {
	crud[entity.Message, model.Message]
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &messageRepository{crud[entity.Message, model.Message]{db: db, mapper: mapper.NewMessageMapper()}}
}

func (r *messageRepository) CountBy(ctx context.Context, column string, specs ...specification.Specification) ([]entity.GroupCount, error) {
	return r.countBy(ctx, column, messageGroupColumns, specs)
}
