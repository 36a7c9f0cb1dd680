package implementation

import (
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/mapper"
	"ai-chatbot-be/internal/model"
	"ai-chatbot-be/internal/repository/contract"

	"gorm.io/gorm"
)

type faqRepository struct {
	crud[entity.FAQ, model.FAQ]
}

func NewFAQRepository(db *gorm.DB) contract.FAQRepository {
	return &faqRepository{crud[entity.FAQ, model.FAQ]{db: db, mapper: mapper.NewFAQMapper()}}
}
