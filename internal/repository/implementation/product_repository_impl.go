package implementation

import (
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/mapper"
	"ai-chatbot-be/internal/model"
	"ai-chatbot-be/internal/repository/contract"

	"gorm.io/gorm"
)

type productRepository struct {
	crud[entity.Product, model.Product]
}

func NewProductRepository(db *gorm.DB) contract.ProductRepository {
	return &productRepository{crud[entity.Product, model.Product]{db: db, mapper: mapper.NewProductMapper()}}
}
