package implementation

import (
	"context"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/mapper"
	"ai-chatbot-be/internal/model"
	"ai-chatbot-be/internal/repository/contract"

	"gorm.io/gorm"
)

type indexedDocumentRepository struct {
	db     *gorm.DB
	mapper *mapper.IndexedDocumentMapper
}

func NewIndexedDocumentRepository(db *gorm.DB) contract.IndexedDocumentRepository {
	return &indexedDocumentRepository{
		db:     db,
		mapper: mapper.NewIndexedDocumentMapper(),
	}
}

// ReplaceAll swaps the stored snapshot in one transaction.
func (r *indexedDocumentRepository) ReplaceAll(ctx context.Context, docs []*entity.IndexedDocument) error {
	models := r.mapper.ToModels(docs)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.IndexedDocument{}).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		return tx.CreateInBatches(models, 100).Error
	})
}

func (r *indexedDocumentRepository) FindAll(ctx context.Context) ([]*entity.IndexedDocument, error) {
	var models []*model.IndexedDocument
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
