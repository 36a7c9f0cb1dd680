package mapper

import (
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type IndexedDocumentMapper struct{}

func NewIndexedDocumentMapper() *IndexedDocumentMapper {
	return &IndexedDocumentMapper{}
}

func (m *IndexedDocumentMapper) ToEntity(d *model.IndexedDocument) *entity.IndexedDocument {
	if d == nil {
		return nil
	}
	return &entity.IndexedDocument{
		Id:         d.Id,
		Position:   d.Position,
		Text:       d.Text,
		SourceKind: d.SourceKind,
		Metadata:   fromJSON(d.Metadata),
		Embedding:  d.Embedding.Slice(),
		CreatedAt:  d.CreatedAt,
	}
}

func (m *IndexedDocumentMapper) ToModel(d *entity.IndexedDocument) *model.IndexedDocument {
	if d == nil {
		return nil
	}
	return &model.IndexedDocument{
		Id:         d.Id,
		Position:   d.Position,
		Text:       d.Text,
		SourceKind: d.SourceKind,
		Metadata:   toJSON(d.Metadata),
		Embedding:  pgvector.NewVector(d.Embedding),
		CreatedAt:  d.CreatedAt,
	}
}

func (m *IndexedDocumentMapper) ToEntities(docs []*model.IndexedDocument) []*entity.IndexedDocument {
	entities := make([]*entity.IndexedDocument, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}

func (m *IndexedDocumentMapper) ToModels(docs []*entity.IndexedDocument) []*model.IndexedDocument {
	models := make([]*model.IndexedDocument, len(docs))
	for i, d := range docs {
		models[i] = m.ToModel(d)
	}
	return models
}
