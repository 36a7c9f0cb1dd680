package contract

import (
	"context"

	"ai-chatbot-be/internal/entity"
)

// IndexedDocumentRepository stores one retrieval snapshot at a time.
type IndexedDocumentRepository interface {
	ReplaceAll(ctx context.Context, docs []*entity.IndexedDocument) error
	FindAll(ctx context.Context) ([]*entity.IndexedDocument, error)
}
