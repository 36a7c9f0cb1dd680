package unitofwork

import (
	"context"

	"ai-chatbot-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	MessageRepository() contract.MessageRepository
	FAQRepository() contract.FAQRepository
	ProductRepository() contract.ProductRepository
	OrderRepository() contract.OrderRepository
	SettingRepository() contract.SettingRepository
	IndexedDocumentRepository() contract.IndexedDocumentRepository
}
