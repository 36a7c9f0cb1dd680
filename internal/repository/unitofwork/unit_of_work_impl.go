package unitofwork

import (
	"context"
	"errors"
	"fmt"

	"ai-chatbot-be/internal/repository/contract"
	"ai-chatbot-be/internal/repository/implementation"

	"gorm.io/gorm"
)

var (
	ErrTxActive   = errors.New("transaction already started")
	ErrTxInactive = errors.New("no active transaction")
)

type unitOfWork struct {
	db *gorm.DB
	tx *gorm.DB // nil outside a transaction
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &unitOfWork{db: db}
}

// conn is the handle repositories run on: the open transaction, if any.
func (u *unitOfWork) conn() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return ErrTxActive
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return ErrTxInactive
	}
	defer func() { u.tx = nil }()
	return u.tx.Commit().Error
}

func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return ErrTxInactive
	}
	defer func() { u.tx = nil }()
	return u.tx.Rollback().Error
}

func (u *unitOfWork) MessageRepository() contract.MessageRepository {
	return implementation.NewMessageRepository(u.conn())
}

func (u *unitOfWork) FAQRepository() contract.FAQRepository {
	return implementation.NewFAQRepository(u.conn())
}

func (u *unitOfWork) ProductRepository() contract.ProductRepository {
	return implementation.NewProductRepository(u.conn())
}

func (u *unitOfWork) OrderRepository() contract.OrderRepository {
	return implementation.NewOrderRepository(u.conn())
}

func (u *unitOfWork) SettingRepository() contract.SettingRepository {
	return implementation.NewSettingRepository(u.conn())
}

func (u *unitOfWork) IndexedDocumentRepository() contract.IndexedDocumentRepository {
	return implementation.NewIndexedDocumentRepository(u.conn())
}

// Transact runs fn inside a transaction on uow. fn's error rolls back;
// otherwise the transaction is committed.
func Transact(ctx context.Context, uow UnitOfWork, fn func() error) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := fn(); err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	return uow.Commit()
}
