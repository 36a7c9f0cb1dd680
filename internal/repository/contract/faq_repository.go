package contract

import (
	"context"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
)

type FAQRepository interface {
	Create(ctx context.Context, faq *entity.FAQ) error
	Update(ctx context.Context, faq *entity.FAQ) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.FAQ, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FAQ, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
