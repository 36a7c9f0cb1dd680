package contract

import (
	"context"

	"ai-chatbot-be/internal/entity"
)

type SettingRepository interface {
	Upsert(ctx context.Context, setting *entity.Setting) error
	FindAll(ctx context.Context) ([]*entity.Setting, error)
}
