package mapper

import (
	"time"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/model"
)

type FAQMapper struct{}

func NewFAQMapper() *FAQMapper {
	return &FAQMapper{}
}

func (m *FAQMapper) ToEntity(f *model.FAQ) *entity.FAQ {
	if f == nil {
		return nil
	}

	var updatedAt *time.Time
	if !f.UpdatedAt.IsZero() {
		t := f.UpdatedAt
		updatedAt = &t
	}

	return &entity.FAQ{
		Id:        f.Id,
		Question:  f.Question,
		Answer:    f.Answer,
		Tags:      f.Tags,
		CreatedAt: f.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *FAQMapper) ToModel(f *entity.FAQ) *model.FAQ {
	if f == nil {
		return nil
	}

	var updatedAt time.Time
	if f.UpdatedAt != nil {
		updatedAt = *f.UpdatedAt
	}

	return &model.FAQ{
		Id:        f.Id,
		Question:  f.Question,
		Answer:    f.Answer,
		Tags:      f.Tags,
		CreatedAt: f.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *FAQMapper) ToEntities(faqs []*model.FAQ) []*entity.FAQ {
	entities := make([]*entity.FAQ, len(faqs))
	for i, f := range faqs {
		entities[i] = m.ToEntity(f)
	}
	return entities
}
