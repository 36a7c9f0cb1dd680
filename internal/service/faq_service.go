package service

import (
	"context"
	"errors"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

var ErrFAQNotFound = errors.New("faq not found")

type IFAQService interface {
	GetAll(ctx context.Context, query string) ([]*dto.FAQResponse, error)
	Create(ctx context.Context, req *dto.FAQRequest) (*dto.FAQResponse, error)
	Update(ctx context.Context, req *dto.FAQRequest) (*dto.FAQResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type faqService struct {
	uowFactory unitofwork.RepositoryFactory
	knowledge  IKnowledgeService
	logger     logger.ILogger
}

// NewFAQService queues an index rebuild after every change when knowledge is set.
func NewFAQService(uowFactory unitofwork.RepositoryFactory, knowledge IKnowledgeService, log logger.ILogger) IFAQService {
	return &faqService{uowFactory: uowFactory, knowledge: knowledge, logger: log}
}

func (s *faqService) GetAll(ctx context.Context, query string) ([]*dto.FAQResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{specification.OrderBy{Field: "created_at", Desc: true}}
	if query != "" {
		specs = append(specs, specification.FAQSearchQuery{Query: query})
	}
	faqs, err := uow.FAQRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.FAQResponse, 0, len(faqs))
	for _, f := range faqs {
		res = append(res, toFAQResponse(f))
	}
	return res, nil
}

func (s *faqService) Create(ctx context.Context, req *dto.FAQRequest) (*dto.FAQResponse, error) {
	faq := &entity.FAQ{Question: req.Question, Answer: req.Answer, Tags: req.Tags}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.FAQRepository().Create(ctx, faq); err != nil {
		return nil, err
	}
	s.changed(ctx, "faq created")
	return toFAQResponse(faq), nil
}

func (s *faqService) Update(ctx context.Context, req *dto.FAQRequest) (*dto.FAQResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	faq, err := uow.FAQRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if faq == nil {
		return nil, ErrFAQNotFound
	}

	faq.Question = req.Question
	faq.Answer = req.Answer
	faq.Tags = req.Tags
	if err := uow.FAQRepository().Update(ctx, faq); err != nil {
		return nil, err
	}
	s.changed(ctx, "faq updated")
	return toFAQResponse(faq), nil
}

func (s *faqService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	faq, err := uow.FAQRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if faq == nil {
		return ErrFAQNotFound
	}
	if err := uow.FAQRepository().Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "faq deleted")
	return nil
}

func (s *faqService) changed(ctx context.Context, reason string) {
	if s.knowledge == nil {
		return
	}
	if err := s.knowledge.RequestRebuild(ctx, reason); err != nil {
		s.logger.Warn("FAQService", "Failed to queue index rebuild", map[string]interface{}{"error": err.Error()})
	}
}

func toFAQResponse(f *entity.FAQ) *dto.FAQResponse {
	return &dto.FAQResponse{
		Id:        f.Id,
		Question:  f.Question,
		Answer:    f.Answer,
		Tags:      f.Tags,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}
