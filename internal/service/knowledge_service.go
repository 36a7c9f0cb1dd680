package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/pkg/events"
	"ai-chatbot-be/pkg/retrieval"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const knowledgeModule = "KnowledgeService"

// RebuildTopic is the in-process topic asynchronous rebuild requests travel on.
const RebuildTopic = "index.rebuild"

type RebuildRequest struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

type IKnowledgeService interface {
	// Rebuild loads FAQs, products and documents and replaces the index generation.
	Rebuild(ctx context.Context) (*dto.RebuildIndexResponse, error)
	// RequestRebuild queues a rebuild for the consumer and returns immediately.
	RequestRebuild(ctx context.Context, reason string) error
	Restore(ctx context.Context) error
	ImportFAQs(ctx context.Context, r io.Reader) (int, error)
	// IndexSize is the number of chunks currently searchable.
	IndexSize() int
}

type knowledgeService struct {
	uowFactory unitofwork.RepositoryFactory
	index      *retrieval.Index
	docsDir    string
	jobs       message.Publisher
	publisher  events.Publisher
	feed       IFeed
	logger     logger.ILogger
}

func NewKnowledgeService(
	uowFactory unitofwork.RepositoryFactory,
	index *retrieval.Index,
	docsDir string,
	jobs message.Publisher,
	publisher events.Publisher,
	feed IFeed,
	log logger.ILogger,
) IKnowledgeService {
	return &knowledgeService{
		uowFactory: uowFactory,
		index:      index,
		docsDir:    docsDir,
		jobs:       jobs,
		publisher:  publisherOrNop(publisher),
		feed:       feedOrNop(feed),
		logger:     log,
	}
}

func (s *knowledgeService) sources(ctx context.Context) (retrieval.Sources, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	faqs, err := uow.FAQRepository().FindAll(ctx, specification.OrderBy{Field: "created_at"})
	if err != nil {
		return retrieval.Sources{}, fmt.Errorf("load faqs: %w", err)
	}
	products, err := uow.ProductRepository().FindAll(ctx, specification.OrderBy{Field: "name"})
	if err != nil {
		return retrieval.Sources{}, fmt.Errorf("load products: %w", err)
	}
	docs, err := retrieval.LoadDocumentsDir(s.docsDir, s.logger)
	if err != nil {
		return retrieval.Sources{}, fmt.Errorf("load documents: %w", err)
	}

	return retrieval.Sources{
		FAQs:      faqSources(faqs),
		Catalog:   catalogSources(products),
		Documents: docs,
	}, nil
}

func faqSources(faqs []*entity.FAQ) []retrieval.FAQSource {
	out := make([]retrieval.FAQSource, len(faqs))
	for i, f := range faqs {
		out[i] = retrieval.FAQSource{Question: f.Question, Answer: f.Answer, Tags: f.Tags}
	}
	return out
}

func catalogSources(products []*entity.Product) []retrieval.CatalogSource {
	out := make([]retrieval.CatalogSource, len(products))
	for i, p := range products {
		out[i] = retrieval.CatalogSource{
			ID:          p.Id.String(),
			Name:        p.Name,
			Price:       p.Price,
			Description: p.Description,
			Category:    p.Category,
			Available:   p.Available,
		}
	}
	return out
}

func (s *knowledgeService) Rebuild(ctx context.Context) (*dto.RebuildIndexResponse, error) {
	src, err := s.sources(ctx)
	if err != nil {
		return nil, err
	}

	stats := s.index.Rebuild(ctx, src)

	event := events.NewIndexRebuilt(stats.FAQCount, stats.CatalogCount, stats.DocCount, stats.Error)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(knowledgeModule, "Failed to publish event", map[string]interface{}{"event": event.EventType(), "error": err.Error()})
	}
	s.feed.Publish(FeedIndexRebuilt, stats)

	return &dto.RebuildIndexResponse{
		FAQs:  stats.FAQCount,
		Menu:  stats.CatalogCount,
		Docs:  stats.DocCount,
		Error: stats.Error,
	}, nil
}

func (s *knowledgeService) RequestRebuild(ctx context.Context, reason string) error {
	if s.jobs == nil {
		return fmt.Errorf("no job publisher configured")
	}
	payload, err := json.Marshal(RebuildRequest{Reason: reason, RequestedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(context.WithoutCancel(ctx))
	if err := s.jobs.Publish(RebuildTopic, msg); err != nil {
		return fmt.Errorf("queue rebuild: %w", err)
	}
	s.logger.Info(knowledgeModule, "Index rebuild queued", map[string]interface{}{"reason": reason})
	return nil
}

func (s *knowledgeService) IndexSize() int {
	return s.index.Size()
}

func (s *knowledgeService) Restore(ctx context.Context) error {
	return s.index.Restore(ctx)
}

// ImportFAQs appends every valid row of a question,answer[,tags] CSV.
func (s *knowledgeService) ImportFAQs(ctx context.Context, r io.Reader) (int, error) {
	rows, err := retrieval.ParseFAQsCSV(r)
	if err != nil {
		return 0, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	err = unitofwork.Transact(ctx, uow, func() error {
		for _, row := range rows {
			faq := &entity.FAQ{Question: row.Question, Answer: row.Answer, Tags: row.Tags}
			if err := uow.FAQRepository().Create(ctx, faq); err != nil {
				return fmt.Errorf("import faq %q: %w", row.Question, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info(knowledgeModule, "FAQs imported", map[string]interface{}{"count": len(rows)})
	return len(rows), nil
}
