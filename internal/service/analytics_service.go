package service

import (
	"context"
	"time"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"
)

// IndexStats is the part of the retrieval index analytics reports on.
type IndexStats interface {
	Size() int
	HasVectors() bool
}

// ClientCounter reports connected admin feed clients.
type ClientCounter interface {
	ClientCount() int
}

type IAnalyticsService interface {
	Summary(ctx context.Context) (*dto.AnalyticsSummaryResponse, error)
}

type analyticsService struct {
	uowFactory unitofwork.RepositoryFactory
	index      IndexStats
	clients    ClientCounter
	now        func() time.Time
}

func NewAnalyticsService(uowFactory unitofwork.RepositoryFactory, index IndexStats, clients ClientCounter) IAnalyticsService {
	return &analyticsService{uowFactory: uowFactory, index: index, clients: clients, now: time.Now}
}

func (s *analyticsService) Summary(ctx context.Context) (*dto.AnalyticsSummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages := uow.MessageRepository()
	orders := uow.OrderRepository()

	res := &dto.AnalyticsSummaryResponse{}

	var err error
	if res.TotalMessages, err = messages.Count(ctx); err != nil {
		return nil, err
	}
	if res.MessagesLast24h, err = messages.Count(ctx, specification.CreatedSince{Since: s.now().Add(-24 * time.Hour)}); err != nil {
		return nil, err
	}

	for column, target := range map[string]*map[string]int64{
		"intent":  &res.MessagesByIntent,
		"source":  &res.MessagesBySource,
		"channel": &res.MessagesByChannel,
	} {
		groups, err := messages.CountBy(ctx, column)
		if err != nil {
			return nil, err
		}
		*target = groupMap(groups)
	}

	if res.TotalOrders, err = orders.Count(ctx); err != nil {
		return nil, err
	}
	byStatus, err := orders.CountBy(ctx, "status")
	if err != nil {
		return nil, err
	}
	res.OrdersByStatus = groupMap(byStatus)

	if s.index != nil {
		res.IndexDocuments = s.index.Size()
		res.IndexHasVectors = s.index.HasVectors()
	}
	if s.clients != nil {
		res.FeedClients = s.clients.ClientCount()
	}
	return res, nil
}

func groupMap(groups []entity.GroupCount) map[string]int64 {
	out := make(map[string]int64, len(groups))
	for _, g := range groups {
		out[g.Key] = g.Count
	}
	return out
}
