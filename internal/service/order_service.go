package service

import (
	"context"
	"errors"
	"fmt"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/pkg/dialogue"
	"ai-chatbot-be/pkg/events"
)

var ErrOrderNotFound = errors.New("order not found")

type IOrderService interface {
	CreateFromDraft(ctx context.Context, userID string, draft *dialogue.OrderDraft) (*entity.Order, error)
	List(ctx context.Context, req *dto.OrderListRequest) (*dto.OrderListResponse, error)
	UpdateStatus(ctx context.Context, req *dto.UpdateOrderStatusRequest) (*dto.OrderResponse, error)
}

type orderService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	feed       IFeed
	logger     logger.ILogger
}

func NewOrderService(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher, feed IFeed, log logger.ILogger) IOrderService {
	return &orderService{
		uowFactory: uowFactory,
		publisher:  publisherOrNop(publisher),
		feed:       feedOrNop(feed),
		logger:     log,
	}
}

func (s *orderService) CreateFromDraft(ctx context.Context, userID string, draft *dialogue.OrderDraft) (*entity.Order, error) {
	quantity := draft.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	order := &entity.Order{
		UserId:       userID,
		CustomerName: draft.CustomerName,
		Phone:        draft.Phone,
		Product:      draft.Product,
		Quantity:     quantity,
		Channel:      draft.Channel,
		Status:       entity.OrderStatusNew,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.OrderRepository().Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("OrderService", "Order created", map[string]interface{}{
		"order_id": order.Id.String(), "product": order.Product, "quantity": order.Quantity, "channel": order.Channel,
	})

	event := events.NewOrderCreated(order.Id.String(), order.CustomerName, order.Phone, order.Product, order.Quantity, order.Channel)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("OrderService", "Failed to publish event", map[string]interface{}{"event": event.EventType(), "error": err.Error()})
	}
	s.feed.Publish(FeedOrderCreated, toOrderResponse(order))

	return order, nil
}

func (s *orderService) List(ctx context.Context, req *dto.OrderListRequest) (*dto.OrderListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var filters []specification.Specification
	if req.Status != "" {
		filters = append(filters, specification.ByStatus{Status: req.Status})
	}
	if req.Channel != "" {
		filters = append(filters, specification.ByChannel{Channel: req.Channel})
	}

	total, err := uow.OrderRepository().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	specs := append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	)
	orders, err := uow.OrderRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := &dto.OrderListResponse{Orders: make([]*dto.OrderResponse, 0, len(orders)), Total: total}
	for _, o := range orders {
		res.Orders = append(res.Orders, toOrderResponse(o))
	}
	return res, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, req *dto.UpdateOrderStatusRequest) (*dto.OrderResponse, error) {
	status := entity.OrderStatus(req.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid order status %q", req.Status)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	order, err := uow.OrderRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	order.Status = status
	if req.Notes != "" {
		order.Notes = req.Notes
	}
	if err := uow.OrderRepository().Update(ctx, order); err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	return &dto.OrderResponse{
		Id:           o.Id,
		UserId:       o.UserId,
		CustomerName: o.CustomerName,
		Phone:        o.Phone,
		Product:      o.Product,
		Quantity:     o.Quantity,
		Channel:      o.Channel,
		Status:       string(o.Status),
		Notes:        o.Notes,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}
