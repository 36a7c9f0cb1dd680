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

var ErrProductNotFound = errors.New("product not found")

type IProductService interface {
	GetAll(ctx context.Context, query string, availableOnly bool) ([]*dto.ProductResponse, error)
	Create(ctx context.Context, req *dto.ProductRequest) (*dto.ProductResponse, error)
	Update(ctx context.Context, req *dto.ProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	uowFactory unitofwork.RepositoryFactory
	knowledge  IKnowledgeService
	logger     logger.ILogger
}

func NewProductService(uowFactory unitofwork.RepositoryFactory, knowledge IKnowledgeService, log logger.ILogger) IProductService {
	return &productService{uowFactory: uowFactory, knowledge: knowledge, logger: log}
}

func (s *productService) GetAll(ctx context.Context, query string, availableOnly bool) ([]*dto.ProductResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{specification.OrderBy{Field: "name"}}
	if query != "" {
		specs = append(specs, specification.ProductSearchQuery{Query: query})
	}
	if availableOnly {
		specs = append(specs, specification.AvailableOnly{})
	}
	products, err := uow.ProductRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, toProductResponse(p))
	}
	return res, nil
}

func (s *productService) Create(ctx context.Context, req *dto.ProductRequest) (*dto.ProductResponse, error) {
	product := &entity.Product{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
		Available:   req.Available == nil || *req.Available,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ProductRepository().Create(ctx, product); err != nil {
		return nil, err
	}
	s.changed(ctx, "product created")
	return toProductResponse(product), nil
}

func (s *productService) Update(ctx context.Context, req *dto.ProductRequest) (*dto.ProductResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	product.Name = req.Name
	product.Price = req.Price
	product.Description = req.Description
	product.Category = req.Category
	if req.Available != nil {
		product.Available = *req.Available
	}
	if err := uow.ProductRepository().Update(ctx, product); err != nil {
		return nil, err
	}
	s.changed(ctx, "product updated")
	return toProductResponse(product), nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	product, err := uow.ProductRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	if err := uow.ProductRepository().Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "product deleted")
	return nil
}

func (s *productService) changed(ctx context.Context, reason string) {
	if s.knowledge == nil {
		return
	}
	if err := s.knowledge.RequestRebuild(ctx, reason); err != nil {
		s.logger.Warn("ProductService", "Failed to queue index rebuild", map[string]interface{}{"error": err.Error()})
	}
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		Id:          p.Id,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Category:    p.Category,
		Available:   p.Available,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
