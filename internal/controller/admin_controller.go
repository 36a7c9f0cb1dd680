package controller

import (
	"errors"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/pkg/serverutils"
	"ai-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// LogReader reads back the application log file.
type LogReader interface {
	GetLogs(q logger.LogQuery) ([]logger.LogEntry, error)
	GetLogById(id string) (*logger.LogEntry, error)
}

type IAdminController interface {
	RegisterRoutes(r fiber.Router, admin fiber.Handler)

	GetFAQs(ctx *fiber.Ctx) error
	CreateFAQ(ctx *fiber.Ctx) error
	UpdateFAQ(ctx *fiber.Ctx) error
	DeleteFAQ(ctx *fiber.Ctx) error
	ImportFAQs(ctx *fiber.Ctx) error

	GetProducts(ctx *fiber.Ctx) error
	CreateProduct(ctx *fiber.Ctx) error
	UpdateProduct(ctx *fiber.Ctx) error
	DeleteProduct(ctx *fiber.Ctx) error

	GetOrders(ctx *fiber.Ctx) error
	UpdateOrderStatus(ctx *fiber.Ctx) error

	RebuildIndex(ctx *fiber.Ctx) error
	RebuildIndexAsync(ctx *fiber.Ctx) error

	GetAnalyticsSummary(ctx *fiber.Ctx) error
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
	GetSettings(ctx *fiber.Ctx) error
	UpdateSettings(ctx *fiber.Ctx) error
}

type adminController struct {
	faqs      service.IFAQService
	products  service.IProductService
	orders    service.IOrderService
	knowledge service.IKnowledgeService
	analytics service.IAnalyticsService
	settings  service.ISettingsService
	logs      LogReader
}

func NewAdminController(
	faqs service.IFAQService,
	products service.IProductService,
	orders service.IOrderService,
	knowledge service.IKnowledgeService,
	analytics service.IAnalyticsService,
	settings service.ISettingsService,
	logs LogReader,
) IAdminController {
	return &adminController{
		faqs:      faqs,
		products:  products,
		orders:    orders,
		knowledge: knowledge,
		analytics: analytics,
		settings:  settings,
		logs:      logs,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router, admin fiber.Handler) {
	h := r.Group("/admin", admin)

	// Knowledge base
	h.Get("/faqs", c.GetFAQs)
	h.Post("/faqs", c.CreateFAQ)
	h.Post("/faqs/import", c.ImportFAQs)
	h.Put("/faqs/:id", c.UpdateFAQ)
	h.Delete("/faqs/:id", c.DeleteFAQ)

	h.Get("/products", c.GetProducts)
	h.Post("/products", c.CreateProduct)
	h.Put("/products/:id", c.UpdateProduct)
	h.Delete("/products/:id", c.DeleteProduct)

	h.Post("/rebuild-index", c.RebuildIndex)
	h.Post("/rebuild-index/async", c.RebuildIndexAsync)

	// Orders
	h.Get("/orders", c.GetOrders)
	h.Patch("/orders/:id/status", c.UpdateOrderStatus)

	// Operations
	h.Get("/analytics/summary", c.GetAnalyticsSummary)
	h.Get("/logs", c.GetLogs)
	h.Get("/logs/:id", c.GetLogDetail)
	h.Get("/settings", c.GetSettings)
	h.Put("/settings", c.UpdateSettings)
}

func paramID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return id, nil
}

func (c *adminController) GetFAQs(ctx *fiber.Ctx) error {
	res, err := c.faqs.GetAll(ctx.Context(), ctx.Query("q"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("FAQs", res))
}

func (c *adminController) CreateFAQ(ctx *fiber.Ctx) error {
	var req dto.FAQRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.faqs.Create(ctx.Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("FAQ created", res))
}

func (c *adminController) UpdateFAQ(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var req dto.FAQRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.faqs.Update(ctx.Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("FAQ updated", res))
}

func (c *adminController) DeleteFAQ(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	if err := c.faqs.Delete(ctx.Context(), id); err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("FAQ deleted", nil))
}

// ImportFAQs accepts a multipart "file" holding question,answer[,tags] rows.
func (c *adminController) ImportFAQs(ctx *fiber.Ctx) error {
	header, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing file")
	}
	f, err := header.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := c.knowledge.ImportFAQs(ctx.Context(), f)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if n > 0 {
		_ = c.knowledge.RequestRebuild(ctx.Context(), "faqs imported")
	}
	return ctx.JSON(serverutils.SuccessResponse("FAQs imported", fiber.Map{"imported": n}))
}

func (c *adminController) GetProducts(ctx *fiber.Ctx) error {
	res, err := c.products.GetAll(ctx.Context(), ctx.Query("q"), ctx.QueryBool("available", false))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Products", res))
}

func (c *adminController) CreateProduct(ctx *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.products.Create(ctx.Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Product created", res))
}

func (c *adminController) UpdateProduct(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.products.Update(ctx.Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Product updated", res))
}

func (c *adminController) DeleteProduct(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	if err := c.products.Delete(ctx.Context(), id); err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Product deleted", nil))
}

func (c *adminController) GetOrders(ctx *fiber.Ctx) error {
	var req dto.OrderListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.orders.List(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Orders", res))
}

func (c *adminController) UpdateOrderStatus(ctx *fiber.Ctx) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	var req dto.UpdateOrderStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.orders.UpdateStatus(ctx.Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Order updated", res))
}

// RebuildIndex reports embedding failures in the body, not the status.
func (c *adminController) RebuildIndex(ctx *fiber.Ctx) error {
	res, err := c.knowledge.Rebuild(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Index rebuilt", res))
}

func (c *adminController) RebuildIndexAsync(ctx *fiber.Ctx) error {
	if err := c.knowledge.RequestRebuild(ctx.Context(), "admin request"); err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse[any]("Index rebuild queued", nil))
}

func (c *adminController) GetAnalyticsSummary(ctx *fiber.Ctx) error {
	res, err := c.analytics.Summary(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Analytics summary", res))
}

func (c *adminController) GetLogs(ctx *fiber.Ctx) error {
	var req dto.LogListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if req.Limit == 0 {
		req.Limit = 50
	}

	logs, err := c.logs.GetLogs(logger.LogQuery{Level: req.Level, Module: req.Module, Limit: req.Limit, Offset: req.Offset})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Logs", dto.LogListResponse{Logs: logs}))
}

func (c *adminController) GetLogDetail(ctx *fiber.Ctx) error {
	entry, err := c.logs.GetLogById(ctx.Params("id"))
	if errors.Is(err, logger.ErrLogNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Log not found")
	}
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Log detail", entry))
}

func (c *adminController) GetSettings(ctx *fiber.Ctx) error {
	res, err := c.settings.Get(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Settings", res))
}

func (c *adminController) UpdateSettings(ctx *fiber.Ctx) error {
	var req dto.UpdateSettingsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.settings.Update(ctx.Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Settings updated", res))
}
