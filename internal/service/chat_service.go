package service

import (
	"context"
	"encoding/json"
	"strings"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/pkg/events"
	"ai-chatbot-be/pkg/orchestrator"
	"ai-chatbot-be/pkg/responder"
	"ai-chatbot-be/pkg/retrieval"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const chatModule = "ChatService"

const DefaultChannel = "api"

var tracer = otel.Tracer("ai-chatbot-be/service")

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	// Process answers a message from any channel. It never fails; unexpected
	// errors produce the apology reply.
	Process(ctx context.Context, msg orchestrator.Message) *orchestrator.Result
	Search(ctx context.Context, query string, topK int) *dto.SearchResponse
	PublicConfig() *dto.PublicConfigResponse
}

type ChatServiceConfig struct {
	MinScore      float64
	DefaultTopK   int
	OrdersEnabled bool
}

type chatService struct {
	cfg          ChatServiceConfig
	uowFactory   unitofwork.RepositoryFactory
	orchestrator *orchestrator.Orchestrator
	index        orchestrator.Searcher
	synth        *responder.Synthesizer
	orders       IOrderService
	publisher    events.Publisher
	feed         IFeed
	logger       logger.ILogger
}

func NewChatService(
	cfg ChatServiceConfig,
	uowFactory unitofwork.RepositoryFactory,
	orch *orchestrator.Orchestrator,
	index orchestrator.Searcher,
	synth *responder.Synthesizer,
	orders IOrderService,
	publisher events.Publisher,
	feed IFeed,
	log logger.ILogger,
) IChatService {
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 4
	}
	return &chatService{
		cfg:          cfg,
		uowFactory:   uowFactory,
		orchestrator: orch,
		index:        index,
		synth:        synth,
		orders:       orders,
		publisher:    publisherOrNop(publisher),
		feed:         feedOrNop(feed),
		logger:       log,
	}
}

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	channel := strings.TrimSpace(req.Channel)
	if channel == "" {
		channel = DefaultChannel
	}

	res := s.Process(ctx, orchestrator.Message{
		Text:    req.Text,
		UserID:  req.UserID,
		Channel: channel,
		Meta:    req.Meta,
	})

	return &dto.ChatResponse{
		Reply:        res.Reply,
		QuickReplies: res.QuickReplies,
		Trace:        res.Trace,
	}, nil
}

func (s *chatService) Process(ctx context.Context, msg orchestrator.Message) *orchestrator.Result {
	ctx, span := tracer.Start(ctx, "chat.process")
	defer span.End()
	span.SetAttributes(attribute.String("chat.channel", msg.Channel))

	res, err := s.orchestrator.ProcessMessage(ctx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "orchestrator failed")
		s.logger.Error(chatModule, "Message processing failed", map[string]interface{}{"user_id": msg.UserID, "channel": msg.Channel, "error": err.Error()})
		apology := s.orchestrator.Apology()
		res = &apology
	}
	span.SetAttributes(
		attribute.String("chat.intent", res.Intent),
		attribute.String("chat.source", res.Source),
	)

	if res.Order != nil && s.orders != nil {
		if _, err := s.orders.CreateFromDraft(ctx, msg.UserID, res.Order); err != nil {
			s.logger.Error(chatModule, "Failed to persist order", map[string]interface{}{"user_id": msg.UserID, "error": err.Error()})
		}
	}

	s.record(ctx, msg, res)
	return res
}

// record stores the turn and announces it. Failures are logged; the user
// already has a reply.
func (s *chatService) record(ctx context.Context, msg orchestrator.Message, res *orchestrator.Result) {
	message := &entity.Message{
		UserId:  msg.UserID,
		Channel: msg.Channel,
		Text:    msg.Text,
		Reply:   res.Reply,
		Intent:  res.Intent,
		Source:  res.Source,
		Trace:   traceMap(res.Trace),
	}

	if s.uowFactory != nil {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		if err := uow.MessageRepository().Create(ctx, message); err != nil {
			s.logger.Error(chatModule, "Failed to persist message", map[string]interface{}{"user_id": msg.UserID, "error": err.Error()})
		}
	}

	event := events.NewMessageProcessed(message.Id.String(), msg.UserID, msg.Channel, res.Intent, res.Source, res.Trace.DurationMs)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(chatModule, "Failed to publish event", map[string]interface{}{"event": event.EventType(), "error": err.Error()})
	}

	s.feed.Publish(FeedMessageProcessed, map[string]interface{}{
		"user_id": msg.UserID,
		"channel": msg.Channel,
		"text":    msg.Text,
		"reply":   res.Reply,
		"intent":  res.Intent,
		"source":  res.Source,
	})
}

func traceMap(trace orchestrator.Trace) map[string]interface{} {
	raw, err := json.Marshal(trace)
	if err != nil {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func (s *chatService) Search(ctx context.Context, query string, topK int) *dto.SearchResponse {
	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}
	hits := s.index.Search(ctx, query, topK, s.cfg.MinScore)

	res := &dto.SearchResponse{Query: query, Hits: make([]dto.SearchHit, 0, len(hits))}
	for _, h := range hits {
		res.Hits = append(res.Hits, toSearchHit(h))
	}
	return res
}

func toSearchHit(h retrieval.Hit) dto.SearchHit {
	return dto.SearchHit{
		Text:     h.Document.Text,
		Score:    h.Score,
		Source:   string(h.Document.SourceKind),
		Metadata: h.Document.Metadata,
	}
}

func (s *chatService) PublicConfig() *dto.PublicConfigResponse {
	settings := s.synth.Settings()
	return &dto.PublicConfigResponse{
		BusinessName: settings.BusinessName,
		Address:      settings.Address,
		Phone:        settings.Phone,
		Email:        settings.Email,
		Hours:        s.synth.BusinessHoursText(),
		Info:         s.synth.BusinessInfoText(),
		Mode:         string(s.synth.Mode()),
		QuickReplies: s.synth.DefaultQuickReplies(),
		OrdersEnable: s.cfg.OrdersEnabled,
	}
}
