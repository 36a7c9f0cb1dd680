package bootstrap

import (
	"context"
	"fmt"
	"time"

	"ai-chatbot-be/internal/channel/telegram"
	"ai-chatbot-be/internal/channel/twilio"
	"ai-chatbot-be/internal/config"
	"ai-chatbot-be/internal/controller"
	"ai-chatbot-be/internal/handler"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/pkg/mailer"
	"ai-chatbot-be/internal/repository/memory"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/internal/service"
	"ai-chatbot-be/internal/websocket"
	"ai-chatbot-be/pkg/dialogue"
	"ai-chatbot-be/pkg/embedding"
	"ai-chatbot-be/pkg/embedding/jina"
	"ai-chatbot-be/pkg/events"
	"ai-chatbot-be/pkg/intent"
	"ai-chatbot-be/pkg/llm/factory"
	pktNats "ai-chatbot-be/pkg/nats"
	"ai-chatbot-be/pkg/orchestrator"
	"ai-chatbot-be/pkg/responder"
	"ai-chatbot-be/pkg/retrieval"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const module = "Bootstrap"

// SessionTTL is how long an idle dialogue session survives.
const SessionTTL = time.Hour

type Container struct {
	ChatController    controller.IChatController
	AuthController    controller.IAuthController
	AdminController   controller.IAdminController
	WebhookController controller.IWebhookController
	FeedHandler       *handler.FeedHandler

	ConsumerService     service.IConsumerService
	NotificationService service.INotificationService
	KnowledgeService    service.IKnowledgeService
	WebSocketHub        *websocket.Hub
	TelegramBot         *telegram.Bot

	Logger logger.ILogger

	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
	rdb     *redis.Client
}

// NewContainer wires every component. Optional infrastructure (NATS, Redis,
// SMTP, Telegram, model backends) degrades to a warning when unavailable.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	business, err := config.LoadBusiness(cfg.App.BusinessConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load business config: %w", err)
	}
	sysLogger.Info(module, "Business config loaded", map[string]interface{}{
		"source": business.Source, "business": business.Business.Name, "ai_mode": business.AI.Mode,
	})

	// 1. Persistence
	uowFactory := unitofwork.NewRepositoryFactory(db)

	// 2. Retrieval index
	embedder := newEmbedder(ctx, cfg, sysLogger)
	index := retrieval.NewIndex(embedder, sysLogger, retrieval.Options{
		ChunkSize:    business.Retrieval.ChunkSize,
		ChunkOverlap: business.Retrieval.ChunkOverlap,
		Concurrency:  4,
		Snapshot:     service.NewIndexSnapshotStore(uowFactory),
	})

	// 3. Dialogue engine
	defs, err := business.DialogueDefinitions()
	if err != nil {
		return nil, err
	}
	engine, err := dialogue.NewEngine(defs, memory.NewSessionRepository(SessionTTL), sysLogger,
		dialogue.WithProductReplies(business.Orders.Products))
	if err != nil {
		return nil, fmt.Errorf("dialogue engine: %w", err)
	}
	engine.RegisterFinalizer(dialogue.QuickOrder, dialogue.NewOrderFinalizer(business.Business.Name))

	// 4. Responder and orchestrator
	synth := responder.NewSynthesizer(business.SynthesizerSettings(), newStrategy(ctx, cfg, business, sysLogger), sysLogger)
	classifier, err := intent.NewClassifier(intent.DefaultRules())
	if err != nil {
		return nil, fmt.Errorf("intent rules: %w", err)
	}
	orch := orchestrator.New(orchestrator.Config{
		TopK:            business.Retrieval.TopK,
		MinScore:        business.Retrieval.MinScore,
		OrdersEnabled:   business.Orders.Enable,
		TriggerKeywords: business.Orders.TriggerKeywords,
		TriggerDialogue: business.Orders.TriggerFlow,
		CancelReply:     business.Responses.Cancelled,
		Apology:         business.Responses.Apology,
	}, engine, index, classifier, synth, sysLogger)

	// 5. Event bus
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))

	var publisher events.Publisher = events.NopPublisher{}
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn(module, "NATS publisher unavailable, domain events disabled", map[string]interface{}{"error": err.Error()})
	} else {
		publisher = natsPub
	}
	var subscriber service.EventSubscriber
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn(module, "NATS subscriber unavailable, order notifications disabled", map[string]interface{}{"error": err.Error()})
	} else {
		subscriber = natsSub
	}

	// 6. Admin feed
	rdb := newRedis(ctx, cfg.App.RedisURL, sysLogger)
	hub := websocket.NewHub(rdb, sysLogger)
	go hub.Run(ctx)

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Email, cfg.SMTP.Password, cfg.SMTP.SenderName)
	}

	// 7. Services
	knowledgeService := service.NewKnowledgeService(uowFactory, index, business.DocsDir, pubSub, publisher, hub, sysLogger)
	if err := knowledgeService.Restore(ctx); err != nil {
		sysLogger.Warn(module, "Index snapshot not restored", map[string]interface{}{"error": err.Error()})
	}
	// Keyword-only indexes keep no snapshot, and a fresh database has none either.
	if index.Size() == 0 {
		if _, err := knowledgeService.Rebuild(ctx); err != nil {
			sysLogger.Error(module, "Initial index build failed", map[string]interface{}{"error": err.Error()})
		}
	}

	orderService := service.NewOrderService(uowFactory, publisher, hub, sysLogger)
	chatService := service.NewChatService(service.ChatServiceConfig{
		MinScore:      business.Retrieval.MinScore,
		DefaultTopK:   business.Retrieval.TopK,
		OrdersEnabled: business.Orders.Enable,
	}, uowFactory, orch, index, synth, orderService, publisher, hub, sysLogger)

	faqService := service.NewFAQService(uowFactory, knowledgeService, sysLogger)
	productService := service.NewProductService(uowFactory, knowledgeService, sysLogger)
	authService := service.NewAuthService(cfg.App.AdminEmail, cfg.App.AdminPasswordHash, cfg.App.JWTSecret)
	analyticsService := service.NewAnalyticsService(uowFactory, index, hub)

	settingsService := service.NewSettingsService(business, uowFactory, synth, sysLogger)
	if err := settingsService.LoadOverrides(ctx); err != nil {
		sysLogger.Warn(module, "Stored settings not loaded", map[string]interface{}{"error": err.Error()})
	}

	notificationService := service.NewNotificationService(subscriber, emailService, cfg.SMTP.NotifyEmail, business.Business.Name, hub, sysLogger)
	consumerService := service.NewConsumerService(pubSub, service.RebuildTopic, knowledgeService, sysLogger)

	// 8. Channels
	var bot *telegram.Bot
	if cfg.Keys.Telegram != "" {
		bot, err = telegram.New(cfg.Keys.Telegram, cfg.Keys.TelegramWebhookSecret, chatService, sysLogger)
		if err != nil {
			sysLogger.Warn(module, "Telegram bot disabled", map[string]interface{}{"error": err.Error()})
			bot = nil
		}
	}
	twilioWebhook := twilio.NewWebhook(cfg.Keys.TwilioAccountSid, chatService, sysLogger)

	return &Container{
		ChatController:  controller.NewChatController(chatService),
		AuthController:  controller.NewAuthController(authService),
		AdminController: controller.NewAdminController(faqService, productService, orderService, knowledgeService, analyticsService, settingsService, sysLogger),
		WebhookController: controller.NewWebhookController(
			chatService, bot, cfg.Keys.TelegramWebhookSecret, twilioWebhook, sysLogger,
		),
		FeedHandler: handler.NewFeedHandler(hub, cfg.App.JWTSecret, sysLogger),

		ConsumerService:     consumerService,
		NotificationService: notificationService,
		KnowledgeService:    knowledgeService,
		WebSocketHub:        hub,
		TelegramBot:         bot,
		Logger:              sysLogger,

		natsPub: natsPub,
		natsSub: natsSub,
		rdb:     rdb,
	}, nil
}

// StartBackground launches the rebuild consumer, the notification worker
// and the Telegram webhook listener. They stop when ctx is cancelled.
func (c *Container) StartBackground(ctx context.Context) {
	go func() {
		if err := c.ConsumerService.Consume(ctx); err != nil {
			c.Logger.Error(module, "Rebuild consumer stopped", map[string]interface{}{"error": err.Error()})
		}
	}()

	if c.natsSub != nil {
		if err := c.NotificationService.Start(ctx); err != nil {
			c.Logger.Error(module, "Notification worker not started", map[string]interface{}{"error": err.Error()})
		}
	}

	if c.TelegramBot != nil {
		c.TelegramBot.Start(ctx)
	}
}

// Close releases broker and cache connections and flushes the log.
func (c *Container) Close() {
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	_ = c.Logger.Sync()
}

func newEmbedder(ctx context.Context, cfg *config.Config, log logger.ILogger) embedding.EmbeddingProvider {
	fields := map[string]interface{}{"provider": cfg.Ai.EmbeddingProvider, "model": cfg.Ai.EmbeddingModel}

	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		log.Info(module, "Using embedding provider", fields)
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
	case "openai":
		log.Info(module, "Using embedding provider", fields)
		return embedding.NewOpenAIProvider(cfg.Keys.OpenAI, "", cfg.Ai.EmbeddingModel)
	case "jina":
		log.Info(module, "Using embedding provider", fields)
		return jina.NewJinaProvider(cfg.Keys.Jina, cfg.Ai.EmbeddingModel)
	case "gemini":
		provider, err := embedding.NewGeminiProvider(ctx, cfg.Keys.Gemini, cfg.Ai.EmbeddingModel)
		if err != nil {
			fields["error"] = err.Error()
			log.Warn(module, "Gemini embeddings unavailable, using keyword search", fields)
			return nil
		}
		log.Info(module, "Using embedding provider", fields)
		return provider
	}

	log.Info(module, "Embeddings disabled, using keyword search", fields)
	return nil
}

func newStrategy(ctx context.Context, cfg *config.Config, business *config.BusinessConfig, log logger.ILogger) responder.Strategy {
	timeout := time.Duration(business.AI.TimeoutSeconds) * time.Second

	switch business.AI.Mode {
	case config.ModeAPILLM:
		provider, err := factory.NewHostedProvider(ctx, business.AI.ModelName, factory.Credentials{
			OpenAI:      cfg.Keys.OpenAI,
			Groq:        cfg.Keys.Groq,
			Gemini:      cfg.Keys.Gemini,
			HuggingFace: cfg.Keys.HuggingFace,
		})
		if err != nil {
			// The strategy still runs and every reply degrades to templates.
			log.Warn(module, "Hosted model unavailable", map[string]interface{}{"model": business.AI.ModelName, "error": err.Error()})
		}
		return responder.NewHostedStrategy(provider, business.AI.ModelName, timeout, business.AI.RequestsPerMinute)
	case config.ModeLocalLLM:
		provider := factory.NewLocalProvider(cfg.Ai.OllamaBaseURL, business.AI.ModelName, responder.LocalTimeout)
		return responder.NewLocalStrategy(provider, business.AI.ModelName)
	}
	return nil
}

func newRedis(ctx context.Context, url string, log logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn(module, "Failed to parse Redis URL, using it as address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn(module, "Redis unavailable, admin feed stays local", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}
