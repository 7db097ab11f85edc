package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-novelforge-be/internal/config"
	"ai-novelforge-be/internal/controller"
	"ai-novelforge-be/internal/handler"
	"ai-novelforge-be/internal/pkg/logger"
	"ai-novelforge-be/internal/repository/memory"
	"ai-novelforge-be/internal/repository/unitofwork"
	"ai-novelforge-be/internal/service"
	"ai-novelforge-be/internal/websocket"
	"ai-novelforge-be/pkg/embedding"
	"ai-novelforge-be/pkg/llm/factory"
	"ai-novelforge-be/pkg/story/leakage"
	"ai-novelforge-be/pkg/story/planner"

	pktNats "ai-novelforge-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	NovelController      controller.INovelController
	ChapterController    controller.IChapterController
	GenerationController controller.IGenerationController
	CodexController      controller.ICodexController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Progress
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Engine Components
	plannerStore := service.NewPlannerStore(uowFactory)
	actPlanner := planner.New(plannerStore, llmProvider, log.Default())
	actPlanner.BufferThreshold = cfg.Engine.PlannerBufferThreshold
	actPlanner.ContextWindow = cfg.Engine.PlannerContextWindow

	checker := &leakage.Checker{
		MatchRatio:    cfg.Engine.LeakageMatchRatio,
		FlagThreshold: cfg.Engine.LeakageFlagThreshold,
	}

	batchLocks := memory.NewBatchLockRegistry()

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Keys.EmbedTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.EmbedTopic,
		uowFactory,
		embeddingProvider,
	)

	progressService := service.NewProgressService(rdb, wsHub, wsLogger)

	novelService := service.NewNovelService(uowFactory, embeddingProvider, natsPub)
	chapterService := service.NewChapterService(uowFactory, publisherService)
	codexService := service.NewCodexService(uowFactory)
	generationService := service.NewGenerationService(
		uowFactory,
		plannerStore,
		llmProvider,
		actPlanner,
		checker,
		publisherService,
		natsPub,
		progressService,
		batchLocks,
		sysLogger,
		time.Duration(cfg.Engine.BatchResetDelaySeconds)*time.Second,
	)

	// Handler
	progressHandler := handler.NewProgressHandler(wsHub, wsLogger)

	// 6. Controllers
	return &Container{
		NovelController:      controller.NewNovelController(novelService),
		ChapterController:    controller.NewChapterController(chapterService),
		GenerationController: controller.NewGenerationController(generationService, progressService),
		CodexController:      controller.NewCodexController(codexService),

		ConsumerService: consumerService,

		ProgressHandler: progressHandler,
		WebSocketHub:    wsHub,
	}
}
