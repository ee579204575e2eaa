// Package bootstrap wires repositories, services, and handlers into a
// runnable application.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"dealflow-backend/internal/chat"
	"dealflow-backend/internal/deals"
	"dealflow-backend/internal/documents"
	"dealflow-backend/internal/facts"
	"dealflow-backend/internal/llm"
	"dealflow-backend/internal/queue"
	"dealflow-backend/internal/shared/config"
	"dealflow-backend/internal/shared/server"
	"dealflow-backend/internal/shared/storage/db"
	"dealflow-backend/internal/shared/storage/object"
	localstore "dealflow-backend/internal/shared/storage/object/local"
	s3store "dealflow-backend/internal/shared/storage/object/s3"
	"dealflow-backend/internal/stages"
)

const defaultLocalConcurrency = 4

// DocumentProcessor allows callers to override document processing for tests.
type DocumentProcessor interface {
	Process(ctx context.Context, documentID string) error
}

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	StagesRepo     stages.Repo
	DealsRepo      deals.Repo
	ActivitiesRepo deals.ActivityRepo
	DocumentsRepo  documents.Repo
	MessagesRepo   chat.Repo

	LLM            llm.Client
	FactsExtractor *facts.Extractor

	StagesService     *stages.Service
	DealsService      *deals.Service
	DocumentsService  *documents.Service
	DocumentProcessor DocumentProcessor
	Responder         *chat.Responder

	StagesHandler    *stages.Handler
	DealsHandler     *deals.Handler
	DocumentsHandler *documents.Handler
	ChatHandler      *chat.Handler
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}
	if err := buildServices(ctx, app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		StagesHandler:    app.StagesHandler,
		DealsHandler:     app.DealsHandler,
		DocumentsHandler: app.DocumentsHandler,
		ChatHandler:      app.ChatHandler,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(ctx context.Context, app *App) error {
	if app.DB != nil {
		app.StagesRepo = &stages.PGRepo{DB: app.DB}
		app.DealsRepo = &deals.PGRepo{DB: app.DB}
		app.ActivitiesRepo = &deals.PGActivityRepo{DB: app.DB}
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.MessagesRepo = &chat.PGRepo{DB: app.DB}
	} else {
		app.StagesRepo = stages.NewMemoryRepo()
		app.DealsRepo = deals.NewMemoryRepo()
		app.ActivitiesRepo = deals.NewMemoryActivityRepo()
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.MessagesRepo = chat.NewMemoryRepo()
	}

	app.LLM = llm.Client(llm.Placeholder{})
	if app.Config.OpenAIAPIKey != "" {
		client, err := llm.NewOpenAIClient(app.Config.OpenAIAPIKey, app.Config.OpenAIBaseURL)
		if err != nil {
			return err
		}
		app.LLM = client
	} else {
		log.Printf("bootstrap: OPENAI_API_KEY empty; generations will fail until configured")
	}
	app.FactsExtractor = facts.NewExtractor(app.LLM, app.Config.LLMModel)

	app.StagesService = stages.NewService(app.StagesRepo)
	app.DealsService = deals.NewService(app.DealsRepo, app.ActivitiesRepo, app.StagesService)
	app.DealsService.Cascades = []func(ctx context.Context, dealID string) error{
		app.DocumentsRepo.DeleteByDeal,
		app.MessagesRepo.DeleteByDeal,
	}

	processor := &documents.Processor{
		Docs:  app.DocumentsRepo,
		Deals: app.DealsService,
		Store: app.Store,
		LLM:   app.LLM,
		Facts: app.FactsExtractor,
		Model: app.Config.LLMModel,
	}
	app.DocumentProcessor = processor

	queueClient, err := buildQueue(ctx, app.Config, processor)
	if err != nil {
		return err
	}
	app.Queue = queueClient

	app.DocumentsService = &documents.Service{
		Repo:   app.DocumentsRepo,
		Deals:  app.DealsService,
		Stages: app.StagesService,
		Store:  app.Store,
		Queue:  app.Queue,
		Facts:  app.FactsExtractor,
	}

	app.Responder = &chat.Responder{
		Deals:     app.DealsService,
		Docs:      app.DocumentsRepo,
		Messages:  app.MessagesRepo,
		LLM:       app.LLM,
		Model:     app.Config.LLMModel,
		MaxTokens: app.Config.LLMMaxTokens,
	}

	if _, _, err := app.StagesService.Seed(ctx); err != nil {
		log.Printf("bootstrap: stage seeding failed: %v", err)
	}

	app.StagesHandler = stages.NewHandler(app.StagesService)
	app.DealsHandler = deals.NewHandler(app.DealsService)
	app.DocumentsHandler = documents.NewHandler(app.DocumentsService, processor)
	app.ChatHandler = chat.NewHandler(app.Responder)
	return nil
}

func buildQueue(ctx context.Context, cfg config.Config, processor DocumentProcessor) (queue.Client, error) {
	if cfg.QueueBackend == "sqs" {
		return queue.NewSQSClient(ctx, cfg.SQSQueueURL, cfg.AWSRegion)
	}
	concurrency := defaultLocalConcurrency
	if raw := strings.TrimSpace(os.Getenv("WORKER_CONCURRENCY")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			concurrency = parsed
		}
	}
	return queue.NewLocalClient(func(ctx context.Context, msg queue.Message) error {
		return processor.Process(ctx, msg.DocumentID)
	}, concurrency), nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
